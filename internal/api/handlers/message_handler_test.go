package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sariqm/brandmate/internal/models"
	"github.com/sariqm/brandmate/internal/pipeline"
	"github.com/sariqm/brandmate/internal/utils"
)

type stubMessageService struct {
	reply      string
	history    []models.Message
	err        error
	gotUserID  int64
	gotText    string
	gotLimit   int64
	processHit bool
}

func (s *stubMessageService) Process(_ context.Context, userID int64, text string) (string, error) {
	s.processHit = true
	s.gotUserID = userID
	s.gotText = text
	return s.reply, s.err
}

func (s *stubMessageService) History(_ context.Context, userID int64, limit int64) ([]models.Message, error) {
	s.gotUserID = userID
	s.gotLimit = limit
	return s.history, s.err
}

func messageRouter(svc *stubMessageService, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMessageHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID > 0 {
			c.Set("user_id", userID)
		}
	})
	r.POST("/messages/process", h.Process)
	r.GET("/messages/history", h.History)
	return r
}

func TestProcessEndpoint(t *testing.T) {
	svc := &stubMessageService{reply: "hello ana"}
	r := messageRouter(svc, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages/process", strings.NewReader(`{"text": "hi"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"response": "hello ana"}`, w.Body.String())
	require.Equal(t, int64(7), svc.gotUserID)
	require.Equal(t, "hi", svc.gotText)
}

func TestProcessEndpointRejectsMissingText(t *testing.T) {
	svc := &stubMessageService{}
	r := messageRouter(svc, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages/process", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, svc.processHit)
}

func TestProcessEndpointWithoutIdentity(t *testing.T) {
	svc := &stubMessageService{}
	r := messageRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages/process", strings.NewReader(`{"text": "hi"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, svc.processHit)
}

func TestProcessEndpointMapsPipelineErrors(t *testing.T) {
	// the orchestrator wraps pipeline parse failures in this shape
	svc := &stubMessageService{err: utils.E(utils.CodeBadModelOutput,
		"MessageService.Process", "model returned malformed output",
		&pipeline.ParseError{Stage: pipeline.StageClassify, Raw: "not json"})}
	r := messageRouter(svc, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages/process", strings.NewReader(`{"text": "hi"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), string(utils.CodeBadModelOutput))
}

func TestHistoryEndpointDefaultsAndValidatesLimit(t *testing.T) {
	svc := &stubMessageService{history: []models.Message{}}
	r := messageRouter(svc, 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(20), svc.gotLimit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/history?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(5), svc.gotLimit)

	for _, bad := range []string{"0", "101", "-1", "abc"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/history?limit="+bad, nil))
		require.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", bad)
	}
}
