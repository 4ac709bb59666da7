package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sariqm/brandmate/internal/services"
	"github.com/sariqm/brandmate/internal/utils"
)

type MessageHandler struct {
	svc services.MessageService
}

func NewMessageHandler(svc services.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type ProcessRequest struct {
	Text string `json:"text" binding:"required"`
}

type ProcessResponse struct {
	Response string `json:"response"`
}

func (h *MessageHandler) Process(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MessageHandler.Process", "invalid request body", err))
		return
	}

	reply, err := h.svc.Process(c.Request.Context(), userID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{Response: reply})
}

func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := int64(20)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 100 {
			writeError(c, utils.E(utils.CodeInvalidArgument, "MessageHandler.History", "limit must be between 1 and 100", nil))
			return
		}
		limit = n
	}

	msgs, err := h.svc.History(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
