package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidArgument: http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeNotFound:        http.StatusNotFound,
		CodeConflict:        http.StatusConflict,
		CodeUnavailable:     http.StatusServiceUnavailable,
		CodeBadModelOutput:  http.StatusBadGateway,
		CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, HTTPStatus(E(code, "Op", "msg", nil)), string(code))
	}

	require.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestIsCodeUnwrapsChains(t *testing.T) {
	inner := E(CodeUnauthorized, "PineconeDB.post", "vector index rejected the API key", nil)
	wrapped := fmt.Errorf("ingest: %w", inner)

	require.True(t, IsCode(wrapped, CodeUnauthorized))
	require.False(t, IsCode(wrapped, CodeNotFound))
	require.False(t, IsCode(errors.New("plain"), CodeUnauthorized))
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, CheckPassword(hash, "s3cret"))
	require.Error(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("")
	require.Error(t, err)
}
