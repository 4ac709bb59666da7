package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sariqm/brandmate/internal/services"
	"github.com/sariqm/brandmate/internal/utils"
)

// DocumentHandler manages the brand corpus behind retrieval. Text extraction
// from PDFs/DOCX happens client-side; this surface takes plain chunks.
type DocumentHandler struct {
	svc services.VectorService
}

func NewDocumentHandler(svc services.VectorService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type IngestRequest struct {
	Texts []string `json:"texts" binding:"required"`
	// Tags label every chunk in the request, ex: the source document name.
	Tags []string `json:"tags"`
}

type IngestResponse struct {
	Ingested int      `json:"ingested"`
	IDs      []string `json:"ids"`
}

func (h *DocumentHandler) Ingest(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Ingest", "invalid request body", err))
		return
	}

	ids, err := h.svc.IngestTexts(c.Request.Context(), req.Texts, req.Tags)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, IngestResponse{Ingested: len(ids), IDs: ids})
}

func (h *DocumentHandler) Reset(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	if err := h.svc.Reset(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
