package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
)

type QAHandler struct {
	svc services.QAService
}

func NewQAHandler(svc services.QAService) *QAHandler {
	return &QAHandler{svc: svc}
}

// ListBySession returns the session's QA pairs oldest first.
func (h *QAHandler) ListBySession(c *gin.Context) {
	rows, err := h.svc.ListBySession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *QAHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("qa_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Q&A pair deleted successfully"})
}
