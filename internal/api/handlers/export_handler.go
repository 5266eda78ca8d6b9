package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
)

type ExportHandler struct {
	svc services.ExportService
}

func NewExportHandler(svc services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", services.ExportJSON)

	payload, rendered, err := h.svc.Export(c.Request.Context(), c.Param("session_id"), format)
	if err != nil {
		writeError(c, err)
		return
	}

	if format == services.ExportMarkdown {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rendered))
		return
	}
	c.JSON(http.StatusOK, payload)
}
