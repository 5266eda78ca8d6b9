package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

type TranscribeHandler struct {
	svc services.TranscribeService
}

func NewTranscribeHandler(svc services.TranscribeService) *TranscribeHandler {
	return &TranscribeHandler{svc: svc}
}

func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	var req services.TranscribeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "TranscribeHandler.Transcribe", "invalid request body", err))
		return
	}

	out, err := h.svc.Transcribe(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
