package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

type AnswerHandler struct {
	svc services.AnswerService
}

func NewAnswerHandler(svc services.AnswerService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

func (h *AnswerHandler) Generate(c *gin.Context) {
	var req services.GenerateAnswerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AnswerHandler.Generate", "invalid request body", err))
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnswerHandler) CodeAssist(c *gin.Context) {
	var req services.CodeAssistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AnswerHandler.CodeAssist", "invalid request body", err))
		return
	}

	out, err := h.svc.CodeAssist(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
