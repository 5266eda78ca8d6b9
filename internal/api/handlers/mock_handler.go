package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

type MockHandler struct {
	svc services.MockService
}

func NewMockHandler(svc services.MockService) *MockHandler {
	return &MockHandler{svc: svc}
}

func (h *MockHandler) GenerateQuestions(c *gin.Context) {
	var req services.MockQuestionsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MockHandler.GenerateQuestions", "invalid request body", err))
		return
	}

	out, err := h.svc.GenerateQuestions(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
