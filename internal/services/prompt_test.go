package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
)

func TestAnswerSystemPromptPersona(t *testing.T) {
	p := AnswerSystemPrompt(models.DomainSystemDesign, models.ToneTechnical, PromptContext{})
	assert.Contains(t, p, "system architect")
	assert.Contains(t, p, "deep technical detail")
	assert.NotContains(t, p, "IMPORTANT CONTEXT FOR THIS INTERVIEW")
}

func TestAnswerSystemPromptUnknownFallsBack(t *testing.T) {
	p := AnswerSystemPrompt("astrology", "sarcastic", PromptContext{})
	assert.Contains(t, p, domainPrompts[models.DomainGeneral])
	assert.Contains(t, p, toneInstructions[models.ToneProfessional])
}

func TestAnswerSystemPromptContextSection(t *testing.T) {
	p := AnswerSystemPrompt(models.DomainBackend, models.ToneProfessional, PromptContext{
		CompanyName: "Initech",
		RoleTitle:   "Staff Engineer",
		Resume:      "10 years of Go",
	})
	assert.Contains(t, p, "- Company: Initech")
	assert.Contains(t, p, "- Role: Staff Engineer")
	assert.Contains(t, p, "10 years of Go")
}

func TestPromptContextClipped(t *testing.T) {
	long := strings.Repeat("x", promptFieldLimit+500)
	p := AnswerSystemPrompt(models.DomainGeneral, models.ToneCasual, PromptContext{JobDescription: long})
	assert.NotContains(t, p, strings.Repeat("x", promptFieldLimit+1))
	assert.Contains(t, p, strings.Repeat("x", promptFieldLimit))
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t, "just the question", UserPrompt("just the question", ""))

	withCtx := UserPrompt("what next", "user: hi\nassistant: hello")
	assert.Equal(t, "Context:\nuser: hi\nassistant: hello\n\nQuestion: what next", withCtx)
}

func TestCodeAssistSystemPrompt(t *testing.T) {
	p := CodeAssistSystemPrompt("rust")
	assert.Contains(t, p, "written code in rust")
	assert.Contains(t, p, "pair programming")
}
