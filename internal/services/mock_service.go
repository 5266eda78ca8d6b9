package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"

	"github.com/sirupsen/logrus"
)

type MockQuestionsInput struct {
	Domain         string `json:"domain"`
	JobDescription string `json:"job_description,omitempty"`
	Resume         string `json:"resume,omitempty"`
	Count          int    `json:"count"`
	AIModel        string `json:"ai_model"`
}

type MockQuestionsOutput struct {
	Questions []models.MockQuestion `json:"questions"`
	AIModel   string                `json:"ai_model"`
}

type MockService interface {
	GenerateQuestions(ctx context.Context, in MockQuestionsInput) (*MockQuestionsOutput, error)
}

type mockService struct {
	router *llm.Router
	log    *logrus.Logger
}

func NewMockService(router *llm.Router, log *logrus.Logger) MockService {
	return &mockService{router: router, log: log}
}

const mockSystemPrompt = `You are an expert technical interviewer. Generate realistic interview questions based on the provided context.

Return questions in JSON format as an array of objects with these fields:
- category: one of "behavioral", "technical", "coding", "system_design"
- question: the interview question
- difficulty: one of "easy", "medium", "hard"
- tips: brief tips for answering this question

Generate diverse questions covering different aspects of the role.`

const mockContextLimit = 1500

func (s *mockService) GenerateQuestions(ctx context.Context, in MockQuestionsInput) (*MockQuestionsOutput, error) {
	const op = "MockService.GenerateQuestions"

	if !models.ValidDomain(in.Domain) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid domain", nil)
	}
	if in.Count <= 0 {
		in.Count = 5
	}
	if in.AIModel == "" {
		in.AIModel = models.DefaultAIModel
	}

	parts := []string{fmt.Sprintf("Domain: %s", in.Domain)}
	if in.JobDescription != "" {
		jd := in.JobDescription
		if len(jd) > mockContextLimit {
			jd = jd[:mockContextLimit]
		}
		parts = append(parts, "Job Description:\n"+jd)
	}
	if in.Resume != "" {
		rs := in.Resume
		if len(rs) > mockContextLimit {
			rs = rs[:mockContextLimit]
		}
		parts = append(parts, "Candidate Background:\n"+rs)
	}

	prompt := fmt.Sprintf("Generate %d interview questions for a %s position.\n\n%s\n\nReturn ONLY a valid JSON array with the questions. No other text.",
		in.Count, in.Domain, strings.Join(parts, "\n"))

	resp, err := s.router.Complete(ctx, in.AIModel, mockSystemPrompt, prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to generate questions", err)
	}

	questions, err := parseMockQuestions(resp)
	if err != nil {
		// model returned malformed JSON; fall back to the canned set so
		// the mock interview page always has material
		s.log.WithError(err).Warn("mock question JSON parse failed; using fallback set")
		questions = fallbackQuestions(in.Domain)
	}

	return &MockQuestionsOutput{Questions: questions, AIModel: in.AIModel}, nil
}

func parseMockQuestions(resp string) ([]models.MockQuestion, error) {
	text := strings.TrimSpace(resp)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var questions []models.MockQuestion
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func fallbackQuestions(domain string) []models.MockQuestion {
	return []models.MockQuestion{
		{Category: "behavioral", Question: "Tell me about yourself and your experience.", Difficulty: "easy", Tips: "Keep it concise, focus on relevant experience."},
		{Category: "technical", Question: fmt.Sprintf("What are the key concepts in %s?", domain), Difficulty: "medium", Tips: "Cover fundamentals and recent developments."},
		{Category: "behavioral", Question: "Describe a challenging project you worked on.", Difficulty: "medium", Tips: "Use STAR method: Situation, Task, Action, Result."},
		{Category: "technical", Question: "How do you approach debugging complex issues?", Difficulty: "medium", Tips: "Show systematic thinking and tool knowledge."},
		{Category: "behavioral", Question: "Where do you see yourself in 5 years?", Difficulty: "easy", Tips: "Align with the company's growth and your career goals."},
	}
}
