package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type GenerateAnswerInput struct {
	Question  string `json:"question"`
	AIModel   string `json:"ai_model"`
	Tone      string `json:"tone"`
	Domain    string `json:"domain"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// Explicit overrides; backfilled from the session when empty.
	JobDescription string `json:"job_description,omitempty"`
	Resume         string `json:"resume,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	RoleTitle      string `json:"role_title,omitempty"`
}

type GenerateAnswerOutput struct {
	Answer  string `json:"answer"`
	AIModel string `json:"ai_model"`
	QAID    string `json:"qa_id,omitempty"`
}

type CodeAssistInput struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Question string `json:"question"`
	AIModel  string `json:"ai_model"`
}

type CodeAssistOutput struct {
	Explanation string `json:"explanation"`
	AIModel     string `json:"ai_model"`
}

type AnswerService interface {
	Generate(ctx context.Context, in GenerateAnswerInput) (*GenerateAnswerOutput, error)
	CodeAssist(ctx context.Context, in CodeAssistInput) (*CodeAssistOutput, error)
}

type answerService struct {
	router   *llm.Router
	sessions SessionService
	qa       QAService
	rdb      *redis.Client
	log      *logrus.Logger
}

func NewAnswerService(router *llm.Router, sessions SessionService, qa QAService, rdb *redis.Client, log *logrus.Logger) AnswerService {
	return &answerService{router: router, sessions: sessions, qa: qa, rdb: rdb, log: log}
}

// generation lock TTL; a wedged upstream call must not block the session
// forever.
const generateLockTTL = 3 * time.Minute

func (s *answerService) lockKey(sessionID string) string {
	return "generate:lock:" + sessionID
}

func (s *answerService) Generate(ctx context.Context, in GenerateAnswerInput) (*GenerateAnswerOutput, error) {
	const op = "AnswerService.Generate"

	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question is required", nil)
	}
	if in.AIModel == "" {
		in.AIModel = models.DefaultAIModel
	}
	if in.Tone == "" {
		in.Tone = models.ToneProfessional
	}
	if in.Domain == "" {
		in.Domain = models.DomainGeneral
	}

	pc := PromptContext{
		JobDescription: in.JobDescription,
		Resume:         in.Resume,
		CompanyName:    in.CompanyName,
		RoleTitle:      in.RoleTitle,
	}

	if in.SessionID != "" {
		// One in-flight generation per session; the client disables its
		// trigger, this guards against a second tab or a retry race.
		ok, err := s.rdb.SetNX(ctx, s.lockKey(in.SessionID), "1", generateLockTTL).Result()
		if err != nil {
			s.log.WithError(err).Warn("generation lock unavailable; continuing without it")
		} else if !ok {
			return nil, utils.E(utils.CodeConflict, op, "a generation is already in flight for this session", nil)
		} else {
			defer func() { _ = s.rdb.Del(context.WithoutCancel(ctx), s.lockKey(in.SessionID)).Err() }()
		}

		sess, err := s.sessions.Get(ctx, in.SessionID)
		if err == nil {
			if pc.JobDescription == "" {
				pc.JobDescription = sess.JobDescription
			}
			if pc.Resume == "" {
				pc.Resume = sess.Resume
			}
			if pc.CompanyName == "" {
				pc.CompanyName = sess.CompanyName
			}
			if pc.RoleTitle == "" {
				pc.RoleTitle = sess.RoleTitle
			}
		} else if !utils.IsCode(err, utils.CodeNotFound) {
			return nil, err
		}
	}

	system := AnswerSystemPrompt(in.Domain, in.Tone, pc)
	answer, err := s.router.Complete(ctx, in.AIModel, system, UserPrompt(question, in.Context))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to generate answer", err)
	}

	out := &GenerateAnswerOutput{Answer: answer, AIModel: in.AIModel}

	if in.SessionID != "" {
		qa, err := s.qa.Record(ctx, in.SessionID, question, answer, in.AIModel, in.Tone, in.Domain)
		if err != nil {
			// the answer was produced; losing the history row is logged,
			// not surfaced as a generation failure
			s.log.WithError(err).WithField("session_id", in.SessionID).Error("failed to record qa pair")
		} else {
			out.QAID = qa.ID
			_ = s.sessions.Touch(ctx, in.SessionID)
		}
	}

	return out, nil
}

func (s *answerService) CodeAssist(ctx context.Context, in CodeAssistInput) (*CodeAssistOutput, error) {
	const op = "AnswerService.CodeAssist"

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "code is required", nil)
	}
	if in.Language == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "language is required", nil)
	}
	question := strings.TrimSpace(in.Question)
	if question == "" {
		question = "Explain this code and suggest improvements"
	}
	if in.AIModel == "" {
		in.AIModel = models.DefaultAIModel
	}

	prompt := fmt.Sprintf("Code:\n```%s\n%s\n```\n\nQuestion: %s", in.Language, code, question)
	explanation, err := s.router.Complete(ctx, in.AIModel, CodeAssistSystemPrompt(in.Language), prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to assist with code", err)
	}

	return &CodeAssistOutput{Explanation: explanation, AIModel: in.AIModel}, nil
}
