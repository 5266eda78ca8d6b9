package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	mongorepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/mongo"
	pgrepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/postgres"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type CreateSessionInput struct {
	Name                 string `json:"name"`
	InterviewType        string `json:"interview_type"`
	Domain               string `json:"domain"`
	JobDescription       string `json:"job_description"`
	Resume               string `json:"resume"`
	CompanyName          string `json:"company_name"`
	RoleTitle            string `json:"role_title"`
	DurationLimitMinutes int    `json:"duration_limit_minutes"`
}

type SessionService interface {
	Create(ctx context.Context, in CreateSessionInput) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
	Update(ctx context.Context, id string, upd models.SessionUpdate) (*models.Session, error)
	End(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, id string) error
}

type sessionService struct {
	sessions mongorepo.SessionRepository
	qaPairs  pgrepo.QAPairRepo
}

func NewSessionService(sessions mongorepo.SessionRepository, qaPairs pgrepo.QAPairRepo) SessionService {
	return &sessionService{sessions: sessions, qaPairs: qaPairs}
}

func (s *sessionService) Create(ctx context.Context, in CreateSessionInput) (*models.Session, error) {
	const op = "SessionService.Create"

	if strings.TrimSpace(in.Name) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}
	if !models.ValidInterviewType(in.InterviewType) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid interview_type", nil)
	}
	if !models.ValidDomain(in.Domain) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid domain", nil)
	}
	if in.DurationLimitMinutes < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration_limit_minutes must be >= 0", nil)
	}

	now := time.Now().UTC()
	sess := &models.Session{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(in.Name),
		InterviewType:        in.InterviewType,
		Domain:               in.Domain,
		JobDescription:       in.JobDescription,
		Resume:               in.Resume,
		CompanyName:          in.CompanyName,
		RoleTitle:            in.RoleTitle,
		DurationLimitMinutes: in.DurationLimitMinutes,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	const op = "SessionService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}

	out, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func (s *sessionService) List(ctx context.Context) ([]models.Session, error) {
	const op = "SessionService.List"

	rows, err := s.sessions.List(ctx, 100)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return rows, nil
}

func (s *sessionService) Update(ctx context.Context, id string, upd models.SessionUpdate) (*models.Session, error) {
	const op = "SessionService.Update"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}

	set := bson.M{}
	if upd.JobDescription != nil {
		set["job_description"] = *upd.JobDescription
	}
	if upd.Resume != nil {
		set["resume"] = *upd.Resume
	}
	if upd.CompanyName != nil {
		set["company_name"] = *upd.CompanyName
	}
	if upd.RoleTitle != nil {
		set["role_title"] = *upd.RoleTitle
	}
	if upd.DurationLimitMinutes != nil {
		if *upd.DurationLimitMinutes < 0 {
			return nil, utils.E(utils.CodeInvalidArgument, op, "duration_limit_minutes must be >= 0", nil)
		}
		set["duration_limit_minutes"] = *upd.DurationLimitMinutes
	}

	if err := s.sessions.Update(ctx, id, set); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	return s.Get(ctx, id)
}

func (s *sessionService) End(ctx context.Context, id string) error {
	const op = "SessionService.End"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}
	if err := s.sessions.Update(ctx, id, bson.M{"is_active": false}); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to end session", err)
	}
	return nil
}

// Delete removes the session and all of its persisted QA pairs.
func (s *sessionService) Delete(ctx context.Context, id string) error {
	const op = "SessionService.Delete"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete session", err)
	}
	if err := s.qaPairs.DeleteBySession(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete session qa pairs", err)
	}
	return nil
}

// Touch bumps updated_at; used after a QA pair lands on the session.
func (s *sessionService) Touch(ctx context.Context, id string) error {
	const op = "SessionService.Touch"

	if err := s.sessions.Update(ctx, id, bson.M{}); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeInternal, op, "failed to touch session", err)
	}
	return nil
}
