package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	pgrepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/postgres"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QAService interface {
	Record(ctx context.Context, sessionID, question, answer, aiModel, tone, domain string) (*models.QAPair, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.QAPair, error)
	Delete(ctx context.Context, id string) error
}

type qaService struct {
	qaPairs pgrepo.QAPairRepo
}

func NewQAService(qaPairs pgrepo.QAPairRepo) QAService {
	return &qaService{qaPairs: qaPairs}
}

func (s *qaService) Record(ctx context.Context, sessionID, question, answer, aiModel, tone, domain string) (*models.QAPair, error) {
	const op = "QAService.Record"

	if sessionID == "" || question == "" || answer == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id, question, and answer are required", nil)
	}

	meta, _ := json.Marshal(map[string]string{"domain": domain})
	row := &models.QAPair{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		AIModel:   aiModel,
		Tone:      tone,
		Metadata:  datatypes.JSON(meta),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.qaPairs.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert qa pair", err)
	}
	return row, nil
}

func (s *qaService) ListBySession(ctx context.Context, sessionID string) ([]models.QAPair, error) {
	const op = "QAService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.qaPairs.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list qa pairs", err)
	}
	return rows, nil
}

func (s *qaService) Delete(ctx context.Context, id string) error {
	const op = "QAService.Delete"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "qa pair id is required", nil)
	}
	if err := s.qaPairs.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "qa pair not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete qa pair", err)
	}
	return nil
}
