package postgres

import (
	"context"
	"errors"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
	"gorm.io/gorm"
)

type QAPairRepo interface {
	Insert(ctx context.Context, qa *models.QAPair) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.QAPair, error)
	GetByID(ctx context.Context, id string) (*models.QAPair, error)
	Delete(ctx context.Context, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type qaPairRepo struct {
	db *gorm.DB
}

func NewQAPairRepo(db *gorm.DB) QAPairRepo {
	return &qaPairRepo{db: db}
}

func (r *qaPairRepo) Insert(ctx context.Context, qa *models.QAPair) error {
	return r.db.WithContext(ctx).Create(qa).Error
}

// ListBySession returns QA pairs in creation order (oldest first); history
// views reverse this client-side when they want most recent first.
func (r *qaPairRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.QAPair, error) {
	if limit <= 0 {
		limit = 1000
	}
	var rows []models.QAPair
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *qaPairRepo) GetByID(ctx context.Context, id string) (*models.QAPair, error) {
	var row models.QAPair
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *qaPairRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.QAPair{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *qaPairRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.QAPair{}).Error
}
