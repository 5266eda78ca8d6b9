package mongo

import (
	"context"
	"errors"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepo struct {
	col *mongo.Collection
}

func NewSettingsRepo(db *mongo.Database) SettingsRepository {
	return &settingsRepo{col: db.Collection("settings")}
}

func (r *settingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.col.FindOne(ctx, bson.M{"id": "default"}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *settingsRepo) Upsert(ctx context.Context, s *models.Settings) error {
	s.ID = "default"
	_, err := r.col.UpdateOne(ctx,
		bson.M{"id": "default"},
		bson.M{"$set": s},
		options.Update().SetUpsert(true),
	)
	return err
}
