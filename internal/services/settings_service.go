package services

import (
	"context"
	"errors"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/cache"
	"github.com/Geeklady55/Interview-assistant1/internal/models"
	mongorepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/mongo"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

const (
	settingsCacheKey = "settings:default"
	settingsCacheTTL = 5 * time.Minute
)

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, s models.Settings) (*models.Settings, error)
}

type settingsService struct {
	repo  mongorepo.SettingsRepository
	cache cache.Cache
}

func NewSettingsService(repo mongorepo.SettingsRepository, c cache.Cache) SettingsService {
	return &settingsService{repo: repo, cache: c}
}

// Get is read-through cached; a missing document yields the defaults.
func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	const op = "SettingsService.Get"

	if s.cache != nil {
		var cached models.Settings
		if hit, err := s.cache.GetJSON(ctx, settingsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	out, err := s.repo.Get(ctx)
	if errors.Is(err, utils.ErrNotFound) {
		def := models.DefaultSettings()
		out = &def
	} else if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load settings", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, settingsCacheKey, out, settingsCacheTTL)
	}
	return out, nil
}

func (s *settingsService) Update(ctx context.Context, in models.Settings) (*models.Settings, error) {
	const op = "SettingsService.Update"

	if in.DefaultDomain != "" && !models.ValidDomain(in.DefaultDomain) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid default_domain", nil)
	}
	if in.StealthOpacity < 0 || in.StealthOpacity > 1 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "stealth_opacity must be within [0,1]", nil)
	}

	if err := s.repo.Upsert(ctx, &in); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save settings", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, settingsCacheKey)
	}
	return &in, nil
}
