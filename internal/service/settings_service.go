package service

import (
	"context"
	"strings"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/domain"
	"barberia/internal/models"

	"github.com/rs/zerolog"
)

const cacheSettings = "settings:all"

type SettingsService struct {
	repo   domain.SettingsRepository
	cache  domain.KeyValueStore
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewSettingsService(repo domain.SettingsRepository, cache domain.KeyValueStore, ttl time.Duration, logger *zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns all settings as a key to value map.
func (s *SettingsService) List(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if s.cache != nil {
		if found, err := s.cache.GetJSON(ctx, cacheSettings, &out); err == nil && found {
			return out, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("settings cache read failed")
		}
	}

	list, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	out = make(map[string]string, len(list))
	for _, st := range list {
		out[st.Key] = st.Value
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheSettings, out, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("settings cache write failed")
		}
	}
	return out, nil
}

func (s *SettingsService) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.Validation("La clave de configuración es obligatoria")
	}
	st := &models.Setting{Key: key, Value: value}
	if err := s.repo.UpsertSetting(ctx, st); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheSettings); err != nil {
			s.logger.Warn().Err(err).Msg("settings cache invalidation failed")
		}
	}
	s.logger.Info().Str("key", key).Msg("Setting updated")
	return st, nil
}
