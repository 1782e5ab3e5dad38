// Package services содержит глобальную конфигурацию витрины: баннер и статусы сервисов.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

// ErrInvalidBannerType неизвестный тип баннера.
var ErrInvalidBannerType = errors.New("invalid banner type")

// Repository хранилище служебной строки конфигурации.
type Repository interface {
	GetSystemConfig(ctx context.Context) (string, error)
	SaveSystemConfig(ctx context.Context, raw string, now time.Time) error
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service чтение и сохранение системной конфигурации.
type Service struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	policy *bluemonday.Policy
	log    *slog.Logger
	now    func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger, now func() time.Time) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		policy: bluemonday.StrictPolicy(),
		log:    log,
		now:    now,
	}
}

// Get возвращает текущую конфигурацию. Отсутствующая или повреждённая
// конфигурация заменяется значением по умолчанию.
func (s *Service) Get(ctx context.Context) (models.SystemConfig, error) {
	const op = "services.Get"

	var cfg models.SystemConfig
	found, err := s.cache.Get(ctx, cache.SystemConfigKey, &cfg)
	if err != nil {
		s.log.Warn("failed to read system config from cache", sl.Err(err))
	}
	if found {
		return withDefaults(cfg), nil
	}

	raw, err := s.repo.GetSystemConfig(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.DefaultSystemConfig(), nil
	case err != nil:
		return models.SystemConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.log.Warn("stored system config is broken, using default", sl.Err(err))
		return models.DefaultSystemConfig(), nil
	}
	cfg = withDefaults(cfg)

	if err := s.cache.Set(ctx, cache.SystemConfigKey, cfg, s.ttl); err != nil {
		s.log.Warn("failed to cache system config", sl.Err(err))
	}
	return cfg, nil
}

// Save проверяет и сохраняет конфигурацию. Текст баннера очищается от разметки.
func (s *Service) Save(ctx context.Context, cfg models.SystemConfig) (models.SystemConfig, error) {
	const op = "services.Save"

	switch cfg.BannerType {
	case "":
		cfg.BannerType = models.BannerInfo
	case models.BannerInfo, models.BannerWarning, models.BannerError, models.BannerSuccess:
	default:
		return models.SystemConfig{}, ErrInvalidBannerType
	}
	cfg.BannerText = strings.TrimSpace(s.policy.Sanitize(cfg.BannerText))
	cfg = withDefaults(cfg)

	raw, err := json.Marshal(cfg)
	if err != nil {
		return models.SystemConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SaveSystemConfig(ctx, string(raw), s.now()); err != nil {
		return models.SystemConfig{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cache.SystemConfigKey, cfg, s.ttl); err != nil {
		s.log.Warn("failed to cache system config, invalidating", sl.Err(err))
		if err := s.cache.Invalidate(ctx, cache.SystemConfigKey); err != nil {
			s.log.Error("failed to invalidate system config", sl.Err(err))
		}
	}
	s.log.Info("system config saved", slog.Bool("banner_active", cfg.BannerActive), slog.String("banner_type", cfg.BannerType))
	return cfg, nil
}

func withDefaults(cfg models.SystemConfig) models.SystemConfig {
	if cfg.BannerType == "" {
		cfg.BannerType = models.BannerInfo
	}
	if cfg.ServiceStatus == nil {
		cfg.ServiceStatus = models.DefaultSystemConfig().ServiceStatus
	}
	return cfg
}
