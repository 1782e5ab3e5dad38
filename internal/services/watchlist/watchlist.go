// Package services содержит списки дорам клиента с кэшем в Redis.
//
// Кэш хранит последние списки, которые видел клиент. При чтении из хранилища
// прогресс из кэша побеждает, если он дальше (больше серия или сезон), и
// такая запись сразу же исправляется в хранилище.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

var (
	// ErrUnknownList неизвестный список.
	ErrUnknownList = errors.New("unknown list")
	// ErrEmptyTitle у дорамы нет названия.
	ErrEmptyTitle = errors.New("empty title")
	// ErrNotFound элемент не найден среди списков клиента.
	ErrNotFound = errors.New("dorama not found")
)

// Repository хранилище списков дорам.
type Repository interface {
	ListDoramas(ctx context.Context, phones []string) ([]models.Dorama, error)
	AddDorama(ctx context.Context, phone string, d models.Dorama) (string, error)
	UpdateDorama(ctx context.Context, phones []string, d models.Dorama) error
	RemoveDorama(ctx context.Context, phones []string, id string) error
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service списки дорам клиента.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (s *Service) cached(ctx context.Context, key string) (models.DoramaLists, bool) {
	var lists models.DoramaLists
	found, err := s.cache.Get(ctx, key, &lists)
	if err != nil {
		s.log.Warn("failed to read watch list from cache", slog.String("key", key), sl.Err(err))
		return models.DoramaLists{}, false
	}
	return lists, found
}

func (s *Service) store(ctx context.Context, key string, lists models.DoramaLists) {
	if err := s.cache.Set(ctx, key, lists, s.ttl); err != nil {
		s.log.Warn("failed to cache watch list", slog.String("key", key), sl.Err(err))
	}
}

// mutate применяет fn к спискам в кэше, если они там есть.
func (s *Service) mutate(ctx context.Context, key string, fn func([]models.Dorama) []models.Dorama) bool {
	lists, found := s.cached(ctx, key)
	if !found {
		return false
	}
	s.store(ctx, key, models.Group(fn(lists.All())))
	return true
}

// List возвращает списки клиента. Если хранилище недоступно или пусто,
// возвращаются списки из кэша.
func (s *Service) List(ctx context.Context, rawPhone string) (models.DoramaLists, error) {
	const op = "services.List"

	probes := phone.Probes(rawPhone)
	key := cache.WatchListKey(phone.Normalize(rawPhone))
	cached, found := s.cached(ctx, key)

	items, err := s.repo.ListDoramas(ctx, probes)
	if err != nil {
		if found {
			s.log.Warn("storage unavailable, serving cached watch list", sl.Phone(rawPhone), sl.Err(err))
			return models.Group(cached.All()), nil
		}
		return models.DoramaLists{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(items) == 0 && found {
		return models.Group(cached.All()), nil
	}

	if found {
		items = s.heal(ctx, probes, items, cached.All())
	}
	lists := models.Group(items)
	s.store(ctx, key, lists)
	return lists, nil
}

// heal переносит из кэша более дальний прогресс и записывает его в хранилище.
func (s *Service) heal(ctx context.Context, probes []string, items, cached []models.Dorama) []models.Dorama {
	for i, d := range items {
		c, ok := match(cached, d)
		if !ok {
			continue
		}
		healed := false
		if c.EpisodesWatched > d.EpisodesWatched {
			d.EpisodesWatched = c.EpisodesWatched
			healed = true
		}
		if c.Season > d.Season {
			d.Season = c.Season
			healed = true
		}
		if !healed {
			continue
		}
		s.log.Info("restoring watch progress from cache",
			slog.String("title", d.Title),
			slog.Int("episodes_watched", d.EpisodesWatched),
			slog.Int("season", d.Season))
		if err := s.repo.UpdateDorama(ctx, probes, d); err != nil {
			s.log.Warn("failed to write restored progress", slog.String("id", d.ID), sl.Err(err))
		}
		items[i] = d
	}
	return items
}

// match ищет в кэше элемент с тем же идентификатором, а затем с тем же названием.
func match(cached []models.Dorama, d models.Dorama) (models.Dorama, bool) {
	for _, c := range cached {
		if c.ID != "" && c.ID == d.ID {
			return c, true
		}
	}
	for _, c := range cached {
		if strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(d.Title)) {
			return c, true
		}
	}
	return models.Dorama{}, false
}

// Add добавляет дораму в список list и возвращает её с присвоенным идентификатором.
func (s *Service) Add(ctx context.Context, rawPhone, list string, d models.Dorama) (models.Dorama, error) {
	const op = "services.Add"

	switch list {
	case models.ListWatching, models.ListFavorites, models.ListCompleted:
	default:
		return models.Dorama{}, ErrUnknownList
	}
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return models.Dorama{}, ErrEmptyTitle
	}
	d = d.WithDefaults()
	d.Status = models.StatusForList(list)

	clean := phone.Normalize(rawPhone)
	id, err := s.repo.AddDorama(ctx, clean, d)
	if err != nil {
		return models.Dorama{}, fmt.Errorf("%s: %w", op, err)
	}
	d.ID = id

	s.mutate(ctx, cache.WatchListKey(clean), func(items []models.Dorama) []models.Dorama {
		return append(items, d)
	})
	return d, nil
}

// Update сохраняет прогресс дорамы. Прогресс сначала попадает в кэш: если
// хранилище не ответило, он будет восстановлен при следующем чтении списков.
func (s *Service) Update(ctx context.Context, rawPhone string, d models.Dorama) (models.Dorama, error) {
	const op = "services.Update"

	d = d.WithDefaults()
	key := cache.WatchListKey(phone.Normalize(rawPhone))
	kept := s.mutate(ctx, key, func(items []models.Dorama) []models.Dorama {
		for i := range items {
			if items[i].ID == d.ID {
				if d.Title == "" {
					d.Title = items[i].Title
				}
				if d.Status == "" {
					d.Status = items[i].Status
				}
				items[i] = d
			}
		}
		return items
	})

	err := s.repo.UpdateDorama(ctx, phone.Probes(rawPhone), d)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, storage.ErrNotFound):
		return models.Dorama{}, ErrNotFound
	case kept:
		s.log.Warn("progress kept in cache only", sl.Phone(rawPhone), slog.String("id", d.ID), sl.Err(err))
		return d, nil
	default:
		return models.Dorama{}, fmt.Errorf("%s: %w", op, err)
	}
}

// Remove удаляет дораму из списков клиента.
func (s *Service) Remove(ctx context.Context, rawPhone, id string) error {
	const op = "services.Remove"

	err := s.repo.RemoveDorama(ctx, phone.Probes(rawPhone), id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mutate(ctx, cache.WatchListKey(phone.Normalize(rawPhone)), func(items []models.Dorama) []models.Dorama {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	return nil
}
