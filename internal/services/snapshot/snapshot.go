// Package snapshot загружает клиентов и учётные данные одним снимком,
// чтобы все назначения запроса считались по одному и тому же состоянию.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/storefront/internal/assignment"
	"github.com/magabrotheeeer/storefront/internal/credential"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// Source хранилище, из которого строится снимок.
type Source interface {
	ListAllClients(ctx context.Context) ([]models.ClientRecord, error)
	ListAllCredentials(ctx context.Context) ([]models.Credential, error)
}

// Snapshot сведённые клиенты и все учётные данные на момент Now.
// Не предназначен для одновременного использования из нескольких горутин.
type Snapshot struct {
	Clients     []subscription.Client
	Credentials []models.Credential
	Now         time.Time

	engines map[string]*assignment.Engine
}

// Load читает обе таблицы параллельно.
func Load(ctx context.Context, src Source, now time.Time) (*Snapshot, error) {
	const op = "snapshot.Load"

	var (
		records []models.ClientRecord
		creds   []models.Credential
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = src.ListAllClients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		creds, err = src.ListAllCredentials(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return New(records, creds, now), nil
}

// New строит снимок из уже загруженных записей.
func New(records []models.ClientRecord, creds []models.Credential, now time.Time) *Snapshot {
	return &Snapshot{
		Clients:     subscription.GroupByPhone(records),
		Credentials: credential.WithoutSentinel(creds),
		Now:         now,
		engines:     make(map[string]*assignment.Engine),
	}
}

// Engine возвращает движок назначения сервиса, построенный по снимку.
// Повторные вызовы для того же сервиса возвращают тот же движок.
func (s *Snapshot) Engine(service string) *assignment.Engine {
	if e, ok := s.engines[service]; ok {
		return e
	}
	e := assignment.New(s.Clients, s.Credentials, service, s.Now)
	s.engines[service] = e
	return e
}

// Client ищет клиента по номеру с учётом вариантов записи кода страны.
func (s *Snapshot) Client(rawPhone string) (subscription.Client, bool) {
	return subscription.Find(s.Clients, rawPhone)
}

// Services возвращает различные названия сервисов учётных данных в порядке появления.
func (s *Snapshot) Services() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range s.Credentials {
		if _, ok := seen[c.Service]; ok {
			continue
		}
		seen[c.Service] = struct{}{}
		out = append(out, c.Service)
	}
	return out
}
