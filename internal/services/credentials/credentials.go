// Package services содержит управление общими учётными данными для
// администратора: CRUD, пакетную загрузку и обратный просмотр назначений.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/assignment"
	"github.com/magabrotheeeer/storefront/internal/credential"
	"github.com/magabrotheeeer/storefront/internal/expiry"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/snapshot"
	"github.com/magabrotheeeer/storefront/internal/storage"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

var (
	// ErrNotFound учётные данные не найдены.
	ErrNotFound = errors.New("credential not found")
	// ErrReservedService название сервиса зарезервировано под системную конфигурацию.
	ErrReservedService = errors.New("reserved service name")
	// ErrInvalidDate дата публикации не разобрана.
	ErrInvalidDate = errors.New("invalid published_at")
	// ErrNothingToImport в тексте пакетной загрузки нет ни одной пары.
	ErrNothingToImport = errors.New("no email/password pairs found")
)

// Repository хранилище учётных данных.
type Repository interface {
	snapshot.Source
	GetCredential(ctx context.Context, id string) (models.Credential, error)
	CreateCredential(ctx context.Context, c models.Credential) (string, error)
	CreateCredentials(ctx context.Context, creds []models.Credential) (int, error)
	UpdateCredential(ctx context.Context, c models.Credential) error
	DeleteCredential(ctx context.Context, id string) error
}

// Usage учётные данные с числом назначенных клиентов.
type Usage struct {
	models.Credential
	Users int    `json:"users"`
	Alert string `json:"alert,omitempty"`
}

// Service управление учётными данными.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger, now func() time.Time) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  now,
	}
}

// ParsePublishedAt разбирает дату публикации: RFC 3339 или 2006-01-02.
// Пустая строка означает now.
func ParsePublishedAt(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (s *Service) fromRequest(req models.DummyCredential) (models.Credential, error) {
	service := strings.TrimSpace(req.Service)
	if strings.EqualFold(service, models.SystemConfigService) {
		return models.Credential{}, ErrReservedService
	}
	published, err := ParsePublishedAt(req.PublishedAt, s.now())
	if err != nil {
		return models.Credential{}, err
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	return models.Credential{
		Service:     service,
		Email:       strings.TrimSpace(req.Email),
		Password:    strings.TrimSpace(req.Password),
		PublishedAt: published,
		IsVisible:   visible,
	}, nil
}

// List возвращает все учётные данные, включая скрытые, без служебной строки.
func (s *Service) List(ctx context.Context) ([]models.Credential, error) {
	const op = "services.List"
	all, err := s.repo.ListAllCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return credential.WithoutSentinel(all), nil
}

// Create сохраняет новые учётные данные и возвращает их идентификатор.
func (s *Service) Create(ctx context.Context, req models.DummyCredential) (string, error) {
	const op = "services.Create"
	c, err := s.fromRequest(req)
	if err != nil {
		return "", err
	}
	id, err := s.repo.CreateCredential(ctx, c)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credential created", slog.String("id", id), slog.String("service", c.Service))
	return id, nil
}

// Update заменяет учётные данные id.
func (s *Service) Update(ctx context.Context, id string, req models.DummyCredential) error {
	const op = "services.Update"
	c, err := s.fromRequest(req)
	if err != nil {
		return err
	}
	c.ID = id
	if err := s.repo.UpdateCredential(ctx, c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет учётные данные id.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.Delete"
	if err := s.repo.DeleteCredential(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credential deleted", slog.String("id", id))
	return nil
}

// BulkImport сохраняет все пары из текста одной транзакцией и возвращает их число.
func (s *Service) BulkImport(ctx context.Context, req models.DummyBulkCredentials) (int, error) {
	const op = "services.BulkImport"

	service := strings.TrimSpace(req.Service)
	if strings.EqualFold(service, models.SystemConfigService) {
		return 0, ErrReservedService
	}
	published, err := ParsePublishedAt(req.PublishedAt, s.now())
	if err != nil {
		return 0, err
	}
	logins := credential.ParseBulk(req.Text)
	if len(logins) == 0 {
		return 0, ErrNothingToImport
	}

	creds := make([]models.Credential, 0, len(logins))
	for _, l := range logins {
		creds = append(creds, models.Credential{
			Service:     service,
			Email:       l.Email,
			Password:    l.Password,
			PublishedAt: published,
			IsVisible:   true,
		})
	}
	n, err := s.repo.CreateCredentials(ctx, creds)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credentials imported", slog.String("service", service), slog.Int("count", n))
	return n, nil
}

// AssignedUsers возвращает клиентов, которым сейчас выданы учётные данные id.
// Скрытые учётные данные никому не выданы.
func (s *Service) AssignedUsers(ctx context.Context, id string) ([]subscription.Client, error) {
	const op = "services.AssignedUsers"

	c, err := s.repo.GetCredential(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.IsSystemConfig() {
		return nil, ErrNotFound
	}

	snap, err := snapshot.Load(ctx, s.repo, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users := snap.Engine(c.Service).AssignedClients(id)
	if users == nil {
		users = []subscription.Client{}
	}
	return users, nil
}

// Usage возвращает все учётные данные с числом назначенных клиентов.
// Для каждого сервиса используется один движок, как и в кабинете клиента.
func (s *Service) Usage(ctx context.Context) ([]Usage, error) {
	const op = "services.Usage"

	snap, err := snapshot.Load(ctx, s.repo, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counts := make(map[string]int, len(snap.Credentials))
	for _, svc := range snap.Services() {
		for id, n := range snap.Engine(svc).Counts() {
			if svc == credentialService(snap.Credentials, id) {
				counts[id] = n
			}
		}
	}

	out := make([]Usage, 0, len(snap.Credentials))
	for _, c := range snap.Credentials {
		u := Usage{Credential: c, Users: counts[c.ID]}
		if c.IsVisible {
			u.Alert, _ = expiry.CredentialAlert(c.Service, c.PublishedAt, snap.Now)
		}
		out = append(out, u)
	}
	return out, nil
}

func credentialService(creds []models.Credential, id string) string {
	if c, ok := credential.Find(creds, id); ok {
		return c.Service
	}
	return ""
}

// Plan возвращает распределение учётных данных сервиса по клиентам.
func (s *Service) Plan(ctx context.Context, service string) ([]assignment.Slot, error) {
	const op = "services.Plan"
	snap, err := snapshot.Load(ctx, s.repo, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snap.Engine(service).Plan(), nil
}
