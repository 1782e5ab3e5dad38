// Package services содержит управление записями клиентов для администратора
// и отчёты по ним.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/expiry"
	"github.com/magabrotheeeer/storefront/internal/lib/password"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

const (
	// ExpiringSoonDays окно "скоро истекает" в сводке.
	ExpiringSoonDays = 7
	// ReportDays окно отчёта об истекающих подписках.
	ReportDays = 10

	demoPrefix   = "99999"
	demoDuration = 999
)

// DemoPassword пароль демонстрационного клиента.
const DemoPassword = "1234"

// DemoServices сервисы демонстрационного клиента.
var DemoServices = models.ServiceList{"Viki Pass", "Kocowa+", "IQIYI", "WeTV", "DramaBox"}

var (
	// ErrNotFound запись клиента не найдена.
	ErrNotFound = errors.New("client not found")
	// ErrInvalidDate дата покупки не разобрана.
	ErrInvalidDate = errors.New("invalid purchase_date")
	// ErrInvalidPhone номер не содержит цифр.
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Repository хранилище записей клиентов.
type Repository interface {
	ListAllClients(ctx context.Context) ([]models.ClientRecord, error)
	GetClient(ctx context.Context, id string) (models.ClientRecord, error)
	CreateClient(ctx context.Context, c models.ClientRecord) (string, error)
	UpdateClient(ctx context.Context, c models.ClientRecord) error
	SoftDeleteClient(ctx context.Context, id string) error
	SetOverride(ctx context.Context, id string, override bool) error
	ResetAllPasswords(ctx context.Context) (int64, error)
}

// Service управление клиентами.
type Service struct {
	repo         Repository
	log          *slog.Logger
	now          func() time.Time
	monthlyPrice float64
	demoDigits   func() string
}

// NewService создает новый экземпляр Service. monthlyPrice используется для
// оценки выручки в сводке.
func NewService(repo Repository, monthlyPrice float64, log *slog.Logger, now func() time.Time) *Service {
	return &Service{
		repo:         repo,
		log:          log,
		now:          now,
		monthlyPrice: monthlyPrice,
		demoDigits: func() string {
			return fmt.Sprintf("%04d", rand.Intn(10000))
		},
	}
}

// List возвращает все неудалённые записи.
func (s *Service) List(ctx context.Context) ([]models.ClientRecord, error) {
	const op = "services.List"
	all, err := s.repo.ListAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]models.ClientRecord, 0, len(all))
	for _, r := range all {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out, nil
}

// Save создаёт запись, если ID пустой, иначе обновляет существующую.
// Возвращает идентификатор записи.
func (s *Service) Save(ctx context.Context, req models.DummyClient) (string, error) {
	const op = "services.Save"

	purchase, err := time.Parse(time.DateOnly, strings.TrimSpace(req.PurchaseDate))
	if err != nil {
		return "", ErrInvalidDate
	}
	clean := phone.Normalize(req.PhoneNumber)
	if clean == "" {
		return "", ErrInvalidPhone
	}
	rec := models.ClientRecord{
		ID:                 strings.TrimSpace(req.ID),
		PhoneNumber:        clean,
		ClientName:         strings.TrimSpace(req.ClientName),
		Subscriptions:      req.Subscriptions,
		PurchaseDate:       purchase,
		DurationMonths:     req.DurationMonths,
		IsDebtor:           req.IsDebtor,
		OverrideExpiration: req.OverrideExpiration,
	}

	if rec.ID == "" {
		id, err := s.repo.CreateClient(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("client created", slog.String("id", id), sl.Phone(clean))
		return id, nil
	}

	if err := s.repo.UpdateClient(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return rec.ID, nil
}

// Delete мягко удаляет запись.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.Delete"
	if err := s.repo.SoftDeleteClient(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("client deleted", slog.String("id", id))
	return nil
}

// ToggleOverride переключает ручное продление записи и возвращает новое значение.
func (s *Service) ToggleOverride(ctx context.Context, id string) (bool, error) {
	const op = "services.ToggleOverride"

	rec, err := s.repo.GetClient(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	next := !rec.OverrideExpiration
	if err := s.repo.SetOverride(ctx, id, next); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("override toggled", slog.String("id", id), slog.Bool("override", next))
	return next, nil
}

// CreateDemo создаёт демонстрационного клиента со всеми сервисами и
// бессрочным доступом. Пароль демо-клиента 1234.
func (s *Service) CreateDemo(ctx context.Context) (models.ClientRecord, error) {
	const op = "services.CreateDemo"

	hash, err := password.GetHash(DemoPassword)
	if err != nil {
		return models.ClientRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	digits := s.demoDigits()
	now := s.now()
	rec := models.ClientRecord{
		PhoneNumber:        demoPrefix + digits,
		ClientName:         fmt.Sprintf("Demo User (%s)", digits),
		ClientPassword:     hash,
		Subscriptions:      append(models.ServiceList(nil), DemoServices...),
		PurchaseDate:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		DurationMonths:     demoDuration,
		OverrideExpiration: true,
	}
	rec.ID, err = s.repo.CreateClient(ctx, rec)
	if err != nil {
		return models.ClientRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("demo client created", slog.String("id", rec.ID), sl.Phone(rec.PhoneNumber))
	return rec, nil
}

// ResetPasswords очищает пароли всех клиентов и возвращает число изменённых записей.
func (s *Service) ResetPasswords(ctx context.Context) (int64, error) {
	const op = "services.ResetPasswords"
	n, err := s.repo.ResetAllPasswords(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn("client passwords reset", slog.Int64("count", n))
	return n, nil
}

// Stats считает сводку по сырым записям, без сведения по номеру.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	const op = "services.Stats"

	all, err := s.repo.ListAllClients(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()

	var st models.Stats
	for _, r := range all {
		if r.Deleted {
			continue
		}
		st.TotalClients++
		if r.IsDebtor {
			st.Debtors++
			continue
		}
		st.ActiveClients++
		left := expiry.DaysLeft(expiry.Date(r.PurchaseDate, r.DurationMonths), now)
		if left >= 0 && left <= ExpiringSoonDays {
			st.ExpiringSoon++
		}
	}
	st.TotalRevenue = float64(st.ActiveClients) * s.monthlyPrice
	return st, nil
}

// Expiring возвращает записи, истекающие в ближайшие ReportDays дней или уже
// истёкшие, от самых срочных.
func (s *Service) Expiring(ctx context.Context) ([]models.ExpiringClient, error) {
	const op = "services.Expiring"

	all, err := s.repo.ListAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()

	out := make([]models.ExpiringClient, 0)
	for _, r := range all {
		if r.Deleted || r.IsDebtor {
			continue
		}
		exp := expiry.Date(r.PurchaseDate, r.DurationMonths)
		left := expiry.DaysLeft(exp, now)
		if left > ReportDays {
			continue
		}
		out = append(out, models.ExpiringClient{
			ID:          r.ID,
			PhoneNumber: r.PhoneNumber,
			ClientName:  r.ClientName,
			Expiry:      exp,
			DaysLeft:    left,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft < out[j].DaysLeft
	})
	return out, nil
}
