// Package services содержит личный кабинет клиента: профиль со сроками
// подписок, выданные учётные данные, имя и прогресс игр.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/expiry"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/metrics"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/snapshot"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

var (
	// ErrClientNotFound у номера нет неудалённых записей.
	ErrClientNotFound = errors.New("client not found")
	// ErrNotSubscribed клиент не подписан на запрошенный сервис.
	ErrNotSubscribed = errors.New("client is not subscribed to service")
	// ErrEmptyName пустое имя.
	ErrEmptyName = errors.New("empty name")
	// ErrInvalidProgress прогресс игры не является JSON.
	ErrInvalidProgress = errors.New("invalid game progress")
)

// Repository описывает хранилище, нужное кабинету клиента.
type Repository interface {
	snapshot.Source
	ListClientsByPhones(ctx context.Context, phones []string) ([]models.ClientRecord, error)
	UpdateClientName(ctx context.Context, phones []string, name string) (int64, error)
	UpdateGameProgress(ctx context.Context, id string, progress json.RawMessage) error
}

// ServiceStatus срок и состояние подписки на один сервис.
type ServiceStatus struct {
	Service string              `json:"service"`
	Detail  subscription.Detail `json:"detail"`
	Status  expiry.Status       `json:"status"`
}

// Profile сведённый клиент с общим состоянием и состояниями по сервисам.
type Profile struct {
	Client   subscription.Client `json:"client"`
	Status   expiry.Status       `json:"status"`
	Services []ServiceStatus     `json:"services"`
}

// CredentialView выданные клиенту учётные данные сервиса.
// Available = false, если подписка на сервис истекла, клиент заблокирован
// как должник или учётных данных ещё нет.
type CredentialView struct {
	Service    string             `json:"service"`
	Status     expiry.Status      `json:"status"`
	Available  bool               `json:"available"`
	Credential *models.Credential `json:"credential,omitempty"`
	Alert      string             `json:"alert,omitempty"`
}

// Service кабинет клиента.
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

func (s *Service) client(ctx context.Context, op, rawPhone string) (subscription.Client, error) {
	records, err := s.repo.ListClientsByPhones(ctx, phone.Probes(rawPhone))
	if err != nil {
		return subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	client, ok := subscription.Merge(records)
	if !ok {
		return subscription.Client{}, ErrClientNotFound
	}
	return client, nil
}

func statusOf(c subscription.Client, d subscription.Detail, now time.Time) expiry.Status {
	return expiry.Evaluate(d.PurchaseDate, d.DurationMonths, c.IsDebtor, c.OverrideExpiration, now)
}

// Profile возвращает профиль клиента. Общее состояние считается по основной записи.
func (s *Service) Profile(ctx context.Context, rawPhone string) (Profile, error) {
	const op = "services.Profile"

	client, err := s.client(ctx, op, rawPhone)
	if err != nil {
		return Profile{}, err
	}
	now := s.now()
	p := Profile{
		Client:   client,
		Status:   statusOf(client, client.Primary, now),
		Services: make([]ServiceStatus, 0, len(client.Services)),
	}
	for _, svc := range client.Services {
		d := client.Detail(svc)
		p.Services = append(p.Services, ServiceStatus{Service: svc, Detail: d, Status: statusOf(client, d, now)})
	}
	return p, nil
}

// Credentials возвращает учётные данные по каждому сервису клиента.
// Все сервисы считаются по одному снимку хранилища. Если снимок не загрузился,
// сервисы возвращаются без учётных данных.
func (s *Service) Credentials(ctx context.Context, rawPhone string) ([]CredentialView, error) {
	const op = "services.Credentials"

	snap, err := snapshot.Load(ctx, s.repo, s.now())
	if err != nil {
		s.log.Error("failed to load snapshot", slog.String("op", op), sl.Phone(rawPhone), sl.Err(err))
		return s.withoutCredentials(ctx, op, rawPhone)
	}
	client, ok := snap.Client(rawPhone)
	if !ok {
		return nil, ErrClientNotFound
	}

	views := make([]CredentialView, 0, len(client.Services))
	for _, svc := range client.Services {
		views = append(views, view(snap, client, svc))
	}
	return views, nil
}

// withoutCredentials возвращает сервисы клиента без учётных данных и алертов.
func (s *Service) withoutCredentials(ctx context.Context, op, rawPhone string) ([]CredentialView, error) {
	client, err := s.client(ctx, op, rawPhone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]CredentialView, 0, len(client.Services))
	for _, svc := range client.Services {
		views = append(views, CredentialView{Service: svc, Status: statusOf(client, client.Detail(svc), now)})
	}
	return views, nil
}

// Credential возвращает учётные данные одного сервиса. service сравнивается
// с сервисами клиента без учёта регистра по вхождению подстроки.
//
// Ошибка хранилища не возвращается клиенту: она логируется, а результат
// остаётся без учётных данных.
func (s *Service) Credential(ctx context.Context, rawPhone, service string) (CredentialView, error) {
	const op = "services.Credential"
	log := s.log.With(slog.String("op", op), sl.Phone(rawPhone), slog.String("service", service))

	snap, err := snapshot.Load(ctx, s.repo, s.now())
	if err != nil {
		log.Error("failed to load snapshot", sl.Err(err))
		return CredentialView{Service: service}, nil
	}
	client, ok := snap.Client(rawPhone)
	if !ok {
		return CredentialView{}, ErrClientNotFound
	}
	for _, svc := range client.Services {
		if subscription.Matches(svc, service) {
			return view(snap, client, svc), nil
		}
	}
	return CredentialView{}, ErrNotSubscribed
}

func view(snap *snapshot.Snapshot, client subscription.Client, service string) CredentialView {
	v := CredentialView{
		Service: service,
		Status:  statusOf(client, client.Detail(service), snap.Now),
	}
	if !v.Status.Active() {
		metrics.ObserveExpired(service)
		return v
	}

	res := snap.Engine(service).Assign(client.Phone)
	metrics.ObserveAssignment(res)
	v.Available = res.Assigned()
	v.Credential = res.Credential
	v.Alert = res.Alert
	return v
}

// Rename меняет имя во всех записях клиента.
func (s *Service) Rename(ctx context.Context, rawPhone, name string) error {
	const op = "services.Rename"

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	n, err := s.repo.UpdateClientName(ctx, phone.Probes(rawPhone), name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrClientNotFound
	}
	return nil
}

// SaveGameProgress сливает data с сохранённым прогрессом игры gameID и
// возвращает весь прогресс клиента. Объекты сливаются по верхнему уровню
// ключей, остальные значения заменяются целиком.
func (s *Service) SaveGameProgress(ctx context.Context, rawPhone, gameID string, data json.RawMessage) (json.RawMessage, error) {
	const op = "services.SaveGameProgress"

	if !json.Valid(data) {
		return nil, ErrInvalidProgress
	}
	client, err := s.client(ctx, op, rawPhone)
	if err != nil {
		return nil, err
	}

	merged, err := MergeProgress(client.GameProgress, gameID, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateGameProgress(ctx, client.ID, merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return merged, nil
}

// MergeProgress сливает data в запись gameID прогресса current.
func MergeProgress(current json.RawMessage, gameID string, data json.RawMessage) (json.RawMessage, error) {
	games := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &games); err != nil || games == nil {
			games = map[string]json.RawMessage{}
		}
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(data, &patch); err != nil || patch == nil {
		games[gameID] = data
		return json.Marshal(games)
	}

	entry := map[string]json.RawMessage{}
	if prev, ok := games[gameID]; ok {
		if err := json.Unmarshal(prev, &entry); err != nil || entry == nil {
			entry = map[string]json.RawMessage{}
		}
	}
	for k, v := range patch {
		entry[k] = v
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	games[gameID] = raw
	return json.Marshal(games)
}
