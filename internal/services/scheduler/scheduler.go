// Package services содержит планировщик уведомлений: он периодически
// проверяет возраст общих учётных данных и истекающие подписки и публикует
// уведомления в брокер.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/storefront/internal/expiry"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/metrics"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/rabbitmq"
	"github.com/magabrotheeeer/storefront/internal/services/snapshot"
)

// ExpiringDays окно уведомления об истекающей подписке.
const ExpiringDays = 5

// Publisher публикует уведомления.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// HealthChecker проверяет готовность витрины.
type HealthChecker interface {
	Check(ctx context.Context, service string) error
}

// Report итог одного прохода планировщика.
type Report struct {
	CredentialAlerts int
	ExpiringClients  int
	Failed           int
}

// SchedulerService планировщик уведомлений.
type SchedulerService struct {
	src      snapshot.Source
	pub      Publisher
	health   HealthChecker
	service  string
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService. health может
// быть nil, тогда готовность витрины не проверяется.
func NewSchedulerService(src snapshot.Source, pub Publisher, health HealthChecker, interval time.Duration,
	log *slog.Logger, now func() time.Time) *SchedulerService {
	return &SchedulerService{
		src:      src,
		pub:      pub,
		health:   health,
		service:  "storefront",
		interval: interval,
		log:      log,
		now:      now,
	}
}

// Run выполняет проход сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) error {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *SchedulerService) tick(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("scheduler run failed", sl.Err(err))
		return
	}
	s.log.Info("scheduler run finished",
		slog.Int("credential_alerts", report.CredentialAlerts),
		slog.Int("expiring_clients", report.ExpiringClients),
		slog.Int("failed", report.Failed))
}

// RunOnce выполняет один проход: строит снимок и публикует все уведомления.
// Ошибка публикации одного уведомления не прерывает проход.
func (s *SchedulerService) RunOnce(ctx context.Context) (Report, error) {
	const op = "services.RunOnce"

	if s.health != nil {
		if err := s.health.Check(ctx, s.service); err != nil {
			return Report{}, fmt.Errorf("%s: storefront is not ready: %w", op, err)
		}
	}

	snap, err := snapshot.Load(ctx, s.src, s.now())
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	var report Report
	for _, msg := range CredentialAlerts(snap) {
		if s.publish(ctx, rabbitmq.RoutingCredentialAlert, msg) {
			report.CredentialAlerts++
		} else {
			report.Failed++
		}
	}
	for _, msg := range ExpiringClients(snap) {
		if s.publish(ctx, rabbitmq.RoutingExpiringClient, msg) {
			report.ExpiringClients++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func (s *SchedulerService) publish(ctx context.Context, routingKey string, msg any) bool {
	if err := s.pub.Publish(ctx, routingKey, msg); err != nil {
		s.log.Error("failed to publish message", slog.String("routing_key", routingKey), sl.Err(err))
		return false
	}
	metrics.Notifications.WithLabelValues(routingKey).Inc()
	return true
}

// CredentialAlerts возвращает уведомления по видимым учётным данным,
// которым пора менять пароль.
func CredentialAlerts(snap *snapshot.Snapshot) []models.CredentialAlertMessage {
	var out []models.CredentialAlertMessage
	for _, c := range snap.Credentials {
		if !c.IsVisible {
			continue
		}
		alert, ok := expiry.CredentialAlert(c.Service, c.PublishedAt, snap.Now)
		if !ok {
			continue
		}
		out = append(out, models.CredentialAlertMessage{
			CredentialID: c.ID,
			Service:      c.Service,
			Email:        c.Email,
			PublishedAt:  c.PublishedAt,
			AgeDays:      expiry.AgeDays(c.PublishedAt, snap.Now),
			Alert:        alert,
			AssignedTo:   snap.Engine(c.Service).Counts()[c.ID],
		})
	}
	return out
}

// ExpiringClients возвращает уведомления по сервисам клиентов, истекающим
// в ближайшие ExpiringDays дней. Должники и клиенты с ручным продлением пропускаются.
func ExpiringClients(snap *snapshot.Snapshot) []models.ExpiringClientMessage {
	var out []models.ExpiringClientMessage
	for _, c := range snap.Clients {
		if c.IsDebtor || c.OverrideExpiration {
			continue
		}
		for _, svc := range c.Services {
			exp := c.Detail(svc).Expiry()
			left := expiry.DaysLeft(exp, snap.Now)
			if left < 0 || left > ExpiringDays {
				continue
			}
			out = append(out, models.ExpiringClientMessage{
				PhoneNumber: c.PhoneNumber,
				ClientName:  c.Name,
				Service:     svc,
				Expiry:      exp,
				DaysLeft:    left,
			})
		}
	}
	return out
}
