// Package server реализует gRPC-сервер проверки готовности витрины.
//
// HealthServer публикует стандартный сервис grpc.health.v1 и переключает
// статус витрины по результату проверки хранилища.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/storefront/internal/lib/sl"
)

// ServiceStorefront имя сервиса в ответах health check.
const ServiceStorefront = "storefront"

// ReadinessChecker проверяет доступность зависимости.
type ReadinessChecker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// HealthServer хранит статус витрины для grpc.health.v1.
type HealthServer struct {
	health  *health.Server
	checker ReadinessChecker
	log     *slog.Logger
}

// NewHealthServer создает новый экземпляр HealthServer. До первой проверки
// витрина считается не готовой.
func NewHealthServer(checker ReadinessChecker, logger *slog.Logger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceStorefront, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		health:  h,
		checker: checker,
		log:     logger,
	}
}

// Register регистрирует сервис на gRPC-сервере.
func (s *HealthServer) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, s.health)
}

// Probe проверяет хранилище и обновляет статус. Возвращает true, если витрина готова.
func (s *HealthServer) Probe(ctx context.Context) bool {
	if err := s.checker.CheckDatabaseReady(ctx); err != nil {
		s.log.Warn("storage is not ready", sl.Err(err))
		s.health.SetServingStatus(ServiceStorefront, healthpb.HealthCheckResponse_NOT_SERVING)
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	s.health.SetServingStatus(ServiceStorefront, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return true
}

// Watch повторяет Probe с интервалом interval до отмены ctx,
// после чего переводит все сервисы в NOT_SERVING.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}
