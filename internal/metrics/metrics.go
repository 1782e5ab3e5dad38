// Package metrics объявляет счётчики Prometheus витрины.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/storefront/internal/assignment"
)

// Исходы выдачи учётных данных клиенту.
const (
	OutcomeAssigned  = "assigned"
	OutcomeFallback  = "fallback"
	OutcomeEmptyPool = "empty_pool"
	OutcomeExpired   = "expired"
)

var (
	// Assignments число выдач учётных данных по сервису и исходу.
	Assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "assignments_total",
		Help:      "Number of credential lookups by service and outcome.",
	}, []string{"service", "outcome"})

	// CredentialAlerts число выданных клиентам предупреждений о ротации.
	CredentialAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "credential_alerts_total",
		Help:      "Number of credential rotation alerts attached to lookups.",
	}, []string{"service"})

	// Notifications число опубликованных уведомлений по ключу маршрутизации.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "notifications_published_total",
		Help:      "Number of notifications published to the broker.",
	}, []string{"routing_key"})
)

// ObserveAssignment учитывает результат назначения.
func ObserveAssignment(res assignment.Result) {
	switch {
	case !res.Assigned():
		Assignments.WithLabelValues(res.Service, OutcomeEmptyPool).Inc()
	case res.Position < 0:
		Assignments.WithLabelValues(res.Service, OutcomeFallback).Inc()
	default:
		Assignments.WithLabelValues(res.Service, OutcomeAssigned).Inc()
	}
	if res.Alert != "" {
		CredentialAlerts.WithLabelValues(res.Service).Inc()
	}
}

// ObserveExpired учитывает отказ в выдаче из-за истёкшей подписки или долга.
func ObserveExpired(service string) {
	Assignments.WithLabelValues(service, OutcomeExpired).Inc()
}
