package expiry

import (
	"time"

	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// rotationRule описывает цикл смены пароля общих учётных данных сервиса.
type rotationRule struct {
	service   string
	alertDays int
	message   string
}

var rotationRules = []rotationRule{
	{service: "viki", alertDays: 13, message: "⚠️ Esta conta vence amanhã ou já venceu (Ciclo de 14 dias)."},
	{service: "kocowa", alertDays: 28, message: "⚠️ Esta conta vence em breve (Ciclo de 30 dias)."},
}

// CredentialAlert возвращает предупреждение о скорой ротации учётных данных
// сервиса, опубликованных в publishedAt. Для сервисов без цикла ротации
// предупреждения нет.
func CredentialAlert(service string, publishedAt, now time.Time) (string, bool) {
	age := AgeDays(publishedAt, now)
	for _, r := range rotationRules {
		if !subscription.Matches(service, r.service) {
			continue
		}
		if age >= r.alertDays {
			return r.message, true
		}
		return "", false
	}
	return "", false
}

// RotationCycle возвращает порог предупреждения в днях для сервиса.
func RotationCycle(service string) (int, bool) {
	for _, r := range rotationRules {
		if subscription.Matches(service, r.service) {
			return r.alertDays, true
		}
	}
	return 0, false
}
