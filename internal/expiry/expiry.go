// Package expiry вычисляет состояние подписки клиента по дате покупки и
// длительности, а также предупреждения о возрасте общих учётных данных.
//
// Все функции чистые и принимают текущее время явно.
package expiry

import (
	"math"
	"time"

	"github.com/magabrotheeeer/storefront/internal/lib/month"
)

// State отображаемое состояние доступа клиента к сервису.
type State string

const (
	StateActive       State = "active"
	StateExpiringSoon State = "expiring_soon"
	StateCritical     State = "critical"
	StateExpired      State = "expired"
	StateBlocked      State = "blocked"
)

const (
	criticalDays     = 2
	expiringSoonDays = 5
)

// Status результат оценки подписки.
type Status struct {
	State    State     `json:"state"`
	Expiry   time.Time `json:"expiry"`
	DaysLeft int       `json:"days_left"`
}

// Active сообщает, даёт ли состояние доступ к учётным данным.
func (s Status) Active() bool {
	return s.State != StateExpired && s.State != StateBlocked
}

// Date возвращает дату окончания подписки: purchase плюс months календарных месяцев.
func Date(purchase time.Time, months int) time.Time {
	return month.Add(purchase, months)
}

// DaysLeft число дней до окончания с округлением вверх. Отрицательно после окончания.
func DaysLeft(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// AgeDays полные дни, прошедшие с момента t.
func AgeDays(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// Evaluate вычисляет состояние подписки на момент now.
//
// override принудительно делает подписку активной, debtor блокирует доступ,
// если нет override.
func Evaluate(purchase time.Time, months int, debtor, override bool, now time.Time) Status {
	exp := Date(purchase, months)
	st := Status{Expiry: exp, DaysLeft: DaysLeft(exp, now)}

	switch {
	case override:
		st.State = StateActive
	case debtor:
		st.State = StateBlocked
	case now.After(exp):
		st.State = StateExpired
	case st.DaysLeft <= criticalDays:
		st.State = StateCritical
	case st.DaysLeft <= expiringSoonDays:
		st.State = StateExpiringSoon
	default:
		st.State = StateActive
	}
	return st
}
