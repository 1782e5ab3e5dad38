package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvaluate(t *testing.T) {
	purchase := date(2024, 1, 10)
	exp := date(2024, 2, 10)

	tests := []struct {
		name     string
		debtor   bool
		override bool
		now      time.Time
		state    State
		daysLeft int
	}{
		{name: "active", now: date(2024, 1, 20), state: StateActive, daysLeft: 21},
		{name: "expiring soon upper bound", now: exp.AddDate(0, 0, -5), state: StateExpiringSoon, daysLeft: 5},
		{name: "expiring soon partial day", now: exp.Add(-(2*24 + 1) * time.Hour), state: StateExpiringSoon, daysLeft: 3},
		{name: "critical", now: exp.AddDate(0, 0, -2), state: StateCritical, daysLeft: 2},
		{name: "critical on expiry day", now: exp, state: StateCritical, daysLeft: 0},
		{name: "expired", now: exp.Add(time.Hour), state: StateExpired, daysLeft: 0},
		{name: "expired long ago", now: date(2024, 3, 1), state: StateExpired, daysLeft: -20},
		{name: "debtor blocks", debtor: true, now: date(2024, 1, 20), state: StateBlocked, daysLeft: 21},
		{name: "override wins over debtor", debtor: true, override: true, now: date(2024, 1, 20), state: StateActive, daysLeft: 21},
		{name: "override wins over expiry", override: true, now: date(2024, 6, 1), state: StateActive, daysLeft: -112},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(purchase, 1, tt.debtor, tt.override, tt.now)
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.daysLeft, st.DaysLeft)
			assert.Equal(t, exp, st.Expiry)
		})
	}
}

func TestEvaluate_Jan31PinnedToMonthEnd(t *testing.T) {
	st := Evaluate(date(2024, 1, 31), 1, false, false, date(2024, 2, 1))
	assert.Equal(t, date(2024, 2, 29), st.Expiry)
	assert.Equal(t, 28, st.DaysLeft)
}

func TestStatus_Active(t *testing.T) {
	assert.True(t, Status{State: StateActive}.Active())
	assert.True(t, Status{State: StateCritical}.Active())
	assert.True(t, Status{State: StateExpiringSoon}.Active())
	assert.False(t, Status{State: StateExpired}.Active())
	assert.False(t, Status{State: StateBlocked}.Active())
}

func TestDate_Monotonic(t *testing.T) {
	prev := Date(date(2023, 1, 1), 3)
	for d := date(2023, 1, 2); d.Before(date(2025, 1, 1)); d = d.AddDate(0, 0, 1) {
		cur := Date(d, 3)
		require.False(t, cur.Before(prev), "expiry went backwards at %s", d)
		if d.Day() <= 28 {
			require.True(t, cur.After(prev), "expiry did not advance at %s", d)
		}
		prev = cur
	}
}

func TestCredentialAlert(t *testing.T) {
	now := date(2024, 3, 15)

	tests := []struct {
		name      string
		service   string
		published time.Time
		wantAlert bool
	}{
		{name: "viki 14 days", service: "Viki Pass", published: now.AddDate(0, 0, -14), wantAlert: true},
		{name: "viki 13 days", service: "Viki Pass", published: now.AddDate(0, 0, -13), wantAlert: true},
		{name: "viki 12 days 23 hours", service: "Viki Pass", published: now.Add(-(13*24 - 1) * time.Hour), wantAlert: false},
		{name: "viki 10 days", service: "Viki Pass", published: now.AddDate(0, 0, -10), wantAlert: false},
		{name: "kocowa 28 days", service: "KOCOWA+", published: now.AddDate(0, 0, -28), wantAlert: true},
		{name: "kocowa 27 days", service: "KOCOWA+", published: now.AddDate(0, 0, -27), wantAlert: false},
		{name: "iqiyi never", service: "IQIYI", published: now.AddDate(0, 0, -300), wantAlert: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := CredentialAlert(tt.service, tt.published, now)
			assert.Equal(t, tt.wantAlert, ok)
			if tt.wantAlert {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestCredentialAlert_Messages(t *testing.T) {
	now := date(2024, 3, 15)
	msg, _ := CredentialAlert("viki", now.AddDate(0, 0, -14), now)
	assert.Contains(t, msg, "14 dias")
	msg, _ = CredentialAlert("kocowa", now.AddDate(0, 0, -30), now)
	assert.Contains(t, msg, "30 dias")
}

func TestRotationCycle(t *testing.T) {
	d, ok := RotationCycle("Viki Pass")
	assert.True(t, ok)
	assert.Equal(t, 13, d)
	_, ok = RotationCycle("WeTV")
	assert.False(t, ok)
}
