package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/assignment"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

func TestClock(t *testing.T) {
	tests := []struct {
		name    string
		at      string
		want    time.Time
		wantErr bool
	}{
		{name: "fixed date", at: "2024-06-15", want: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)},
		{name: "bad format", at: "15/06/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := clock(tt.at)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, now())
		})
	}

	t.Run("empty uses wall clock", func(t *testing.T) {
		now, err := clock("")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), now(), time.Minute)
	})
}

func TestPrintPlan(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printPlan(&buf, "Kocowa", nil))
		assert.Equal(t, "no visible credentials for \"Kocowa\"\n", buf.String())
	})

	t.Run("slots", func(t *testing.T) {
		slots := []assignment.Slot{
			{
				Credential: models.Credential{ID: "v1", Email: "viki1@x.com"},
				Alert:      "renew",
				Clients:    []subscription.Client{{Phone: "5511900000001"}, {Phone: "5511900000002"}},
			},
			{Credential: models.Credential{ID: "v2", Email: "viki2@x.com"}},
		}
		var buf bytes.Buffer
		require.NoError(t, printPlan(&buf, "Viki Pass", slots))

		out := buf.String()
		assert.Contains(t, out, "CREDENTIAL")
		assert.Contains(t, out, "5511900000001,5511900000002")
		assert.Contains(t, out, "viki2@x.com")
		assert.Contains(t, out, "renew")
	})
}

func TestPrintAlerts(t *testing.T) {
	report := alertsReport{
		Credentials: []models.CredentialAlertMessage{
			{Service: "Viki Pass", Email: "viki@x.com", AgeDays: 14, AssignedTo: 3, Alert: "troca"},
		},
		Expiring: []models.ExpiringClientMessage{
			{PhoneNumber: "5511900000001", ClientName: "Ana", Service: "IQIYI",
				Expiry: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), DaysLeft: 2},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, printAlerts(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "credential alerts: 1")
	assert.Contains(t, out, "14 days")
	assert.Contains(t, out, "expiring clients: 1")
	assert.Contains(t, out, "2024-07-01")
}
