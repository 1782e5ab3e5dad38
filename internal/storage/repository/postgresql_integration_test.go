package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/storefront/internal/migrations"
	"github.com/magabrotheeeer/storefront/internal/models"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, "file://"+filepath.Join(root, "migrations")))
	require.NoError(t, s.CheckDatabaseReady(ctx))
	return s
}

func TestIntegration_ClientLifecycle(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	purchase := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	id, err := s.CreateClient(ctx, models.ClientRecord{
		PhoneNumber:    "5511988887777",
		ClientName:     "Ana",
		Subscriptions:  models.ServiceList{"Viki Pass", "IQIYI"},
		PurchaseDate:   purchase,
		DurationMonths: 1,
	})
	require.NoError(t, err)

	// Строка старого формата, склеенная через "+".
	_, err = s.DB.ExecContext(ctx, `INSERT INTO clients (id, phone_number, subscriptions)
		VALUES (gen_random_uuid(), '5511988887777', 'WeTV+"Kocowa+"')`)
	require.NoError(t, err)

	got, err := s.ListClientsByPhones(ctx, []string{"11988887777", "5511988887777"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ServiceList{"Viki Pass", "IQIYI"}, got[0].Subscriptions)
	assert.True(t, got[0].PurchaseDate.Equal(purchase))
	assert.Equal(t, models.ServiceList{"WeTV", "Kocowa"}, got[1].Subscriptions)

	n, err := s.SetClientPassword(ctx, []string{"5511988887777"}, "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.SoftDeleteClient(ctx, id))
	rec, err := s.GetClient(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Deleted)

	bySuffix, err := s.FindClientsBySuffix(ctx, "7777")
	require.NoError(t, err)
	assert.Len(t, bySuffix, 2)
}

func TestIntegration_CredentialOrderIsStable(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var creds []models.Credential
	for _, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		creds = append(creds, models.Credential{Service: "IQIYI", Email: email, Password: "p", PublishedAt: day, IsVisible: true})
	}
	_, err := s.CreateCredentials(ctx, creds)
	require.NoError(t, err)
	require.NoError(t, s.SaveSystemConfig(ctx, `{"bannerActive":true}`, day))

	for i := 0; i < 3; i++ {
		all, err := s.ListAllCredentials(ctx)
		require.NoError(t, err)
		var emails []string
		for _, c := range all {
			if !c.IsSystemConfig() {
				emails = append(emails, c.Email)
			}
		}
		assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, emails)
	}

	raw, err := s.GetSystemConfig(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bannerActive":true}`, raw)
}

func TestIntegration_Doramas(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	phones := []string{"5511988887777", "11988887777"}

	id, err := s.AddDorama(ctx, "5511988887777", models.Dorama{Title: "Goblin", Status: models.DoramaWatching}.WithDefaults())
	require.NoError(t, err)

	err = s.UpdateDorama(ctx, phones, models.Dorama{ID: id, Status: models.DoramaCompleted, EpisodesWatched: 16, TotalEpisodes: 16, Season: 1})
	require.NoError(t, err)

	items, err := s.ListDoramas(ctx, phones)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.DoramaCompleted, items[0].Status)
	assert.Equal(t, 16, items[0].EpisodesWatched)

	require.NoError(t, s.RemoveDorama(ctx, phones, id))
	err = s.RemoveDorama(ctx, phones, id)
	assert.Error(t, err)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_doramas`).Scan(&count))
	assert.Zero(t, count)
}
