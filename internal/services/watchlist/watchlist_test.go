package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListDoramas(ctx context.Context, phones []string) ([]models.Dorama, error) {
	args := m.Called(ctx, phones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dorama), args.Error(1)
}

func (m *RepoMock) AddDorama(ctx context.Context, phone string, d models.Dorama) (string, error) {
	args := m.Called(ctx, phone, d)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) UpdateDorama(ctx context.Context, phones []string, d models.Dorama) error {
	return m.Called(ctx, phones, d).Error(0)
}

func (m *RepoMock) RemoveDorama(ctx context.Context, phones []string, id string) error {
	return m.Called(ctx, phones, id).Error(0)
}

const clientPhone = "5511988887777"

var probes = []string{"5511988887777", "11988887777"}

func setup(t *testing.T) (*Service, *RepoMock, *cache.Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	repo := new(RepoMock)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, c, time.Hour, log), repo, c
}

func seed(t *testing.T, c *cache.Cache, items ...models.Dorama) {
	t.Helper()
	require.NoError(t, c.Set(context.Background(), cache.WatchListKey(clientPhone), models.Group(items), time.Hour))
}

func cachedLists(t *testing.T, c *cache.Cache) models.DoramaLists {
	t.Helper()
	var lists models.DoramaLists
	found, err := c.Get(context.Background(), cache.WatchListKey(clientPhone), &lists)
	require.NoError(t, err)
	require.True(t, found)
	return lists
}

func TestService_List_HealsFromCache(t *testing.T) {
	svc, repo, c := setup(t)
	seed(t, c,
		models.Dorama{ID: "d1", Title: "Goblin", Status: models.DoramaWatching, EpisodesWatched: 9, TotalEpisodes: 16, Season: 1},
		models.Dorama{ID: "tmp", Title: "crash landing on you", Status: models.DoramaWatching, EpisodesWatched: 3, Season: 2},
		models.Dorama{ID: "d3", Title: "Vincenzo", Status: models.DoramaCompleted, EpisodesWatched: 1, Season: 1},
	)

	db := []models.Dorama{
		{ID: "d1", Title: "Goblin", Status: models.DoramaWatching, EpisodesWatched: 1, TotalEpisodes: 16, Season: 1},
		{ID: "d2", Title: "Crash Landing on You", Status: models.DoramaWatching, EpisodesWatched: 5, TotalEpisodes: 16, Season: 1},
		{ID: "d3", Title: "Vincenzo", Status: models.DoramaCompleted, EpisodesWatched: 20, TotalEpisodes: 20, Season: 1},
	}
	repo.On("ListDoramas", mock.Anything, probes).Return(db, nil).Once()
	repo.On("UpdateDorama", mock.Anything, probes, mock.MatchedBy(func(d models.Dorama) bool {
		return d.ID == "d1" && d.EpisodesWatched == 9 && d.Season == 1
	})).Return(nil).Once()
	repo.On("UpdateDorama", mock.Anything, probes, mock.MatchedBy(func(d models.Dorama) bool {
		return d.ID == "d2" && d.EpisodesWatched == 5 && d.Season == 2
	})).Return(errors.New("db hiccup")).Once()

	lists, err := svc.List(context.Background(), "+55 (11) 98888-7777")
	require.NoError(t, err)

	require.Len(t, lists.Watching, 2)
	assert.Equal(t, 9, lists.Watching[0].EpisodesWatched)
	assert.Equal(t, 2, lists.Watching[1].Season)
	assert.Equal(t, 5, lists.Watching[1].EpisodesWatched)
	require.Len(t, lists.Completed, 1)
	assert.Equal(t, 20, lists.Completed[0].EpisodesWatched)
	assert.Empty(t, lists.Favorites)

	assert.Equal(t, lists, cachedLists(t, c))
	repo.AssertExpectations(t)
}

func TestService_List_Fallbacks(t *testing.T) {
	cachedItem := models.Dorama{ID: "d1", Title: "Goblin", Status: models.DoramaPlanToWatch, EpisodesWatched: 1, Season: 1}

	tests := []struct {
		name      string
		seedCache bool
		dbItems   []models.Dorama
		dbErr     error
		wantErr   bool
		wantFavs  int
	}{
		{name: "db error with cache", seedCache: true, dbErr: errors.New("down"), wantFavs: 1},
		{name: "db empty with cache", seedCache: true, dbItems: []models.Dorama{}, wantFavs: 1},
		{name: "db error without cache", dbErr: errors.New("down"), wantErr: true},
		{name: "db empty without cache", dbItems: []models.Dorama{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, c := setup(t)
			if tt.seedCache {
				seed(t, c, cachedItem)
			}
			if tt.dbErr != nil {
				repo.On("ListDoramas", mock.Anything, probes).Return(nil, tt.dbErr)
			} else {
				repo.On("ListDoramas", mock.Anything, probes).Return(tt.dbItems, nil)
			}

			lists, err := svc.List(context.Background(), clientPhone)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lists.Favorites, tt.wantFavs)
			assert.NotNil(t, lists.Watching)
			repo.AssertNotCalled(t, "UpdateDorama", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Add(t *testing.T) {
	svc, repo, c := setup(t)
	seed(t, c)

	repo.On("AddDorama", mock.Anything, clientPhone, mock.MatchedBy(func(d models.Dorama) bool {
		return d.Title == "Goblin" && d.Status == models.DoramaCompleted &&
			d.EpisodesWatched == 1 && d.TotalEpisodes == 16 && d.Season == 1 && d.Genre == "Dorama"
	})).Return("new-id", nil).Once()

	d, err := svc.Add(context.Background(), "+55 11 98888-7777", models.ListCompleted, models.Dorama{Title: "  Goblin "})
	require.NoError(t, err)
	assert.Equal(t, "new-id", d.ID)

	lists := cachedLists(t, c)
	require.Len(t, lists.Completed, 1)
	assert.Equal(t, "new-id", lists.Completed[0].ID)

	_, err = svc.Add(context.Background(), clientPhone, "archive", models.Dorama{Title: "x"})
	assert.ErrorIs(t, err, ErrUnknownList)
	_, err = svc.Add(context.Background(), clientPhone, models.ListWatching, models.Dorama{Title: " "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	repo.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name      string
		seedCache bool
		dbErr     error
		wantErr   error
		anyErr    bool
	}{
		{name: "stored"},
		{name: "db failure kept in cache", seedCache: true, dbErr: errors.New("timeout")},
		{name: "db failure without cache", dbErr: errors.New("timeout"), anyErr: true},
		{name: "foreign item", seedCache: true, dbErr: fmt.Errorf("storage.UpdateDorama: %w", storage.ErrNotFound), wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, c := setup(t)
			if tt.seedCache {
				seed(t, c, models.Dorama{ID: "d1", Title: "Goblin", Status: models.DoramaWatching, EpisodesWatched: 2, Season: 1})
			}
			repo.On("UpdateDorama", mock.Anything, probes, mock.Anything).Return(tt.dbErr).Once()

			got, err := svc.Update(context.Background(), clientPhone, models.Dorama{ID: "d1", EpisodesWatched: 7})
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, 7, got.EpisodesWatched)
			}

			if tt.seedCache {
				lists := cachedLists(t, c)
				require.Len(t, lists.Watching, 1)
				assert.Equal(t, 7, lists.Watching[0].EpisodesWatched)
				assert.Equal(t, "Goblin", lists.Watching[0].Title)
			}
		})
	}
}

func TestService_Remove(t *testing.T) {
	svc, repo, c := setup(t)
	seed(t, c,
		models.Dorama{ID: "d1", Title: "Goblin", Status: models.DoramaWatching},
		models.Dorama{ID: "d2", Title: "Vincenzo", Status: models.DoramaWatching},
	)
	repo.On("RemoveDorama", mock.Anything, probes, "d1").Return(nil).Once()
	repo.On("RemoveDorama", mock.Anything, probes, "zz").Return(storage.ErrNotFound).Once()

	require.NoError(t, svc.Remove(context.Background(), clientPhone, "d1"))
	lists := cachedLists(t, c)
	require.Len(t, lists.Watching, 1)
	assert.Equal(t, "d2", lists.Watching[0].ID)

	assert.ErrorIs(t, svc.Remove(context.Background(), clientPhone, "zz"), ErrNotFound)
}
