package sysconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context) (models.SystemConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SystemConfig), args.Error(1)
}

func (m *MockService) Save(ctx context.Context, cfg models.SystemConfig) (models.SystemConfig, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(models.SystemConfig), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		cfg        models.SystemConfig
		err        error
		wantStatus int
	}{
		{name: "default config", cfg: models.DefaultSystemConfig(), wantStatus: http.StatusOK},
		{name: "storage failure", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Get", mock.Anything).Return(tt.cfg, tt.err).Once()
			h := New(newNoopLogger(), svc)

			rr := httptest.NewRecorder()
			h.Get(rr, httptest.NewRequest(http.MethodGet, "/system/config", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.err == nil {
				var env struct {
					Data models.SystemConfig `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
				assert.Equal(t, tt.cfg, env.Data)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Save(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "banner saved",
			body: `{"bannerText":"Promo","bannerType":"warning","bannerActive":true}`,
			setup: func(m *MockService) {
				in := models.SystemConfig{BannerText: "Promo", BannerType: models.BannerWarning, BannerActive: true}
				out := in
				out.ServiceStatus = models.DefaultSystemConfig().ServiceStatus
				m.On("Save", mock.Anything, in).Return(out, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"bannerType":"warning"`,
		},
		{
			name:       "unknown banner type",
			body:       `{"bannerText":"Promo","bannerType":"loud"}`,
			setup:      func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "field BannerType must be one of [info warning error success]",
		},
		{
			name:       "broken body",
			body:       `{"bannerText":`,
			setup:      func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)
			h := New(newNoopLogger(), svc)

			rr := httptest.NewRecorder()
			h.Save(rr, httptest.NewRequest(http.MethodPut, "/admin/system/config", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
