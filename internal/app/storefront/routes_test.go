package storefront

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/checkout"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/sysconfig"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/models"
	checkoutsvc "github.com/magabrotheeeer/storefront/internal/services/checkout"
)

type tokenStub map[string]*jwt.CustomClaims

func (s tokenStub) ParseToken(token string) (*jwt.CustomClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return claims, nil
}

type readyStub struct{}

func (readyStub) CheckDatabaseReady(context.Context) error { return nil }

type sysconfigStub struct{}

func (sysconfigStub) Get(context.Context) (models.SystemConfig, error) {
	return models.SystemConfig{}, nil
}

func (sysconfigStub) Save(_ context.Context, cfg models.SystemConfig) (models.SystemConfig, error) {
	return cfg, nil
}

type quoteStub struct{}

func (quoteStub) Quote(_ context.Context, _, kind, _ string) (checkoutsvc.Quote, error) {
	return checkoutsvc.Quote{Type: kind}, nil
}

func newRouter() http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := tokenStub{
		"client-token": {Login: "5511988887777", Role: jwt.RoleClient},
		"admin-token":  {Login: "root", Role: jwt.RoleAdmin},
	}
	r := chi.NewRouter()
	RegisterRoutes(r, log, config.HTTPServer{RateLimit: 1000, RateBurst: 1000},
		[]string{"https://loja.example"}, tokens, Handlers{
			Checkout:  checkout.New(log, quoteStub{}),
			SysConfig: sysconfig.New(log, sysconfigStub{}),
			Health:    health.New(log, readyStub{}),
		})
	return r
}

func TestRegisterRoutes_Access(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/api/v1/health", wantStatus: http.StatusOK},
		{name: "system config is public", method: http.MethodGet, path: "/api/v1/system/config", wantStatus: http.StatusOK},
		{name: "client route without token", method: http.MethodGet, path: "/api/v1/me", wantStatus: http.StatusUnauthorized},
		{name: "client route with bad token", method: http.MethodGet, path: "/api/v1/me", token: "forged", wantStatus: http.StatusUnauthorized},
		{name: "client quote", method: http.MethodGet, path: "/api/v1/checkout/quote?type=support", token: "client-token", wantStatus: http.StatusOK},
		{name: "admin token on client route", method: http.MethodGet, path: "/api/v1/checkout/quote?type=support", token: "admin-token", wantStatus: http.StatusForbidden},
		{name: "client token on admin route", method: http.MethodGet, path: "/api/v1/admin/clients", token: "client-token", wantStatus: http.StatusForbidden},
		{name: "admin route without token", method: http.MethodPut, path: "/api/v1/admin/system/config", wantStatus: http.StatusUnauthorized},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nowhere", wantStatus: http.StatusNotFound},
	}

	router := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRegisterRoutes_CORS(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "https://loja.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://loja.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
