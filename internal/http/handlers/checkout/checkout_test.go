package checkout

import (
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

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	checkoutsvc "github.com/magabrotheeeer/storefront/internal/services/checkout"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Quote(ctx context.Context, rawPhone, kind, target string) (checkoutsvc.Quote, error) {
	args := m.Called(ctx, rawPhone, kind, target)
	return args.Get(0).(checkoutsvc.Quote), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandler_ServeHTTP(t *testing.T) {
	quote := checkoutsvc.Quote{
		Type:      checkoutsvc.TypeRenewal,
		Services:  []string{"IQIYI"},
		Priced:    true,
		Price:     14.90,
		PriceText: "14,90",
		PixKey:    "pix@eudorama.com",
		Message:   "Olá!",
		Link:      "https://wa.me/558894875029?text=Ol%C3%A1%21",
	}

	tests := []struct {
		name       string
		query      string
		kind       string
		target     string
		quote      checkoutsvc.Quote
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "renewal quote", query: "?type=renewal&service=IQIYI", kind: "renewal", target: "IQIYI", quote: quote, wantStatus: http.StatusOK},
		{name: "unknown type", query: "?type=donation", kind: "donation", err: checkoutsvc.ErrUnknownType, wantStatus: http.StatusBadRequest, wantError: "unknown checkout type"},
		{name: "service missing", query: "?type=new_sub", kind: "new_sub", err: checkoutsvc.ErrServiceRequired, wantStatus: http.StatusBadRequest, wantError: "service is required"},
		{name: "client gone", query: "?type=gift", kind: "gift", err: checkoutsvc.ErrClientNotFound, wantStatus: http.StatusNotFound, wantError: "client not found"},
		{name: "storage failure", query: "?type=gift", kind: "gift", err: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantError: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Quote", mock.Anything, "5511988887777", tt.kind, tt.target).Return(tt.quote, tt.err).Once()
			h := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodGet, "/checkout/quote"+tt.query, nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Login, "5511988887777"))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var env struct {
				Error string            `json:"error"`
				Data  checkoutsvc.Quote `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			assert.Equal(t, tt.wantError, env.Error)
			if tt.err == nil {
				assert.Equal(t, tt.quote, env.Data)
			}
			svc.AssertExpectations(t)
		})
	}
}
