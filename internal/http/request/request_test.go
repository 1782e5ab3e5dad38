package request

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Phone string `json:"phone" validate:"required"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantError  string
	}{
		{name: "valid", body: `{"phone":"11988887777"}`, wantOK: true, wantStatus: http.StatusOK},
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest, wantError: "empty request"},
		{name: "broken json", body: `{"phone":`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
		{name: "missing field", body: `{}`, wantStatus: http.StatusUnprocessableEntity, wantError: "field Phone is a required field"},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			var dst payload
			ok := Decode(rr, req, log, v, &dst)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantOK {
				assert.Equal(t, "11988887777", dst.Phone)
				return
			}
			assert.Contains(t, rr.Body.String(), tt.wantError)
		})
	}
}
