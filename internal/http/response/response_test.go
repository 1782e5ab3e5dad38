package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	Fail(rr, req, http.StatusConflict, "password already set")

	assert.Equal(t, http.StatusConflict, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "password already set"}, body)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Phone  string `validate:"required"`
		Suffix string `validate:"len=4,numeric"`
		Months int    `validate:"gte=0"`
		Type   string `validate:"oneof=info warning"`
	}

	err := validator.New().Struct(TestStruct{Suffix: "12a", Months: -1, Type: "loud"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Phone is a required field")
	assert.Contains(t, resp.Error, "field Suffix must be 4 characters long")
	assert.Contains(t, resp.Error, "field Months must be at least 0")
	assert.Contains(t, resp.Error, "field Type must be one of [info warning]")
}
