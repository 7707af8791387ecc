package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/types"
)

func TestResponseCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid id", db.NewInvalidIDError("nope"), http.StatusBadRequest},
		{"bad request", NewBadRequestError("bad body"), http.StatusBadRequest},
		{"not found", db.NewNotFoundError("abc"), http.StatusNotFound},
		{"wrapped not found", errors.Wrap(db.NewNotFoundError("abc"), "lookup"), http.StatusNotFound},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"storage fault", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResponseCodeFromError(tt.err))
		})
	}
}

func TestErrorHidesStorageFaults(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/foods", nil)

	Error(w, r, errors.New("server selection timeout"), "Failed to fetch foods")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var response types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "Failed to fetch foods", response.Error)
}

func TestErrorReportsClientErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/foods/nope", nil)

	Error(w, r, db.NewInvalidIDError("nope"), "Failed to fetch food")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var response types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "'nope' is not a valid ID", response.Error)
}

func TestDecodeJSON(t *testing.T) {
	var body map[string]interface{}
	r := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"note":"pickup"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "pickup", body["note"])

	r = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"note":`))
	err := DecodeJSON(r, &body)
	var badRequest *BadRequestError
	assert.ErrorAs(t, err, &badRequest)
}

func TestLimitBody(t *testing.T) {
	handler := LimitBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := DecodeJSON(r, &body); err != nil {
			ErrorWithCode(w, r, err, ResponseCodeFromError(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"note":"far too long for the limit"}`))
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
