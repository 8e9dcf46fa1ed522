package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.KindInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(apperr.KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperr.KindForbidden))
	assert.Equal(t, http.StatusNotFound, StatusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(apperr.KindConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperr.KindInternal))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"views": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"views":3}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), apperr.Invalid("email", "email is invalid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":{"kind":"invalid_input","message":"email is invalid","field":"email"}}`,
		rec.Body.String())

	// Unclassified causes never reach the client.
	rec = httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), errors.New("connection refused 10.0.0.7:27017"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "internal", body.Error.Kind)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	var p payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Alien"}`))
	require.NoError(t, DecodeJSON(req, &p))
	assert.Equal(t, "Alien", p.Title)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Alien","isAdmin":true}`))
	err := DecodeJSON(req, &p)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(req, &p))
}
