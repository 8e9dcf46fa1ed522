package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// WriteError renders err in the error envelope. Internal causes are logged
// and replaced by a generic message.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		log.Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(e.Kind))
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorBody{
		Kind:    e.Kind.String(),
		Message: e.Reason,
		Field:   e.Field,
	}})
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("body", "invalid JSON body: "+err.Error())
	}
	return nil
}
