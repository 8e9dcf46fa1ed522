package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/service"
	"github.com/reelbase/catalog/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate resolves the caller on every request. No Authorization header
// means an anonymous caller; a malformed or rejected token ends the request
// with 401.
func Authenticate(guard *service.AccessGuard, log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				utils.WriteError(w, log, err)
				return
			}
			id, err := guard.Resolve(r.Context(), token)
			if err != nil {
				utils.WriteError(w, log, err)
				return
			}
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth(log *zap.Logger) func(next http.Handler) http.Handler {
	return enforce(log, service.RequireAuth)
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin(log *zap.Logger) func(next http.Handler) http.Handler {
	return enforce(log, service.RequireAdmin)
}

func enforce(log *zap.Logger, policy func(*service.Identity) error) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy(IdentityFromContext(r.Context())); err != nil {
				utils.WriteError(w, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns nil for anonymous callers.
func IdentityFromContext(ctx context.Context) *service.Identity {
	id, _ := ctx.Value(identityKey).(*service.Identity)
	return id
}

// BearerToken extracts the token from the Authorization header. An absent
// header yields an empty token.
func BearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", nil
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}
