package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/metrics"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	Email    string
	IsAdmin  bool
}

// AccessGuard turns an optional bearer token into an Identity and enforces
// per-operation role policy.
type AccessGuard struct {
	tokens *TokenService
	users  UserRepository
	log    *zap.Logger
}

func NewAccessGuard(tokens *TokenService, users UserRepository, log *zap.Logger) *AccessGuard {
	return &AccessGuard{tokens: tokens, users: users, log: log}
}

// Resolve returns (nil, nil) for an anonymous caller. A token that fails
// verification, or whose user no longer exists, is Unauthorized.
func (g *AccessGuard) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		metrics.AuthResolutionsTotal.WithLabelValues("anonymous").Inc()
		return nil, nil
	}
	userID, err := g.tokens.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		metrics.AuthResolutionsTotal.WithLabelValues("invalid_token").Inc()
		g.log.Debug("rejected bearer token", zap.Error(err))
		return nil, apperr.UnauthorizedCause("invalid or expired token", err)
	}
	user, err := g.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		metrics.AuthResolutionsTotal.WithLabelValues("missing_user").Inc()
		g.log.Debug("token subject no longer exists", zap.String("userId", userID.Hex()))
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	metrics.AuthResolutionsTotal.WithLabelValues("resolved").Inc()
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}, nil
}

func RequireAuth(id *Identity) error {
	if id == nil {
		return apperr.Unauthorized("authentication required")
	}
	return nil
}

func RequireAdmin(id *Identity) error {
	if err := RequireAuth(id); err != nil {
		return err
	}
	if !id.IsAdmin {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

func (id *Identity) admin() bool {
	return id != nil && id.IsAdmin
}
