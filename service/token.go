package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
)

// ErrInvalidToken covers every token rejection: bad signature, malformed
// payload, expiry and revocation.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. The signing key is
// fixed at construction.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	denylist Denylist
}

type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithDenylist enables revocation by token id.
func WithDenylist(d Denylist) TokenOption {
	return func(s *TokenService) { s.denylist = d }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for userID that expires ttl from now.
func (s *TokenService) Issue(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// Verify returns the user id bound to token.
func (s *TokenService) Verify(ctx context.Context, token string) (primitive.ObjectID, error) {
	claims, err := s.parse(token)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.Revoked(ctx, claims.ID)
		if err != nil {
			return primitive.NilObjectID, apperr.Internal(err)
		}
		if revoked {
			return primitive.NilObjectID, ErrInvalidToken
		}
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// Revocable reports whether Revoke has any effect.
func (s *TokenService) Revocable() bool {
	return s.denylist != nil
}

// Revoke denylists a valid token until its natural expiry. Without a
// denylist it is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if s.denylist == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *TokenService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
