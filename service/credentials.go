package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/metrics"
	"github.com/reelbase/catalog/models"
)

var errBadCredentials = apperr.Unauthorized("invalid email/username or password")

// CredentialStore owns user records and password verification. Plaintext
// passwords only ever reach bcrypt.
type CredentialStore struct {
	users     UserRepository
	cost      int
	dummyHash []byte
	now       func() time.Time
	log       *zap.Logger
}

func NewCredentialStore(users UserRepository, cost int, log *zap.Logger) *CredentialStore {
	// Unknown identifiers are compared against this so lookups of missing
	// users take as long as real ones.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("reelbase-dummy-password"), cost)
	return &CredentialStore{
		users:     users,
		cost:      cost,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

func (c *CredentialStore) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	existing, err := c.users.UserByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, conflictWith(existing, in.Email)
	}

	hash, err := c.hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := c.now()
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique indexes decide concurrent registrations; the loser gets Conflict here.
	if err := c.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		}
		return nil, storeErr(err)
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	c.log.Info("user registered", zap.String("userId", user.ID.Hex()), zap.String("username", user.Username))
	return user, nil
}

// Verify accepts an email address or a username as identifier.
func (c *CredentialStore) Verify(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, apperr.Invalid("identifier", "email/username and password are required")
	}
	user, err := c.users.UserByLogin(ctx, identifier)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		c.log.Debug("password mismatch", zap.String("userId", user.ID.Hex()))
		return nil, errBadCredentials
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// UpdatePassword replaces the stored hash and nothing else.
func (c *CredentialStore) UpdatePassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	_, err := c.UpdateProfile(ctx, userID, models.ProfileUpdate{Password: &password})
	return err
}

// UpdateProfile applies the self-service fields. The admin flag is not part of
// this surface.
func (c *CredentialStore) UpdateProfile(ctx context.Context, userID primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	changes := models.UserChanges{Username: p.Username, Email: p.Email}
	if p.Password != nil {
		hash, err := c.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	var (
		user *models.User
		err  error
	)
	if changes.Empty() {
		user, err = c.users.UserByID(ctx, userID)
	} else {
		user, err = c.users.UpdateUser(ctx, userID, changes)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	if changes.PasswordHash != nil {
		c.log.Info("password changed", zap.String("userId", userID.Hex()))
	}
	return user, nil
}

func (c *CredentialStore) User(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := c.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// EnsureAdmin is the administrative path for the role flag: it creates the
// account when missing and grants isAdmin.
func EnsureAdmin(ctx context.Context, creds *CredentialStore, roles RoleRepository, in models.RegisterInput) (*models.User, error) {
	in.Normalize()
	user, err := creds.users.UserByLogin(ctx, in.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		if user, err = creds.Register(ctx, in); err != nil {
			return nil, err
		}
	}
	if !user.IsAdmin {
		if err := roles.SetAdmin(ctx, user.ID, true); err != nil {
			return nil, storeErr(err)
		}
		user.IsAdmin = true
		creds.log.Info("granted admin role", zap.String("userId", user.ID.Hex()), zap.String("email", user.Email))
	}
	return user, nil
}

func (c *CredentialStore) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Invalid("password", "password is too long")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return string(hash), nil
}

func conflictWith(existing *models.User, email string) error {
	if existing.Email == email {
		return apperr.Conflict("email already registered")
	}
	return apperr.Conflict("username already taken")
}
