package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

// UserRepository is the document-store contract for user records. Lookups
// return (nil, nil) when no document matches. Uniqueness violations on
// username or email surface as apperr Conflict errors.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// UserByLogin matches the identifier against email or username.
	UserByLogin(ctx context.Context, identifier string) (*models.User, error)
	UserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, changes models.UserChanges) (*models.User, error)

	// AddToWatchlist atomically appends videoID unless already present and
	// returns the updated user, or nil when the user is missing or the id was
	// already in the set.
	AddToWatchlist(ctx context.Context, userID, videoID primitive.ObjectID) (*models.User, error)
	// RemoveFromWatchlist atomically removes videoID and returns the updated
	// user, or nil when the user is missing.
	RemoveFromWatchlist(ctx context.Context, userID, videoID primitive.ObjectID) (*models.User, error)
}

// RoleRepository is the administrative capability on user records. It is
// kept apart from UserRepository so the self-service path cannot reach it.
type RoleRepository interface {
	SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error
}

// VideoRepository is the document-store contract for catalog items.
// Single-document mutations return the updated document, or nil when no
// document matched.
type VideoRepository interface {
	InsertVideo(ctx context.Context, video *models.Video) error
	FindVideos(ctx context.Context, q models.VideoQuery) ([]models.Video, error)
	CountVideos(ctx context.Context, f models.VideoFilter) (int64, error)
	VideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	VideosByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error)
	UpdateVideo(ctx context.Context, id primitive.ObjectID, update models.VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, id primitive.ObjectID) (bool, error)
	// ToggleVideoFlag flips the flag in a single store operation.
	ToggleVideoFlag(ctx context.Context, id primitive.ObjectID, flag models.VideoFlag) (*models.Video, error)
	// IncrementViews adds exactly one to views in a single store operation.
	// With publishedOnly set, unpublished items do not match.
	IncrementViews(ctx context.Context, id primitive.ObjectID, publishedOnly bool) (*models.Video, error)
}

// storeErr keeps classified store errors and hides everything else behind
// an internal error.
func storeErr(err error) error {
	return apperr.As(err)
}

// parseID parses a hex object id; malformed ids cannot match anything.
func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(field, "field '"+field+"' is not a valid id")
	}
	return id, nil
}
