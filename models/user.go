package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"` // bcrypt hash
	IsAdmin      bool                 `bson:"isAdmin" json:"isAdmin"`
	Watchlist    []primitive.ObjectID `bson:"watchlist" json:"watchlist"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// InWatchlist reports whether videoID is already in the user's watchlist.
func (u *User) InWatchlist(videoID primitive.ObjectID) bool {
	for _, id := range u.Watchlist {
		if id == videoID {
			return true
		}
	}
	return false
}

// RegisterInput is the self-service registration payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30,excludes=@"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
}

func (in *RegisterInput) Validate() error {
	in.Normalize()
	if err := validateStruct(in); err != nil {
		return err
	}
	return passwordBytes(in.Password)
}

// ProfileUpdate holds the self-service fields a user may change on their own
// record. Role is deliberately absent.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,excludes=@"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

func (p *ProfileUpdate) Validate() error {
	if p.Username != nil {
		u := strings.TrimSpace(*p.Username)
		p.Username = &u
	}
	if p.Email != nil {
		e := NormalizeEmail(*p.Email)
		p.Email = &e
	}
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Password != nil {
		return passwordBytes(*p.Password)
	}
	return nil
}

// UserChanges is the storage-level set of user fields a profile update may write.
type UserChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil
}

// Profile is a user as returned to its owner, with catalog references resolved.
type Profile struct {
	ID           primitive.ObjectID `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	IsAdmin      bool               `json:"isAdmin"`
	Watchlist    []VideoSummary     `json:"watchlist"`
	WatchHistory []VideoSummary     `json:"watchHistory"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// IsEmailIdentifier reports whether a login identifier names an email rather
// than a username. Usernames cannot contain '@'.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
