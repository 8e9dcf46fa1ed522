package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

const (
	emailIndex    = "email_unique"
	usernameIndex = "username_unique"
)

// duplicateErr maps a unique index violation to a Conflict naming the field.
func duplicateErr(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), emailIndex) {
		return apperr.Conflict("email already registered")
	}
	return apperr.Conflict("username already taken")
}

func (db *DB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.Watchlist == nil {
		user.Watchlist = []primitive.ObjectID{}
	}
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return duplicateErr(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return db.findUser(ctx, bson.M{"_id": id})
}

// UserByLogin looks up by email when identifier contains '@' and by username
// otherwise.
func (db *DB) UserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if models.IsEmailIdentifier(identifier) {
		return db.findUser(ctx, bson.M{"email": models.NormalizeEmail(identifier)})
	}
	return db.findUser(ctx, bson.M{"username": identifier})
}

func (db *DB) UserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
}

func (db *DB) UpdateUser(ctx context.Context, id primitive.ObjectID, changes models.UserChanges) (*models.User, error) {
	updates := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Username != nil {
		updates["username"] = *changes.Username
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}
	if changes.PasswordHash != nil {
		updates["password"] = *changes.PasswordHash
	}
	u, err := db.findOneAndUpdateUser(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return nil, duplicateErr(err)
	}
	return u, nil
}

func (db *DB) SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isAdmin":   isAdmin,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// AddToWatchlist only matches when videoID is absent, so concurrent adds of
// the same id cannot both succeed.
func (db *DB) AddToWatchlist(ctx context.Context, userID, videoID primitive.ObjectID) (*models.User, error) {
	return db.findOneAndUpdateUser(ctx,
		bson.M{"_id": userID, "watchlist": bson.M{"$ne": videoID}},
		bson.M{
			"$push": bson.M{"watchlist": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
}

func (db *DB) RemoveFromWatchlist(ctx context.Context, userID, videoID primitive.ObjectID) (*models.User, error) {
	return db.findOneAndUpdateUser(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"watchlist": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
}

func (db *DB) findOneAndUpdateUser(ctx context.Context, filter, update bson.M) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.Users().FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

