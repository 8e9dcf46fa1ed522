package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string, log *zap.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("db", dbName))
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Videos() *mongo.Collection {
	return db.Database.Collection("videos")
}

// EnsureIndexes creates the unique user indexes that make registration
// race-free, plus the indexes backing catalog listing and sorting.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
	}
	if _, err := db.Users().Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	videoIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "views", Value: -1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isFeatured", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Videos().Indexes().CreateMany(ctx, videoIdx); err != nil {
		return fmt.Errorf("video indexes: %w", err)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
