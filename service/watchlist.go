package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/metrics"
)

// WatchlistManager keeps each user's watchlist as a set. Adding an id that is
// already present is a Conflict; removing an absent id succeeds. Referenced
// videos are not checked for existence.
type WatchlistManager struct {
	users UserRepository
	log   *zap.Logger
}

func NewWatchlistManager(users UserRepository, log *zap.Logger) *WatchlistManager {
	return &WatchlistManager{users: users, log: log}
}

// Add returns the resulting watchlist.
func (m *WatchlistManager) Add(ctx context.Context, userID primitive.ObjectID, videoID string) ([]primitive.ObjectID, error) {
	vid, err := parseID("videoId", videoID)
	if err != nil {
		return nil, err
	}
	user, err := m.users.AddToWatchlist(ctx, userID, vid)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		// Either the user is gone or the id was already there.
		existing, err := m.users.UserByID(ctx, userID)
		if err != nil {
			return nil, storeErr(err)
		}
		if existing == nil {
			return nil, apperr.NotFound("user not found")
		}
		metrics.WatchlistMutationsTotal.WithLabelValues("add", "conflict").Inc()
		return nil, apperr.Conflict("video already in watchlist")
	}
	metrics.WatchlistMutationsTotal.WithLabelValues("add", "success").Inc()
	m.log.Debug("watchlist add", zap.String("userId", userID.Hex()), zap.String("videoId", videoID))
	return user.Watchlist, nil
}

// Remove returns the resulting watchlist, unchanged when videoID was absent.
func (m *WatchlistManager) Remove(ctx context.Context, userID primitive.ObjectID, videoID string) ([]primitive.ObjectID, error) {
	vid, err := parseID("videoId", videoID)
	if err != nil {
		return nil, err
	}
	user, err := m.users.RemoveFromWatchlist(ctx, userID, vid)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	metrics.WatchlistMutationsTotal.WithLabelValues("remove", "success").Inc()
	m.log.Debug("watchlist remove", zap.String("userId", userID.Hex()), zap.String("videoId", videoID))
	return user.Watchlist, nil
}
