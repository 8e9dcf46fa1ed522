package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
)

func TestWatchlistDuplicateAdd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")
	x := primitive.NewObjectID().Hex()

	list, err := h.watchlist.Add(ctx, u.ID, x)
	require.NoError(t, err)
	assert.Equal(t, []string{x}, hexIDs(list))

	_, err = h.watchlist.Add(ctx, u.ID, x)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := h.store.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{x}, hexIDs(got.Watchlist))
}

func TestWatchlistRemoveAbsent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")
	x := primitive.NewObjectID().Hex()
	y := primitive.NewObjectID().Hex()

	_, err := h.watchlist.Add(ctx, u.ID, x)
	require.NoError(t, err)

	list, err := h.watchlist.Remove(ctx, u.ID, y)
	require.NoError(t, err)
	assert.Equal(t, []string{x}, hexIDs(list))

	list, err = h.watchlist.Remove(ctx, u.ID, x)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWatchlistErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")

	_, err := h.watchlist.Add(ctx, u.ID, "nope")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = h.watchlist.Remove(ctx, u.ID, "nope")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	ghost := primitive.NewObjectID()
	_, err = h.watchlist.Add(ctx, ghost, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = h.watchlist.Remove(ctx, ghost, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWatchlistConcurrentAddsKeepEveryItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")

	const n = 25
	ids := make([]string, n)
	for i := range ids {
		ids[i] = primitive.NewObjectID().Hex()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := h.watchlist.Add(ctx, u.ID, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	got, err := h.store.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, hexIDs(got.Watchlist))
}
