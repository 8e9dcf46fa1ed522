package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

func TestAccountRegisterLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	res, err := h.accounts.Register(ctx, models.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	uid, err := h.tokens.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)

	res, err = h.accounts.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, uid, res.User.ID)

	_, err = h.accounts.Login(ctx, "alice", "nope-nope")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAccountUpdateProfileRegeneratesToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")

	email := "alice@new.example.com"
	res, err := h.accounts.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, res.User.Email)

	uid, err := h.tokens.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestAccountProfileResolvesSummaries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u := h.register(t, "alice")

	a := h.publishedVideo(t, "a")
	b := h.publishedVideo(t, "b")
	draft, err := h.catalog.Create(ctx, videoInput("draft"))
	require.NoError(t, err)
	dangling := primitive.NewObjectID()

	for _, id := range []primitive.ObjectID{b.ID, dangling, draft.ID, a.ID} {
		_, err := h.watchlist.Add(ctx, u.ID, id.Hex())
		require.NoError(t, err)
	}

	p, err := h.accounts.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	require.Len(t, p.Watchlist, 2)
	assert.Equal(t, b.ID, p.Watchlist[0].ID)
	assert.Equal(t, a.ID, p.Watchlist[1].ID)
	assert.Equal(t, a.ThumbnailURL, p.Watchlist[1].ThumbnailURL)
	assert.NotNil(t, p.WatchHistory)
	assert.Empty(t, p.WatchHistory)

	_, err = h.accounts.Profile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAccountLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	deny := newMapDenylist()
	h.tokens = NewTokenService(testSecret, 720*time.Hour, WithDenylist(deny))
	h.accounts = NewAccountService(h.creds, h.tokens, h.store)
	u := h.register(t, "alice")

	tok, err := h.tokens.Issue(u.ID)
	require.NoError(t, err)

	revoked, err := h.accounts.Logout(ctx, tok)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = h.tokens.Verify(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
