package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/reelbase/catalog/models"
	"github.com/reelbase/catalog/store/memory"
)

const testSecret = "test-secret"

type harness struct {
	store     *memory.Store
	creds     *CredentialStore
	tokens    *TokenService
	guard     *AccessGuard
	catalog   *CatalogQueryEngine
	watchlist *WatchlistManager
	accounts  *AccountService
	media     *fakeMedia
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop()
	st := memory.New()
	tokens := NewTokenService(testSecret, 720*time.Hour)
	creds := NewCredentialStore(st, bcrypt.MinCost, log)
	media := newFakeMedia()
	return &harness{
		store:     st,
		creds:     creds,
		tokens:    tokens,
		guard:     NewAccessGuard(tokens, st, log),
		catalog:   NewCatalogQueryEngine(st, NewViewCounter(st), media, log),
		watchlist: NewWatchlistManager(st, log),
		accounts:  NewAccountService(creds, tokens, st),
		media:     media,
	}
}

func (h *harness) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := h.creds.Register(context.Background(), models.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	return u
}

func (h *harness) admin(t *testing.T) *Identity {
	t.Helper()
	u, err := EnsureAdmin(context.Background(), h.creds, h.store, models.RegisterInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	return &Identity{UserID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: true}
}

func videoInput(title string) models.VideoInput {
	return models.VideoInput{
		Title:        title,
		Description:  "About " + title,
		Director:     "Someone",
		ThumbnailURL: "https://cdn.example.com/" + title + ".jpg",
		ContentURL:   "https://cdn.example.com/" + title + ".mp4",
		Duration:     3600,
		Genres:       []string{"Drama"},
		ReleaseYear:  2020,
		Rating:       3.5,
	}
}

func (h *harness) publishedVideo(t *testing.T, title string) *models.Video {
	t.Helper()
	ctx := context.Background()
	v, err := h.catalog.Create(ctx, videoInput(title))
	require.NoError(t, err)
	v, err = h.catalog.TogglePublish(ctx, v.ID.Hex())
	require.NoError(t, err)
	require.True(t, v.IsPublished)
	return v
}

type fakeMedia struct {
	mu      sync.Mutex
	deleted []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{}
}

func (f *fakeMedia) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?signed=1", nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type mapDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMapDenylist() *mapDenylist {
	return &mapDenylist{revoked: make(map[string]time.Duration)}
}

func (d *mapDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = ttl
	return nil
}

func (d *mapDenylist) Revoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
