package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

func TestCreateUserEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com"}))

	err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = s.CreateUser(ctx, &models.User{Username: "bob", Email: "alice@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUserByLogin(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com"}))

	u, err := s.UserByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	u, err = s.UserByLogin(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u)

	u, err = s.UserByLogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserByLoginRoutesByShape(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := &models.User{Username: "owner", Email: "shared@example.com"}
	shadow := &models.User{Username: "shared@example.com", Email: "shadow@example.com"}
	require.NoError(t, s.CreateUser(ctx, owner))
	require.NoError(t, s.CreateUser(ctx, shadow))

	for i := 0; i < 20; i++ {
		u, err := s.UserByLogin(ctx, "shared@example.com")
		require.NoError(t, err)
		require.Equal(t, owner.ID, u.ID)
	}

	u, err := s.UserByLogin(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateUserConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := &models.User{Username: "alice", Email: "alice@example.com"}
	b := &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))

	taken := "alice"
	_, err := s.UpdateUser(ctx, b.ID, models.UserChanges{Username: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Re-submitting one's own values is not a conflict.
	same := "bob@example.com"
	u, err := s.UpdateUser(ctx, b.ID, models.UserChanges{Email: &same})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)

	u, err = s.UpdateUser(ctx, primitive.NewObjectID(), models.UserChanges{Email: &same})
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestWatchlistAddIsSetLike(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	vid := primitive.NewObjectID()

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.AddToWatchlist(ctx, u.ID, vid)
			assert.NoError(t, err)
			if got != nil {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, added)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{vid}, got.Watchlist)

	got, err = s.RemoveFromWatchlist(ctx, u.ID, vid)
	require.NoError(t, err)
	assert.Empty(t, got.Watchlist)

	got, err = s.RemoveFromWatchlist(ctx, u.ID, vid)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func seedVideo(t *testing.T, s *Store, v models.Video) *models.Video {
	t.Helper()
	require.NoError(t, s.InsertVideo(context.Background(), &v))
	return &v
}

func TestFindVideosFilterSortPage(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedVideo(t, s, models.Video{
			Title:       "Space " + string(rune('A'+i)),
			Description: "stars",
			Genres:      []string{"Sci-Fi"},
			Views:       int64(i * 10),
			IsPublished: i%2 == 0,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	seedVideo(t, s, models.Video{Title: "Drama", Description: "SPACE opera", Genres: []string{"Drama"}, IsPublished: true, CreatedAt: base})

	n, err := s.CountVideos(ctx, models.VideoFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	got, err := s.FindVideos(ctx, models.VideoQuery{Filter: models.VideoFilter{Keyword: "space"}})
	require.NoError(t, err)
	assert.Len(t, got, 6)

	got, err = s.FindVideos(ctx, models.VideoQuery{Filter: models.VideoFilter{Genre: "Sci-Fi"}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Space E", got[0].Title)
	assert.Equal(t, "Space D", got[1].Title)

	got, err = s.FindVideos(ctx, models.VideoQuery{Filter: models.VideoFilter{Genre: "Sci-Fi"}, Sort: models.SortMostViewed, Skip: 4})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Space A", got[0].Title)

	got, err = s.FindVideos(ctx, models.VideoQuery{Skip: 100})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIncrementViewsConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := seedVideo(t, s, models.Video{Title: "Hit", IsPublished: true})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementViews(ctx, v.ID, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.Views)
}

func TestIncrementViewsPublishedOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := seedVideo(t, s, models.Video{Title: "Draft"})

	got, err := s.IncrementViews(ctx, v.ID, true)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.IncrementViews(ctx, v.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)
}

func TestToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := seedVideo(t, s, models.Video{Title: "T"})

	got, err := s.ToggleVideoFlag(ctx, v.ID, models.FlagPublished)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	got, err = s.ToggleVideoFlag(ctx, v.ID, models.FlagPublished)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)

	got, err = s.ToggleVideoFlag(ctx, v.ID, models.FlagFeatured)
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)

	ok, err := s.DeleteVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = s.ToggleVideoFlag(ctx, v.ID, models.FlagFeatured)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := seedVideo(t, s, models.Video{Title: "T", Genres: []string{"Drama"}})

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	got.Genres[0] = "Changed"
	got.Views = 99

	again, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drama", again.Genres[0])
	assert.Zero(t, again.Views)
}
