// Package memory is an in-process document store with the same semantics as
// the Mongo store. It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/models"
)

type Store struct {
	mu     sync.RWMutex
	users  map[primitive.ObjectID]*models.User
	videos map[primitive.ObjectID]*models.Video
	now    func() time.Time
}

func New() *Store {
	return &Store{
		users:  make(map[primitive.ObjectID]*models.User),
		videos: make(map[primitive.ObjectID]*models.Video),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(primitive.NilObjectID, user.Username, user.Email); err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Watchlist == nil {
		user.Watchlist = []primitive.ObjectID{}
	}
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (s *Store) UserByLogin(_ context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	byEmail := models.IsEmailIdentifier(identifier)
	email := models.NormalizeEmail(identifier)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if (byEmail && u.Email == email) || (!byEmail && u.Username == identifier) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) UserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUser(_ context.Context, id primitive.ObjectID, changes models.UserChanges) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	username, email := u.Username, u.Email
	if changes.Username != nil {
		username = *changes.Username
	}
	if changes.Email != nil {
		email = *changes.Email
	}
	if err := s.checkUnique(id, username, email); err != nil {
		return nil, err
	}
	u.Username, u.Email = username, email
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func (s *Store) SetAdmin(_ context.Context, id primitive.ObjectID, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsAdmin = isAdmin
		u.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) AddToWatchlist(_ context.Context, userID, videoID primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.InWatchlist(videoID) {
		return nil, nil
	}
	u.Watchlist = append(u.Watchlist, videoID)
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func (s *Store) RemoveFromWatchlist(_ context.Context, userID, videoID primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	kept := u.Watchlist[:0]
	for _, id := range u.Watchlist {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	u.Watchlist = kept
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

// checkUnique mirrors the unique indexes on email and username. Callers hold mu.
func (s *Store) checkUnique(self primitive.ObjectID, username, email string) error {
	for id, u := range s.users {
		if id == self {
			continue
		}
		if u.Email == email {
			return apperr.Conflict("email already registered")
		}
		if u.Username == username {
			return apperr.Conflict("username already taken")
		}
	}
	return nil
}

// Videos

func (s *Store) InsertVideo(_ context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	s.videos[video.ID] = cloneVideo(video)
	return nil
}

func (s *Store) FindVideos(_ context.Context, q models.VideoQuery) ([]models.Video, error) {
	s.mu.RLock()
	matched := s.match(q.Filter)
	s.mu.RUnlock()

	sortVideos(matched, q.Sort)
	if q.Skip > 0 {
		if q.Skip >= int64(len(matched)) {
			return []models.Video{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *Store) CountVideos(_ context.Context, f models.VideoFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(f))), nil
}

func (s *Store) VideoByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.videos[id]; ok {
		return cloneVideo(v), nil
	}
	return nil, nil
}

func (s *Store) VideosByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Video{}
	for _, id := range ids {
		if v, ok := s.videos[id]; ok {
			out = append(out, *cloneVideo(v))
		}
	}
	return out, nil
}

func (s *Store) UpdateVideo(_ context.Context, id primitive.ObjectID, u models.VideoUpdate) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, nil
	}
	applyUpdate(v, u)
	v.UpdatedAt = s.now()
	return cloneVideo(v), nil
}

func (s *Store) DeleteVideo(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return false, nil
	}
	delete(s.videos, id)
	return true, nil
}

func (s *Store) ToggleVideoFlag(_ context.Context, id primitive.ObjectID, flag models.VideoFlag) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, nil
	}
	switch flag {
	case models.FlagPublished:
		v.IsPublished = !v.IsPublished
	case models.FlagFeatured:
		v.IsFeatured = !v.IsFeatured
	}
	v.UpdatedAt = s.now()
	return cloneVideo(v), nil
}

func (s *Store) IncrementViews(_ context.Context, id primitive.ObjectID, publishedOnly bool) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok || (publishedOnly && !v.IsPublished) {
		return nil, nil
	}
	v.Views++
	return cloneVideo(v), nil
}

// match returns copies of all videos satisfying f. Callers hold mu.
func (s *Store) match(f models.VideoFilter) []models.Video {
	kw := strings.ToLower(strings.TrimSpace(f.Keyword))
	out := []models.Video{}
	for _, v := range s.videos {
		if f.PublishedOnly && !v.IsPublished {
			continue
		}
		if f.FeaturedOnly && !v.IsFeatured {
			continue
		}
		if f.Genre != "" && !v.HasGenre(f.Genre) {
			continue
		}
		if kw != "" &&
			!strings.Contains(strings.ToLower(v.Title), kw) &&
			!strings.Contains(strings.ToLower(v.Description), kw) {
			continue
		}
		out = append(out, *cloneVideo(v))
	}
	return out
}

func sortVideos(videos []models.Video, by models.VideoSort) {
	sort.Slice(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if by == models.SortMostViewed && a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})
}

func applyUpdate(v *models.Video, u models.VideoUpdate) {
	if u.Title != nil {
		v.Title = *u.Title
	}
	if u.Description != nil {
		v.Description = *u.Description
	}
	if u.Director != nil {
		v.Director = *u.Director
	}
	if u.ThumbnailURL != nil {
		v.ThumbnailURL = *u.ThumbnailURL
	}
	if u.ContentURL != nil {
		v.ContentURL = *u.ContentURL
	}
	if u.Duration != nil {
		v.Duration = *u.Duration
	}
	if u.Genres != nil {
		v.Genres = append([]string(nil), *u.Genres...)
	}
	if u.Cast != nil {
		v.Cast = append([]string(nil), *u.Cast...)
	}
	if u.ReleaseYear != nil {
		v.ReleaseYear = *u.ReleaseYear
	}
	if u.Rating != nil {
		v.Rating = *u.Rating
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Watchlist = append([]primitive.ObjectID{}, u.Watchlist...)
	c.WatchHistory = append([]primitive.ObjectID{}, u.WatchHistory...)
	return &c
}

func cloneVideo(v *models.Video) *models.Video {
	c := *v
	c.Genres = append([]string(nil), v.Genres...)
	c.Cast = append([]string(nil), v.Cast...)
	return &c
}
