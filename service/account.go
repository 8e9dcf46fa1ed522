package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelbase/catalog/models"
)

// AuthResult is returned by every operation that hands out a session token.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AccountService is the self-service account surface: registration, login,
// profile and logout.
type AccountService struct {
	creds  *CredentialStore
	tokens *TokenService
	videos VideoRepository
}

func NewAccountService(creds *CredentialStore, tokens *TokenService, videos VideoRepository) *AccountService {
	return &AccountService{creds: creds, tokens: tokens, videos: videos}
}

func (s *AccountService) Register(ctx context.Context, in models.RegisterInput) (*AuthResult, error) {
	user, err := s.creds.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AccountService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.creds.Verify(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// UpdateProfile applies self-service changes and issues a fresh token.
func (s *AccountService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, p models.ProfileUpdate) (*AuthResult, error) {
	user, err := s.creds.UpdateProfile(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Logout revokes token when a denylist is configured and reports whether it did.
func (s *AccountService) Logout(ctx context.Context, token string) (bool, error) {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return false, err
	}
	return s.tokens.Revocable(), nil
}

// Profile resolves the watchlist and watch history to catalog summaries.
// Dangling references are dropped, and unpublished items are hidden from
// non-admin users.
func (s *AccountService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	user, err := s.creds.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	watchlist, err := s.summaries(ctx, user.Watchlist, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	history, err := s.summaries(ctx, user.WatchHistory, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin,
		Watchlist:    watchlist,
		WatchHistory: history,
		CreatedAt:    user.CreatedAt,
	}, nil
}

func (s *AccountService) summaries(ctx context.Context, ids []primitive.ObjectID, admin bool) ([]models.VideoSummary, error) {
	out := []models.VideoSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	videos, err := s.videos.VideosByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	byID := make(map[primitive.ObjectID]*models.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}
	// Keep the user's ordering.
	for _, id := range ids {
		v, ok := byID[id]
		if !ok || (!v.IsPublished && !admin) {
			continue
		}
		out = append(out, v.Summary())
	}
	return out, nil
}

func (s *AccountService) session(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
