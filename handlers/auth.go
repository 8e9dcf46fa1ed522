package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/middleware"
	"github.com/reelbase/catalog/models"
	"github.com/reelbase/catalog/service"
	"github.com/reelbase/catalog/utils"
)

type AuthHandler struct {
	Accounts  *service.AccountService
	Watchlist *service.WatchlistManager
	Log       *zap.Logger
}

// LoginRequest accepts the login identifier under any of its names.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (l LoginRequest) login() string {
	for _, v := range []string{l.Identifier, l.Email, l.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type WatchlistResponse struct {
	Watchlist []string `json:"watchlist"`
}

type LogoutResponse struct {
	Revoked bool `json:"revoked"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	res, err := h.Accounts.Register(r.Context(), req)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	res, err := h.Accounts.Login(r.Context(), req.login(), req.Password)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	profile, err := h.Accounts.Profile(r.Context(), id.UserID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	id := middleware.IdentityFromContext(r.Context())
	res, err := h.Accounts.UpdateProfile(r.Context(), id.UserID, req)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	revoked, err := h.Accounts.Logout(r.Context(), token)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, LogoutResponse{Revoked: revoked})
}

func (h *AuthHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	list, err := h.Watchlist.Add(r.Context(), id.UserID, chi.URLParam(r, "videoId"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, watchlistResponse(list))
}

func (h *AuthHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	list, err := h.Watchlist.Remove(r.Context(), id.UserID, chi.URLParam(r, "videoId"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, watchlistResponse(list))
}

func watchlistResponse(ids []primitive.ObjectID) WatchlistResponse {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return WatchlistResponse{Watchlist: out}
}
