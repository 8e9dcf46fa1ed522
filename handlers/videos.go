package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/middleware"
	"github.com/reelbase/catalog/models"
	"github.com/reelbase/catalog/service"
	"github.com/reelbase/catalog/utils"
)

type VideosHandler struct {
	Catalog *service.CatalogQueryEngine
	Log     *zap.Logger
}

type StreamResponse struct {
	URL string `json:"url"`
}

// List serves GET /api/videos?keyword=&genre=&page=.
func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.ParseInt(q.Get("page"), 10, 64)
	if err != nil {
		page = 1
	}
	res, err := h.Catalog.List(r.Context(), middleware.IdentityFromContext(r.Context()), service.ListParams{
		Keyword: q.Get("keyword"),
		Genre:   q.Get("genre"),
		Page:    page,
	})
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *VideosHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.writeVideos(w, func() ([]models.Video, error) { return h.Catalog.Featured(r.Context()) })
}

func (h *VideosHandler) Trending(w http.ResponseWriter, r *http.Request) {
	h.writeVideos(w, func() ([]models.Video, error) { return h.Catalog.Trending(r.Context()) })
}

func (h *VideosHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genre := chi.URLParam(r, "genre")
	h.writeVideos(w, func() ([]models.Video, error) { return h.Catalog.ByGenre(r.Context(), genre) })
}

// Get returns one video and counts the view.
func (h *VideosHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Catalog.Get(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

func (h *VideosHandler) Stream(w http.ResponseWriter, r *http.Request) {
	url, err := h.Catalog.PlaybackURL(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, StreamResponse{URL: url})
}

func (h *VideosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.VideoInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	v, err := h.Catalog.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, v)
}

func (h *VideosHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u models.VideoUpdate
	if err := utils.DecodeJSON(r, &u); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	v, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

func (h *VideosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *VideosHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	h.writeVideo(w, func() (*models.Video, error) { return h.Catalog.TogglePublish(r.Context(), chi.URLParam(r, "id")) })
}

func (h *VideosHandler) ToggleFeature(w http.ResponseWriter, r *http.Request) {
	h.writeVideo(w, func() (*models.Video, error) { return h.Catalog.ToggleFeature(r.Context(), chi.URLParam(r, "id")) })
}

func (h *VideosHandler) writeVideos(w http.ResponseWriter, fetch func() ([]models.Video, error)) {
	videos, err := fetch()
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, videos)
}

func (h *VideosHandler) writeVideo(w http.ResponseWriter, fetch func() (*models.Video, error)) {
	v, err := fetch()
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}
