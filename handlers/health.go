package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reelbase/catalog/utils"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store Pinger
	Log   *zap.Logger
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := HealthResponse{Status: "ok", Store: "ok", Timestamp: time.Now().UTC()}
	status := http.StatusOK
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			h.Log.Warn("health check: store unreachable", zap.Error(err))
			res.Status, res.Store = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	utils.WriteJSON(w, status, res)
}
