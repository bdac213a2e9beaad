package handler

import (
	"context"
	"net/http"
	"time"
)

// DBPinger is satisfied by *sqlite.DB.
type DBPinger interface {
	Ping() error
}

// CachePinger is satisfied by *catalog.RedisCache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether storage is reachable. The cache is
// informational: a down cache does not fail the check.
type HealthHandler struct {
	db    DBPinger
	cache CachePinger // nil when redis is not configured
}

func NewHealthHandler(db DBPinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// HandleHealth: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", Cache: "disabled"}
	status := http.StatusOK

	if err := h.db.Ping(); err != nil {
		resp.Status = "unavailable"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "unreachable"
		}
	}

	writeJSON(w, status, resp)
}
