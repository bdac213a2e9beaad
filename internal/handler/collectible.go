package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/service"
)

// CollectibleHandler exposes the locally cached games and characters.
type CollectibleHandler struct {
	resolver *service.Resolver
	logger   *slog.Logger
}

func NewCollectibleHandler(resolver *service.Resolver, logger *slog.Logger) *CollectibleHandler {
	return &CollectibleHandler{resolver: resolver, logger: logger}
}

// HandleCreateGame caches a game by rawgId without favoriting it. Posting
// the same rawgId again returns the existing record unchanged.
//
// HTTP: POST /api/games
func (h *CollectibleHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var payload model.GamePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, h.logger, err)
		return
	}

	game, err := h.resolver.ResolveGame(r.Context(), payload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleGetGame: GET /api/games/{id}
func (h *CollectibleHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.resolver.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleGetCharacter: GET /api/characters/{id}
func (h *CollectibleHandler) HandleGetCharacter(w http.ResponseWriter, r *http.Request) {
	character, err := h.resolver.GetCharacter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, character)
}
