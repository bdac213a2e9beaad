package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/catalog"
	"github.com/sakif/gamehub/internal/model"
)

// GameCatalog is satisfied by *catalog.RAWGClient.
type GameCatalog interface {
	SearchGames(ctx context.Context, search string, page int) (*catalog.GamePage, error)
	GameDetails(ctx context.Context, rawgID int64) (*model.GamePayload, error)
}

// CharacterCatalog is satisfied by *catalog.GiantBombClient.
type CharacterCatalog interface {
	SearchCharacters(ctx context.Context, query string) ([]model.CharacterPayload, error)
}

// NewsCatalog is satisfied by *catalog.GameSpotClient.
type NewsCatalog interface {
	LatestArticles(ctx context.Context, limit int) ([]model.Article, error)
}

// CatalogHandler proxies the upstream catalogs. Results are returned in
// payload form, ready to be posted back as favorites.
type CatalogHandler struct {
	games      GameCatalog
	characters CharacterCatalog
	news       NewsCatalog
	logger     *slog.Logger
}

func NewCatalogHandler(games GameCatalog, characters CharacterCatalog, news NewsCatalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		games:      games,
		characters: characters,
		news:       news,
		logger:     logger,
	}
}

// HandleSearchGames: GET /api/catalog/games?search=...&page=...
func (h *CatalogHandler) HandleSearchGames(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.games.SearchGames(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGameDetails: GET /api/catalog/games/{rawgId}
func (h *CatalogHandler) HandleGameDetails(w http.ResponseWriter, r *http.Request) {
	rawgID, err := strconv.ParseInt(chi.URLParam(r, "rawgId"), 10, 64)
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("rawgId", "rawgId must be an integer"))
		return
	}

	game, err := h.games.GameDetails(r.Context(), rawgID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleSearchCharacters: GET /api/catalog/characters?query=...
func (h *CatalogHandler) HandleSearchCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.characters.SearchCharacters(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

// HandleNews: GET /api/catalog/news?limit=...
func (h *CatalogHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	articles, err := h.news.LatestArticles(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
