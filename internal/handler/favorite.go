package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/service"
)

// DegradedHeader is set on favorites responses whose items could not be
// loaded. The body is then an empty list even if favorites exist.
const DegradedHeader = "X-Favorites-Degraded"

// FavoritesHandler serves the game and character favorites endpoints.
type FavoritesHandler struct {
	favorites *service.FavoritesService
	logger    *slog.Logger
}

func NewFavoritesHandler(favorites *service.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, logger: logger}
}

type addGameRequest struct {
	AccountID string            `json:"accountId"`
	Game      model.GamePayload `json:"game"`
}

type addCharacterRequest struct {
	AccountID string                 `json:"accountId"`
	Character model.CharacterPayload `json:"character"`
}

type addCharacterResponse struct {
	Success   bool             `json:"success"`
	Character *model.Character `json:"character"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// HandleAddGame adds a game to the account's favorites.
//
// HTTP: POST /api/favorites
// Body: {"accountId": "...", "game": {"rawgId": 42, "title": "Halo", ...}}
// Response: the account's favorite games, in the order they were added.
func (h *FavoritesHandler) HandleAddGame(w http.ResponseWriter, r *http.Request) {
	var req addGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	favorites, err := h.favorites.AddGameFavorite(r.Context(), resolveAccountID(r, req.AccountID), req.Game)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFavoriteGames(w, favorites)
}

// HandleRemoveGame removes a game from the account's favorites.
//
// HTTP: DELETE /api/favorites?accountId=...&gameId=...
func (h *FavoritesHandler) HandleRemoveGame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	favorites, err := h.favorites.RemoveGameFavorite(r.Context(), resolveAccountID(r, q.Get("accountId")), q.Get("gameId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFavoriteGames(w, favorites)
}

// HandleListGames: GET /api/favorites?accountId=...
func (h *FavoritesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.FavoriteGames(r.Context(), resolveAccountID(r, r.URL.Query().Get("accountId")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFavoriteGames(w, favorites)
}

// HandleAddCharacter adds a character to the account's favorites and returns
// the stored character.
//
// HTTP: POST /api/characters/favorites
// Body: {"accountId": "...", "character": {"name": "Master Chief", "gameId": "123", ...}}
func (h *FavoritesHandler) HandleAddCharacter(w http.ResponseWriter, r *http.Request) {
	var req addCharacterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	character, err := h.favorites.AddCharacterFavorite(r.Context(), resolveAccountID(r, req.AccountID), req.Character)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, addCharacterResponse{Success: true, Character: character})
}

// HandleRemoveCharacter: DELETE /api/characters/favorites?accountId=...&characterId=...
func (h *FavoritesHandler) HandleRemoveCharacter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	err := h.favorites.RemoveCharacterFavorite(r.Context(), resolveAccountID(r, q.Get("accountId")), q.Get("characterId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleListCharacters: GET /api/characters/favorites?accountId=...
func (h *FavoritesHandler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.FavoriteCharacters(r.Context(), resolveAccountID(r, r.URL.Query().Get("accountId")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if favorites.Degraded {
		w.Header().Set(DegradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, favorites.Items)
}

func writeFavoriteGames(w http.ResponseWriter, favorites *service.FavoriteGames) {
	if favorites.Degraded {
		w.Header().Set(DegradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, favorites.Items)
}
