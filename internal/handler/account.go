package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/service"
)

// AccountHandler serves profile reads and updates.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

type accountResponse struct {
	User          *model.Account `json:"user"`
	FavoriteGames []model.Game   `json:"favoriteGames"`
}

// HandleGet returns the account (never its password hash) and its
// favorite games.
//
// HTTP: GET /api/users/{id}
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if view.FavoriteGames.Degraded {
		w.Header().Set(DegradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, accountResponse{
		User:          view.Account,
		FavoriteGames: view.FavoriteGames.Items,
	})
}

// HandleUpdate applies a partial profile update. Fields missing from the
// body are left unchanged.
//
// HTTP: PATCH /api/users/{id}
// Body: {"username"?, "bio"?, "profileImage"?, "bannerImage"?}
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
