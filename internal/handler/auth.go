package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/auth"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/service"
)

// AuthHandler handles signup, login and logout.
//
// A successful signup or login returns the token in the body AND sets it as
// an HttpOnly cookie, so both API clients and the browser UI can use it.
// auth.OptionalAuth reads it back on later requests.
type AuthHandler struct {
	accounts *service.AccountService
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthHandler(accounts *service.AccountService, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.Account `json:"user"`
	Token string         `json:"token"`
}

// HandleSignUp creates an account.
//
// HTTP: POST /api/auth/signup
// Body: {"username": "...", "email": "...", "password": "..."}
// Response: 201 {"user": {...}, "token": "..."}; 409 if username or email is taken
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, authResponse{User: result.Account, Token: result.Token})
}

// HandleLogin: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{User: result.Account, Token: result.Token})
}

// HandleLogout clears the token cookie. Tokens are stateless, so a copy held
// elsewhere stays valid until it expires.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the account behind the request's token.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("not logged in"))
		return
	}

	view, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Account)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // requires HTTPS
	})
}
