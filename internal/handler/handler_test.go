package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gamehub/internal/auth"
	"github.com/sakif/gamehub/internal/handler"
	"github.com/sakif/gamehub/internal/model"
	"github.com/sakif/gamehub/internal/repository"
	sqliteRepo "github.com/sakif/gamehub/internal/repository/sqlite"
	"github.com/sakif/gamehub/internal/service"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// brokenBatches wraps the real database but fails every batch lookup, the
// way an unreachable collectible store would.
type brokenBatches struct {
	*sqliteRepo.DB
}

func (brokenBatches) GetGamesByIDs(context.Context, []string) ([]model.Game, error) {
	return nil, errors.New("collectible store unreachable")
}

func (brokenBatches) GetCharactersByIDs(context.Context, []string) ([]model.Character, error) {
	return nil, errors.New("collectible store unreachable")
}

type testAPI struct {
	router http.Handler
	db     *sqliteRepo.DB
}

type apiOptions struct {
	brokenCollectibles bool
	catalog            *fakeCatalog
	logs               *bytes.Buffer // when set, handlers log JSON lines here
}

// newTestAPI wires the same handlers and routes as the server, on an
// in-memory database.
func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if opts.logs != nil {
		logger = slog.New(slog.NewJSONHandler(opts.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123", time.Hour)
	require.NoError(t, err)

	var games repository.GameRepository = db
	var characters repository.CharacterRepository = db
	if opts.brokenCollectibles {
		games = brokenBatches{db}
		characters = brokenBatches{db}
	}

	resolver := service.NewResolver(db, db, logger)
	favorites := service.NewFavoritesService(db, games, characters, db, resolver, logger)
	accounts := service.NewAccountService(db, favorites, tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger)

	fav := handler.NewFavoritesHandler(favorites, logger)
	acc := handler.NewAccountHandler(accounts, logger)
	authH := handler.NewAuthHandler(accounts, tokens.TTL(), logger)
	col := handler.NewCollectibleHandler(resolver, logger)
	health := handler.NewHealthHandler(db, nil)

	cat := opts.catalog
	if cat == nil {
		cat = &fakeCatalog{}
	}
	catH := handler.NewCatalogHandler(cat, cat, cat, logger)

	r := chi.NewRouter()
	r.Use(auth.OptionalAuth(tokens))
	r.Get("/healthz", health.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authH.HandleSignUp)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/logout", authH.HandleLogout)
		r.Get("/me", authH.HandleMe)

		r.Get("/users/{id}", acc.HandleGet)
		r.Patch("/users/{id}", acc.HandleUpdate)

		r.Get("/favorites", fav.HandleListGames)
		r.Post("/favorites", fav.HandleAddGame)
		r.Delete("/favorites", fav.HandleRemoveGame)

		r.Get("/characters/favorites", fav.HandleListCharacters)
		r.Post("/characters/favorites", fav.HandleAddCharacter)
		r.Delete("/characters/favorites", fav.HandleRemoveCharacter)
		r.Get("/characters/{id}", col.HandleGetCharacter)

		r.Post("/games", col.HandleCreateGame)
		r.Get("/games/{id}", col.HandleGetGame)

		r.Get("/catalog/games", catH.HandleSearchGames)
		r.Get("/catalog/games/{rawgId}", catH.HandleGameDetails)
		r.Get("/catalog/characters", catH.HandleSearchCharacters)
		r.Get("/catalog/news", catH.HandleNews)
	})

	return &testAPI{router: r, db: db}
}

// do sends a request with an optional JSON body and bearer token.
func (a *testAPI) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

type signedUp struct {
	User  model.Account `json:"user"`
	Token string        `json:"token"`
}

func (a *testAPI) signUp(t *testing.T, username string) signedUp {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out signedUp
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), rr.Body.String())
	return out
}
