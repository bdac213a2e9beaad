package handler_test

import (
	"net/http"
	"testing"

	"github.com/sakif/gamehub/internal/handler"
	"github.com/sakif/gamehub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameFavorites_HaloScenario(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	acc := api.signUp(t, "acc1").User.ID
	body := map[string]any{"accountId": acc, "game": map[string]any{"rawgId": 42, "title": "Halo"}}

	rr := api.do(t, http.MethodPost, "/api/favorites", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	games := decode[[]model.Game](t, rr)
	require.Len(t, games, 1)
	assert.Equal(t, "Halo", games[0].Title)
	haloID := games[0].ID

	rr = api.do(t, http.MethodPost, "/api/favorites", body, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Game](t, rr), 1, "adding twice must not duplicate")

	rr = api.do(t, http.MethodDelete, "/api/favorites?accountId="+acc+"&gameId="+haloID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGameFavorites_Errors(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	acc := api.signUp(t, "acc1").User.ID

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing rawgId",
			method:     http.MethodPost,
			target:     "/api/favorites",
			body:       map[string]any{"accountId": acc, "game": map[string]any{"title": "Halo"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "missing accountId",
			method:     http.MethodPost,
			target:     "/api/favorites",
			body:       map[string]any{"game": map[string]any{"rawgId": 42}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "unknown account",
			method:     http.MethodPost,
			target:     "/api/favorites",
			body:       map[string]any{"accountId": "ghost", "game": map[string]any{"rawgId": 42}},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "malformed JSON",
			method:     http.MethodPost,
			target:     "/api/favorites",
			body:       `{"accountId":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "remove without gameId",
			method:     http.MethodDelete,
			target:     "/api/favorites?accountId=" + acc,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "list for unknown account",
			method:     http.MethodGet,
			target:     "/api/favorites?accountId=ghost",
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, tt.method, tt.target, tt.body, "")

			assert.Equal(t, tt.wantStatus, rr.Code)
			resp := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCharacterFavorites_WithToken(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	user := api.signUp(t, "acc1")

	// No accountId in the body: it comes from the bearer token.
	rr := api.do(t, http.MethodPost, "/api/characters/favorites", map[string]any{
		"character": map[string]any{"name": "Master Chief", "gameId": "123", "aliases": []string{"John-117"}},
	}, user.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	added := decode[struct {
		Success   bool            `json:"success"`
		Character model.Character `json:"character"`
	}](t, rr)
	assert.True(t, added.Success)
	assert.Equal(t, "Master Chief", added.Character.Name)
	assert.NotEmpty(t, added.Character.ID)

	rr = api.do(t, http.MethodGet, "/api/characters/favorites?accountId="+user.User.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Character](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, added.Character.ID, list[0].ID)
	assert.Empty(t, rr.Header().Get(handler.DegradedHeader))

	rr = api.do(t, http.MethodDelete, "/api/characters/favorites?characterId="+added.Character.ID, nil, user.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success": true}`, rr.Body.String())

	// Removing again is still a success.
	rr = api.do(t, http.MethodDelete, "/api/characters/favorites?characterId="+added.Character.ID, nil, user.Token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCharacterFavorites_ExplicitAccountIDWins(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	mario := api.signUp(t, "mario")
	luigi := api.signUp(t, "luigi")

	rr := api.do(t, http.MethodPost, "/api/characters/favorites", map[string]any{
		"accountId": luigi.User.ID,
		"character": map[string]any{"name": "Cortana", "gameId": "123"},
	}, mario.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/characters/favorites", nil, mario.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCharacterFavorites_RemoveRequiresCharacterID(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	acc := api.signUp(t, "acc1").User.ID

	rr := api.do(t, http.MethodDelete, "/api/characters/favorites?accountId="+acc, nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFavorites_DegradedHeader(t *testing.T) {
	api := newTestAPI(t, apiOptions{brokenCollectibles: true})
	user := api.signUp(t, "acc1")

	rr := api.do(t, http.MethodPost, "/api/characters/favorites", map[string]any{
		"character": map[string]any{"name": "Master Chief", "gameId": "123"},
	}, user.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/characters/favorites", nil, user.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Equal(t, "true", rr.Header().Get(handler.DegradedHeader))

	rr = api.do(t, http.MethodPost, "/api/favorites", map[string]any{
		"game": map[string]any{"rawgId": 42, "title": "Halo"},
	}, user.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Equal(t, "true", rr.Header().Get(handler.DegradedHeader))
}

func TestFavorites_EmptyListIsNotDegraded(t *testing.T) {
	api := newTestAPI(t, apiOptions{brokenCollectibles: true})
	user := api.signUp(t, "acc1")

	rr := api.do(t, http.MethodGet, "/api/favorites", nil, user.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Empty(t, rr.Header().Get(handler.DegradedHeader))
}
