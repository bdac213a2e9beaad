package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawgSearchBody = `{
  "count": 2,
  "next": "https://api.rawg.io/api/games?page=2",
  "results": [
    {
      "id": 42,
      "name": "Halo: Combat Evolved",
      "background_image": "https://img/halo.jpg",
      "rating": 4.4,
      "released": "2001-11-15",
      "platforms": [{"platform": {"name": "Xbox"}}, {"platform": {"name": "PC"}}],
      "genres": [{"name": "Shooter"}]
    },
    {"id": 43, "name": "Halo 2"}
  ]
}`

func TestRAWGClient_SearchGames(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(rawgSearchBody))
	}))
	t.Cleanup(srv.Close)

	c := NewRAWGClient(Options{BaseURL: srv.URL, APIKey: "k123"}, testLogger())
	page, err := c.SearchGames(context.Background(), "  halo ", 0)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/games", got.URL.Path)
	assert.Equal(t, "k123", got.URL.Query().Get("key"))
	assert.Equal(t, "halo", got.URL.Query().Get("search"))
	assert.Equal(t, "1", got.URL.Query().Get("page"))

	assert.Equal(t, 2, page.Count)
	assert.Equal(t, 1, page.Page)
	assert.True(t, page.HasNext)
	require.Len(t, page.Results, 2)

	halo := page.Results[0]
	assert.Equal(t, int64(42), halo.RawgID)
	assert.Equal(t, "Halo: Combat Evolved", halo.Title)
	assert.Equal(t, []string{"Xbox", "PC"}, halo.Platforms)
	assert.Equal(t, []string{"Shooter"}, halo.Genres)
	assert.Equal(t, 4.4, halo.Rating)

	assert.Empty(t, page.Results[1].Platforms)
	assert.NotNil(t, page.Results[1].Platforms)
}

func TestRAWGClient_SearchGames_RequiresSearch(t *testing.T) {
	c := NewRAWGClient(Options{APIKey: "k"}, testLogger())

	_, err := c.SearchGames(context.Background(), "  ", 1)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRAWGClient_GameDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/42", r.URL.Path)
		w.Write([]byte(`{"id": 42, "name": "Halo", "description_raw": "Finish the fight."}`))
	}))
	t.Cleanup(srv.Close)

	c := NewRAWGClient(Options{BaseURL: srv.URL, APIKey: "k"}, testLogger())
	game, err := c.GameDetails(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), game.RawgID)
	assert.Equal(t, "Finish the fight.", game.Description)

	_, err = c.GameDetails(context.Background(), 0)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
