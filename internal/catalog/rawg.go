package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
)

const (
	rawgBaseURL  = "https://api.rawg.io/api"
	rawgPageSize = 20
)

// RAWGClient searches the RAWG game database.
type RAWGClient struct {
	client
}

func NewRAWGClient(opts Options, logger *slog.Logger) *RAWGClient {
	return &RAWGClient{client: newClient("RAWG", rawgBaseURL, "key", opts, logger)}
}

// GamePage is one page of RAWG search results, already in payload form so a
// result can be sent straight back to POST /api/favorites.
type GamePage struct {
	Count   int                 `json:"count"`
	Page    int                 `json:"page"`
	HasNext bool                `json:"hasNext"`
	Results []model.GamePayload `json:"results"`
}

type rawgNamed struct {
	Name string `json:"name"`
}

type rawgGame struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	DescriptionRaw  string  `json:"description_raw"`
	BackgroundImage string  `json:"background_image"`
	Rating          float64 `json:"rating"`
	Released        string  `json:"released"`
	Platforms       []struct {
		Platform rawgNamed `json:"platform"`
	} `json:"platforms"`
	Genres []rawgNamed `json:"genres"`
}

type rawgSearchResponse struct {
	Count   int        `json:"count"`
	Next    *string    `json:"next"`
	Results []rawgGame `json:"results"`
}

// SearchGames runs a RAWG text search. page starts at 1.
func (c *RAWGClient) SearchGames(ctx context.Context, search string, page int) (*GamePage, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, apperror.ValidationFailed("search", "search is required")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("search", search)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(rawgPageSize))

	var resp rawgSearchResponse
	if err := c.getJSON(ctx, "/games", params, &resp); err != nil {
		return nil, err
	}

	results := make([]model.GamePayload, 0, len(resp.Results))
	for _, g := range resp.Results {
		results = append(results, g.payload())
	}
	return &GamePage{
		Count:   resp.Count,
		Page:    page,
		HasNext: resp.Next != nil && *resp.Next != "",
		Results: results,
	}, nil
}

// GameDetails fetches one game by its RAWG id.
func (c *RAWGClient) GameDetails(ctx context.Context, rawgID int64) (*model.GamePayload, error) {
	if rawgID <= 0 {
		return nil, apperror.ValidationFailed("rawgId", "rawgId must be a positive integer")
	}

	var g rawgGame
	if err := c.getJSON(ctx, "/games/"+strconv.FormatInt(rawgID, 10), nil, &g); err != nil {
		return nil, err
	}
	payload := g.payload()
	return &payload, nil
}

func (g rawgGame) payload() model.GamePayload {
	platforms := make([]string, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		platforms = append(platforms, p.Platform.Name)
	}
	genres := make([]string, 0, len(g.Genres))
	for _, genre := range g.Genres {
		genres = append(genres, genre.Name)
	}
	return model.GamePayload{
		RawgID:      g.ID,
		Title:       g.Name,
		Description: g.DescriptionRaw,
		Image:       g.BackgroundImage,
		Rating:      g.Rating,
		Released:    g.Released,
		Platforms:   platforms,
		Genres:      genres,
	}
}
