package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sakif/gamehub/internal/model"
)

const (
	gameSpotBaseURL = "https://www.gamespot.com/api"

	DefaultNewsLimit = 10
	MaxNewsLimit     = 50
)

// GameSpotClient reads the GameSpot news feed.
type GameSpotClient struct {
	client
}

func NewGameSpotClient(opts Options, logger *slog.Logger) *GameSpotClient {
	return &GameSpotClient{client: newClient("GameSpot", gameSpotBaseURL, "api_key", opts, logger)}
}

type gameSpotArticle struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Deck        string `json:"deck"`
	Authors     string `json:"authors"`
	PublishDate string `json:"publish_date"`
	URL         string `json:"site_detail_url"`
	Image       *struct {
		Original    string `json:"original"`
		SquareSmall string `json:"square_small"`
	} `json:"image"`
}

// LatestArticles returns the newest articles first. limit is clamped to
// [1, MaxNewsLimit]; zero means DefaultNewsLimit.
func (c *GameSpotClient) LatestArticles(ctx context.Context, limit int) ([]model.Article, error) {
	switch {
	case limit <= 0:
		limit = DefaultNewsLimit
	case limit > MaxNewsLimit:
		limit = MaxNewsLimit
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("sort", "publish_date:desc")
	params.Set("limit", strconv.Itoa(limit))

	var resp envelope[gameSpotArticle]
	if err := c.getJSON(ctx, "/articles/", params, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(c.source); err != nil {
		return nil, err
	}

	out := make([]model.Article, 0, len(resp.Results))
	for _, a := range resp.Results {
		article := model.Article{
			ID:      a.ID,
			Title:   a.Title,
			Deck:    a.Deck,
			Authors: a.Authors,
			URL:     a.URL,
		}
		if a.Image != nil {
			article.Image = a.Image.Original
		}
		// publish_date has no zone and is read as UTC. An unparseable date
		// is left zero.
		if t, err := dateparse.ParseIn(a.PublishDate, time.UTC); err == nil {
			article.PublishedAt = t
		}
		out = append(out, article)
	}
	return out, nil
}
