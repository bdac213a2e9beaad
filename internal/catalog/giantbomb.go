package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/model"
)

const (
	giantBombBaseURL = "https://www.giantbomb.com/api"
	giantBombLimit   = 20
)

// GiantBombClient searches GiantBomb for characters.
type GiantBombClient struct {
	client
}

func NewGiantBombClient(opts Options, logger *slog.Logger) *GiantBombClient {
	return &GiantBombClient{client: newClient("GiantBomb", giantBombBaseURL, "api_key", opts, logger)}
}

type giantBombImage struct {
	MediumURL   string `json:"medium_url"`
	OriginalURL string `json:"original_url"`
}

type giantBombCharacter struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Deck                string          `json:"deck"`
	Aliases             *string         `json:"aliases"` // newline separated
	Gender              int             `json:"gender"`
	Image               *giantBombImage `json:"image"`
	FirstAppearedInGame *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"first_appeared_in_game"`
}

// GiantBomb and GameSpot wrap results in the same envelope; status_code 1
// is success.
type envelope[T any] struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Results    []T    `json:"results"`
}

func (e *envelope[T]) check(source string) error {
	if e.StatusCode != 1 {
		return apperror.Upstream(source, apperror.UpstreamBadResponse,
			fmt.Errorf("catalog: %s status_code %d: %s", source, e.StatusCode, e.Error))
	}
	return nil
}

// SearchCharacters returns characters matching query. A character whose
// first game is unknown has an empty GameID and cannot be favorited until
// the client supplies one.
func (c *GiantBombClient) SearchCharacters(ctx context.Context, query string) ([]model.CharacterPayload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("query", "query is required")
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("resources", "character")
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(giantBombLimit))

	var resp envelope[giantBombCharacter]
	if err := c.getJSON(ctx, "/search/", params, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(c.source); err != nil {
		return nil, err
	}

	out := make([]model.CharacterPayload, 0, len(resp.Results))
	for _, ch := range resp.Results {
		out = append(out, ch.payload())
	}
	return out, nil
}

func (ch giantBombCharacter) payload() model.CharacterPayload {
	p := model.CharacterPayload{
		Name:        ch.Name,
		Description: ch.Deck,
		Gender:      giantBombGender(ch.Gender),
		GiantBombID: strconv.FormatInt(ch.ID, 10),
		Aliases:     []string{},
	}
	if ch.Aliases != nil {
		for _, a := range strings.Split(*ch.Aliases, "\n") {
			if a = strings.TrimSpace(a); a != "" {
				p.Aliases = append(p.Aliases, a)
			}
		}
	}
	if ch.Image != nil {
		p.Image = ch.Image.MediumURL
		if p.Image == "" {
			p.Image = ch.Image.OriginalURL
		}
	}
	if g := ch.FirstAppearedInGame; g != nil {
		p.GameID = strconv.FormatInt(g.ID, 10)
		p.GameTitle = g.Name
	}
	return p
}

func giantBombGender(code int) string {
	switch code {
	case 1:
		return "Male"
	case 2:
		return "Female"
	default:
		return "Other"
	}
}
