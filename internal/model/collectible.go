package model

import "time"

// Game is a RAWG game cached locally. RawgID is the external identity and is
// unique across the table.
type Game struct {
	ID          string    `json:"id"`
	RawgID      int64     `json:"rawgId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Rating      float64   `json:"rating"`
	Released    string    `json:"released"`
	Platforms   []string  `json:"platforms"`
	Genres      []string  `json:"genres"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Character is a game character cached locally. Its external identity is
// the pair (Name, GameID), where GameID is the upstream game id.
type Character struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GameID      string    `json:"gameId"`
	GameTitle   string    `json:"gameTitle"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Aliases     []string  `json:"aliases"`
	Gender      string    `json:"gender"`
	Origin      string    `json:"origin"`
	GiantBombID string    `json:"giantBombId,omitempty"`
	RawgID      int64     `json:"rawgId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GamePayload is a game as received from a client or the RAWG API, before
// it has a local id.
type GamePayload struct {
	RawgID      int64    `json:"rawgId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Released    string   `json:"released,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// CharacterPayload is a character as received from a client or the
// GiantBomb API.
type CharacterPayload struct {
	Name        string   `json:"name"`
	GameID      string   `json:"gameId"`
	GameTitle   string   `json:"gameTitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	GiantBombID string   `json:"giantBombId,omitempty"`
	RawgID      int64    `json:"rawgId,omitempty"`
}

// Article is a GameSpot news article. Articles are not persisted.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Deck        string    `json:"deck"`
	Authors     string    `json:"authors"`
	Image       string    `json:"image"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}
