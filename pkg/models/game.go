package models

// Game is one catalog entry as the browser works with it.
//
// Slug is the routing key for the detail view; every Game in a loaded
// catalog carries one.
type Game struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	PosterURL   string   `json:"poster_url,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"` // empty when upstream sent null
	Rating      float64  `json:"rating"`
	Platforms   []string `json:"platforms"`
	Genres      []string `json:"genres"`
	Tags        []string `json:"tags,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// GameDetail is the richer record fetched lazily for the detail view.
type GameDetail struct {
	Game
	Description string   `json:"description,omitempty"` // plain text
	Website     string   `json:"website,omitempty"`
	Developers  []string `json:"developers,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	Metacritic  int      `json:"metacritic,omitempty"`
	Playtime    int      `json:"playtime,omitempty"` // hours
}

// DetailFromGame wraps summary-level data when no detail record is available.
func DetailFromGame(g Game) GameDetail {
	return GameDetail{Game: g, Description: g.Summary}
}
