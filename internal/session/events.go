package session

import (
	"gamehub/internal/router"
	"gamehub/pkg/models"
)

// Event is something the session loop reacts to. Renderers produce the
// exported ones; the loop posts the unexported ones to itself when async
// work completes.
type Event interface {
	event()
}

// LoadMore grows the home window by one step.
type LoadMore struct{}

// ReadMore opens the detail view for a game.
type ReadMore struct {
	Slug string
}

// SearchInput is a keystroke in the search box; it runs after a quiet period.
type SearchInput struct {
	Term string
}

// SearchSubmit runs a search immediately (Enter).
type SearchSubmit struct {
	Term string
}

// GoHome navigates back to the grid with a new history entry.
type GoHome struct{}

// Pop is a back/forward navigation carrying the entry's state, nil for the
// first entry.
type Pop struct {
	State *router.Payload
}

type catalogLoaded struct {
	games []models.Game
}

type searchDue struct {
	seq  uint64
	term string
}

type detailLoaded struct {
	token  router.Token
	detail *models.GameDetail
}

type snapshotRequest struct {
	reply chan Snapshot
}

func (LoadMore) event()        {}
func (ReadMore) event()        {}
func (SearchInput) event()     {}
func (SearchSubmit) event()    {}
func (GoHome) event()          {}
func (Pop) event()             {}
func (catalogLoaded) event()   {}
func (searchDue) event()       {}
func (detailLoaded) event()    {}
func (snapshotRequest) event() {}
