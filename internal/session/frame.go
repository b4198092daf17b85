package session

import (
	"gamehub/internal/catalog"
	"gamehub/internal/router"
	"gamehub/pkg/models"
)

type FrameType string

const (
	FrameLoading FrameType = "loading" // catalog or detail on its way
	FrameGrid    FrameType = "grid"    // replace the grid
	FrameAppend  FrameType = "append"  // append Games to the grid
	FrameDetail  FrameType = "detail"
	FrameNotice  FrameType = "notice" // diagnostic for the user, no state change
)

// Frame is one render instruction. Games and Detail are shared with the
// session and must be treated as read-only.
type Frame struct {
	Type      FrameType          `json:"type"`
	Route     string             `json:"route"`
	Path      string             `json:"path"`
	Games     []models.Game      `json:"games,omitempty"`
	Detail    *models.GameDetail `json:"detail,omitempty"`
	Partial   bool               `json:"partial,omitempty"` // detail has summary fields only; more may follow
	Exhausted bool               `json:"exhausted"`
	Total     int                `json:"total"`
	Search    *SearchState       `json:"search,omitempty"`
	Message   string             `json:"message,omitempty"`
}

type SearchState struct {
	Term    string `json:"term"`
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// Renderer draws frames. Render is called from the session loop and
// should not block for long.
type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

func (f RendererFunc) Render(fr Frame) { f(fr) }

// Snapshot is a copy of a session's state, taken on its loop.
type Snapshot struct {
	Catalog catalog.State
	Route   router.Route
	Ready   bool
}

func routeName(r router.Route) string {
	if r.IsDetail() {
		return "detail"
	}
	return "home"
}
