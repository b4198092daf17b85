package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"gamehub/pkg/logging"
	"gamehub/pkg/models"
)

const (
	DefaultStep     = 9
	DefaultPageSize = 40
	DefaultMaxPages = 5
)

// Loader fetches the whole catalog in one go.
type Loader interface {
	FetchAllPages(ctx context.Context, pageSize, maxPages int) []models.Game
}

type Options struct {
	Step     int // window growth per "load more"
	PageSize int // upstream page size used by Load
	MaxPages int // upstream page cap used by Load
}

func (o Options) withDefaults() Options {
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	return o
}

// State is everything the home view renders from.
//
// When SearchActive is false the rendered set is All[:WindowEnd]; when it
// is true the rendered set is Filtered and pagination is off.
type State struct {
	All          []models.Game
	WindowEnd    int
	SearchActive bool
	Term         string
	Filtered     []models.Game
}

// Store owns one State. It is not safe for concurrent use: a session's
// event loop is its only caller. All is read-only once Load returns and
// may be shared between stores through Fork.
type Store struct {
	loader Loader
	opts   Options
	logger *zap.Logger

	loaded bool
	state  State
}

func NewStore(loader Loader, opts Options, logger *zap.Logger) *Store {
	return &Store{
		loader: loader,
		opts:   opts.withDefaults(),
		logger: logging.OrNop(logger).Named("catalog"),
	}
}

// Load fetches the catalog and resets the window. It returns the number of
// games loaded; zero leaves a valid, empty store.
func (s *Store) Load(ctx context.Context) int {
	games := s.Fetch(ctx)
	s.Replace(games)

	if len(games) == 0 {
		s.logger.Warn("catalog is empty; rendering an empty grid")
	} else {
		s.logger.Info("catalog loaded", zap.Int("games", len(games)), zap.Int("window", s.state.WindowEnd))
	}
	return len(games)
}

// Fetch runs the loader without touching the store's state, so it may be
// called off the owning goroutine. Hand the result to Replace.
func (s *Store) Fetch(ctx context.Context) []models.Game {
	if s.loader == nil {
		return nil
	}
	return s.loader.FetchAllPages(ctx, s.opts.PageSize, s.opts.MaxPages)
}

// Replace installs an already-fetched catalog, as Load does.
func (s *Store) Replace(games []models.Game) {
	s.state = State{All: games}
	s.state.WindowEnd = s.initialWindow()
	s.loaded = true
}

// Fork returns a fresh store over the same loaded catalog, with its own
// window and search state.
func (s *Store) Fork() *Store {
	f := &Store{
		loader: s.loader,
		opts:   s.opts,
		logger: s.logger,
	}
	if s.loaded {
		f.Replace(s.state.All)
	}
	return f
}

// ForkWithLoader is Fork with a different loader, for a store taken before
// the catalog has loaded.
func (s *Store) ForkWithLoader(loader Loader) *Store {
	f := s.Fork()
	f.loader = loader
	return f
}

func (s *Store) Loaded() bool { return s.loaded }

func (s *Store) Len() int { return len(s.state.All) }

func (s *Store) Step() int { return s.opts.Step }

func (s *Store) initialWindow() int {
	return min(s.opts.Step, len(s.state.All))
}

// Growth is the result of one "load more".
type Growth struct {
	Added     []models.Game // newly exposed entries only
	WindowEnd int
	Exhausted bool // nothing left to expose
}

// GrowWindow exposes the next step of the catalog. At saturation, or while
// a search is active, it returns no entries and leaves the window alone.
func (s *Store) GrowWindow() Growth {
	all := s.state.All
	if s.state.SearchActive {
		return Growth{WindowEnd: s.state.WindowEnd, Exhausted: s.state.WindowEnd >= len(all)}
	}

	old := s.state.WindowEnd
	next := min(old+s.opts.Step, len(all))
	s.state.WindowEnd = next

	return Growth{
		Added:     all[old:next:next],
		WindowEnd: next,
		Exhausted: next >= len(all),
	}
}

// Outcome tells renderers what a search produced.
type Outcome int

const (
	OutcomeHome      Outcome = iota // search cleared, home window shown
	OutcomeMatches                  // at least one entry matched
	OutcomeNoResults                // catalog loaded, nothing matched
	OutcomeNotLoaded                // catalog not loaded yet
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHome:
		return "home"
	case OutcomeMatches:
		return "matches"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeNotLoaded:
		return "not_loaded"
	default:
		return "unknown"
	}
}

type SearchResult struct {
	Term    string
	Outcome Outcome
	Games   []models.Game
}

// Search filters the catalog on title, genres, platforms and tags. An
// empty term clears the search and restores the initial window.
func (s *Store) Search(term string) SearchResult {
	term = strings.TrimSpace(term)
	if !s.loaded {
		return SearchResult{Term: term, Outcome: OutcomeNotLoaded}
	}

	if term == "" {
		s.state.SearchActive = false
		s.state.Term = ""
		s.state.Filtered = nil
		s.state.WindowEnd = s.initialWindow()
		return SearchResult{Outcome: OutcomeHome, Games: s.Visible()}
	}

	fold := cases.Fold()
	needle := fold.String(term)

	filtered := make([]models.Game, 0)
	for _, g := range s.state.All {
		if matches(fold, g, needle) {
			filtered = append(filtered, g)
		}
	}

	s.state.SearchActive = true
	s.state.Term = term
	s.state.Filtered = filtered

	out := SearchResult{Term: term, Outcome: OutcomeMatches, Games: filtered}
	if len(filtered) == 0 {
		out.Outcome = OutcomeNoResults
	}
	return out
}

func matches(fold cases.Caser, g models.Game, needle string) bool {
	if strings.Contains(fold.String(g.Title), needle) {
		return true
	}
	for _, list := range [][]string{g.Genres, g.Platforms, g.Tags} {
		for _, v := range list {
			if strings.Contains(fold.String(v), needle) {
				return true
			}
		}
	}
	return false
}

// FindBySlug is a linear lookup over the loaded catalog.
func (s *Store) FindBySlug(slug string) (models.Game, bool) {
	if slug == "" {
		return models.Game{}, false
	}
	for _, g := range s.state.All {
		if g.Slug == slug {
			return g, true
		}
	}
	return models.Game{}, false
}

// Visible is the set the home view renders right now.
func (s *Store) Visible() []models.Game {
	if s.state.SearchActive {
		return s.state.Filtered
	}
	return s.state.All[:s.state.WindowEnd:s.state.WindowEnd]
}

// ActiveSearch returns the current term and whether a search is active.
func (s *Store) ActiveSearch() (string, bool) {
	return s.state.Term, s.state.SearchActive
}

// Exhausted reports whether "load more" has anything left to show.
func (s *Store) Exhausted() bool {
	return s.state.SearchActive || s.state.WindowEnd >= len(s.state.All)
}

// Window returns the [offset, offset+limit) slice of the full catalog,
// independent of this store's own window.
func (s *Store) Window(offset, limit int) []models.Game {
	all := s.state.All
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return []models.Game{}
	}
	end := min(offset+limit, len(all))
	return all[offset:end:end]
}

// Snapshot copies the state so callers cannot alias the store's slices.
func (s *Store) Snapshot() State {
	st := s.state
	st.All = append([]models.Game(nil), s.state.All...)
	if s.state.Filtered != nil {
		st.Filtered = append([]models.Game(nil), s.state.Filtered...)
	}
	return st
}
