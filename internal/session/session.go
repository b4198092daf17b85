package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamehub/internal/catalog"
	"gamehub/internal/router"
	"gamehub/pkg/logging"
	"gamehub/pkg/models"
)

var ErrClosed = errors.New("session closed")

const (
	DefaultDebounce  = 300 * time.Millisecond
	defaultQueueSize = 64
)

// DetailFetcher resolves the rich record behind a catalog entry. A nil
// result means "not available"; the session falls back on its own.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, idOrSlug string) *models.GameDetail
}

type Config struct {
	Debounce    time.Duration
	InitialPath string // route to open once the catalog is ready
	QueueSize   int
}

// Session is one running browser: a store, a router and a renderer driven
// by a single event loop. Run owns all state; everything else talks to it
// through Dispatch.
type Session struct {
	ID string

	store   *catalog.Store
	router  *router.Router
	fetcher DetailFetcher
	out     Renderer
	logger  *zap.Logger
	cfg     Config

	events chan Event
	done   chan struct{}

	ready     bool
	pending   []Event
	searchSeq uint64
	timer     *time.Timer
}

func New(store *catalog.Store, history router.History, fetcher DetailFetcher, out Renderer, cfg Config, logger *zap.Logger) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	id := uuid.NewString()
	logger = logging.OrNop(logger).Named("session").With(zap.String("session_id", id))

	return &Session{
		ID:      id,
		store:   store,
		router:  router.New(history, cfg.InitialPath, logger),
		fetcher: fetcher,
		out:     out,
		logger:  logger,
		cfg:     cfg,
		events:  make(chan Event, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. If the store is not loaded
// yet it is loaded in the background; UI events received meanwhile are
// replayed in order once it is.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(s.done)
	defer s.stopTimer()

	if s.store.Loaded() {
		s.ready = true
		s.enterRoute(ctx)
	} else {
		s.render(Frame{Type: FrameLoading, Route: "home", Path: "/"})
		go func() {
			games := s.store.Fetch(ctx)
			s.post(ctx, catalogLoaded{games: games})
		}()
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session stopped")
			return nil
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// Dispatch queues a UI event. It returns false once the session stopped.
func (s *Session) Dispatch(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot copies the session state on the loop.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	req := snapshotRequest{reply: make(chan Snapshot, 1)}
	select {
	case s.events <- req:
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (s *Session) post(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Session) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case catalogLoaded:
		s.store.Replace(ev.games)
		s.ready = true
		s.logger.Info("catalog ready", zap.Int("games", len(ev.games)))
		if len(ev.games) == 0 {
			s.notice("Catalog is empty or unavailable.")
		}
		s.enterRoute(ctx)

		pending := s.pending
		s.pending = nil
		for _, p := range pending {
			s.handleUI(ctx, p)
		}
	case snapshotRequest:
		ev.reply <- Snapshot{
			Catalog: s.store.Snapshot(),
			Route:   s.router.Current(),
			Ready:   s.ready,
		}
	case searchDue:
		if ev.seq != s.searchSeq {
			return
		}
		s.runSearch(ev.term)
	case detailLoaded:
		s.applyDetail(ev)
	default:
		if !s.ready {
			s.pending = append(s.pending, ev)
			return
		}
		s.handleUI(ctx, ev)
	}
}

func (s *Session) handleUI(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case LoadMore:
		s.loadMore()
	case ReadMore:
		if _, err := s.router.GoToDetail(ev.Slug); err != nil {
			s.notice("This game cannot be opened.")
			return
		}
		s.enterRoute(ctx)
	case SearchInput:
		s.searchSeq++
		seq, term := s.searchSeq, ev.Term
		s.stopTimer()
		s.timer = time.AfterFunc(s.cfg.Debounce, func() {
			s.post(ctx, searchDue{seq: seq, term: term})
		})
	case SearchSubmit:
		s.searchSeq++
		s.stopTimer()
		s.runSearch(ev.Term)
	case GoHome:
		if s.router.Current().IsHome() {
			s.renderHome()
			return
		}
		s.router.GoHome()
		s.enterRoute(ctx)
	case Pop:
		s.router.Pop(ev.State)
		s.enterRoute(ctx)
	default:
		s.logger.Warn("unknown event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

func (s *Session) loadMore() {
	if !s.router.Current().IsHome() {
		return
	}
	if _, active := s.store.ActiveSearch(); active {
		return
	}
	g := s.store.GrowWindow()
	s.render(Frame{
		Type:      FrameAppend,
		Route:     "home",
		Path:      "/",
		Games:     g.Added,
		Exhausted: g.Exhausted,
		Total:     s.store.Len(),
	})
}

// runSearch updates the filter. The grid is only redrawn on Home; on a
// detail page the result shows up when the user returns.
func (s *Session) runSearch(term string) {
	res := s.store.Search(term)
	s.logger.Debug("search",
		zap.String("term", res.Term),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("matches", len(res.Games)),
	)
	if s.router.Current().IsHome() {
		s.renderHome()
	}
}

func (s *Session) enterRoute(ctx context.Context) {
	rt := s.router.Current()
	if rt.IsHome() {
		s.renderHome()
		return
	}

	tok := s.router.Token()
	if g, ok := s.store.FindBySlug(rt.Slug); ok {
		d := models.DetailFromGame(g)
		s.render(Frame{Type: FrameDetail, Route: "detail", Path: rt.Path(), Detail: &d, Partial: true})
		key := g.ID
		if key == "" {
			key = g.Slug
		}
		s.fetchDetail(ctx, tok, key)
		return
	}

	s.render(Frame{Type: FrameLoading, Route: "detail", Path: rt.Path()})
	s.fetchDetail(ctx, tok, rt.Slug)
}

func (s *Session) fetchDetail(ctx context.Context, tok router.Token, key string) {
	if s.fetcher == nil {
		s.applyDetail(detailLoaded{token: tok})
		return
	}
	go func() {
		d := s.fetcher.FetchDetail(ctx, key)
		s.post(ctx, detailLoaded{token: tok, detail: d})
	}()
}

func (s *Session) applyDetail(ev detailLoaded) {
	if !s.router.IsCurrent(ev.token) {
		s.logger.Debug("stale detail dropped", zap.Stringer("route", ev.token.Route))
		return
	}
	rt := ev.token.Route

	if ev.detail != nil {
		s.render(Frame{Type: FrameDetail, Route: "detail", Path: rt.Path(), Detail: ev.detail})
		return
	}

	if g, ok := s.store.FindBySlug(rt.Slug); ok {
		d := models.DetailFromGame(g)
		s.render(Frame{
			Type:    FrameDetail,
			Route:   "detail",
			Path:    rt.Path(),
			Detail:  &d,
			Message: "Full details are unavailable; showing the summary.",
		})
		return
	}

	s.logger.Info("detail unresolved, falling back to home", zap.String("slug", rt.Slug))
	s.router.Fallback()
	s.notice(fmt.Sprintf("Game %q was not found.", rt.Slug))
	s.renderHome()
}

func (s *Session) renderHome() {
	games := s.store.Visible()
	fr := Frame{
		Type:      FrameGrid,
		Route:     "home",
		Path:      "/",
		Games:     games,
		Exhausted: s.store.Exhausted(),
		Total:     s.store.Len(),
	}
	if term, active := s.store.ActiveSearch(); active {
		outcome := catalog.OutcomeMatches
		if len(games) == 0 {
			outcome = catalog.OutcomeNoResults
			fr.Message = fmt.Sprintf("No games match %q.", term)
		}
		fr.Search = &SearchState{Term: term, Outcome: outcome.String(), Count: len(games)}
	}
	s.render(fr)
}

func (s *Session) notice(msg string) {
	rt := s.router.Current()
	s.render(Frame{Type: FrameNotice, Route: routeName(rt), Path: rt.Path(), Message: msg})
}

func (s *Session) render(fr Frame) {
	if s.out != nil {
		s.out.Render(fr)
	}
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
