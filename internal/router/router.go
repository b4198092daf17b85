package router

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"gamehub/pkg/logging"
)

// ErrMissingSlug is returned when asked to open a detail page for an
// entry without a routing key. The navigation does not happen.
var ErrMissingSlug = errors.New("game has no slug; cannot open detail")

// Token identifies one navigation. Work started for a route carries the
// token taken at that moment and is applied only if it is still current.
type Token struct {
	Route Route
	seq   uint64
}

// Router holds the current route and mirrors every transition into the
// History. It is not safe for concurrent use.
type Router struct {
	history History
	logger  *zap.Logger
	current Route
	seq     uint64
}

// New starts at the route encoded by initialPath.
func New(history History, initialPath string, logger *zap.Logger) *Router {
	return &Router{
		history: history,
		logger:  logging.OrNop(logger).Named("router"),
		current: ParsePath(initialPath),
	}
}

func (r *Router) Current() Route { return r.current }

func (r *Router) Token() Token { return Token{Route: r.current, seq: r.seq} }

// IsCurrent reports whether no transition happened since t was taken.
func (r *Router) IsCurrent(t Token) bool {
	return t.seq == r.seq && t.Route == r.current
}

// GoToDetail pushes a detail entry and switches to Detail(slug).
func (r *Router) GoToDetail(slug string) (Route, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		r.logger.Warn("detail navigation ignored", zap.Error(ErrMissingSlug))
		return r.current, ErrMissingSlug
	}
	r.transition(Detail(slug), r.push)
	return r.current, nil
}

// GoHome pushes a home entry and switches to Home.
func (r *Router) GoHome() Route {
	r.transition(Home(), r.push)
	return r.current
}

// Fallback replaces the current entry with Home. Used when a detail page
// cannot be resolved, so "back" does not lead into it again.
func (r *Router) Fallback() Route {
	r.transition(Home(), r.replace)
	return r.current
}

// Pop applies a back/forward navigation. The history already moved, so
// nothing is written to it.
func (r *Router) Pop(p *Payload) Route {
	next := Reduce(r.current, p)
	r.transition(next, nil)
	return r.current
}

func (r *Router) transition(next Route, record func(Route)) {
	prev := r.current
	r.current = next
	r.seq++
	if record != nil && r.history != nil {
		record(next)
	}
	r.logger.Debug("route changed", zap.Stringer("from", prev), zap.Stringer("to", next))
}

func (r *Router) push(rt Route)    { r.history.Push(rt.Payload(), rt.Path()) }
func (r *Router) replace(rt Route) { r.history.Replace(rt.Payload(), rt.Path()) }
