package router

import (
	"encoding/json"
	"net/url"
	"strings"
)

type Kind int

const (
	KindHome Kind = iota
	KindDetail
)

// Route is either Home or Detail(slug).
type Route struct {
	Kind Kind
	Slug string
}

func Home() Route { return Route{Kind: KindHome} }

func Detail(slug string) Route { return Route{Kind: KindDetail, Slug: slug} }

func (r Route) IsHome() bool { return r.Kind == KindHome }

func (r Route) IsDetail() bool { return r.Kind == KindDetail }

const detailPrefix = "/game/"

// Path is the URL the route lives at.
func (r Route) Path() string {
	if r.IsDetail() {
		return detailPrefix + url.PathEscape(r.Slug)
	}
	return "/"
}

func (r Route) String() string {
	if r.IsDetail() {
		return "detail:" + r.Slug
	}
	return "home"
}

// History entry payload values.
const (
	RouteHome   = "home"
	RouteGame   = "game"
	RouteDetail = "detail" // accepted on input, never written
)

// Payload is the state object stored with each history entry.
type Payload struct {
	Route string `json:"route"`
	Slug  string `json:"slug,omitempty"`
}

func (r Route) Payload() Payload {
	if r.IsDetail() {
		return Payload{Route: RouteGame, Slug: r.Slug}
	}
	return Payload{Route: RouteHome}
}

// ParsePath maps a location path to a route: /game/<slug> is a detail
// page, anything else is home.
func ParsePath(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	rest, ok := strings.CutPrefix(path, detailPrefix)
	if !ok {
		return Home()
	}
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return Home()
	}
	slug, err := url.PathUnescape(rest)
	if err != nil || slug == "" {
		return Home()
	}
	return Detail(slug)
}

// Reduce rebuilds the route from a history payload delivered by a
// back/forward navigation. Missing or unrecognized payloads land on Home.
func Reduce(_ Route, p *Payload) Route {
	if p == nil {
		return Home()
	}
	switch strings.ToLower(strings.TrimSpace(p.Route)) {
	case RouteGame, RouteDetail:
		if slug := strings.TrimSpace(p.Slug); slug != "" {
			return Detail(slug)
		}
		return Home()
	default:
		return Home()
	}
}

// DecodePayload parses a raw history state. It returns nil for null,
// empty or malformed input.
func DecodePayload(raw []byte) *Payload {
	if len(raw) == 0 {
		return nil
	}
	var p *Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return p
}
