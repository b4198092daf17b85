package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/catalog"
	"gamehub/internal/router"
	"gamehub/internal/session"
	"gamehub/pkg/models"
)

type wireMessage struct {
	Type    string             `json:"type"`
	Route   string             `json:"route"`
	Path    string             `json:"path"`
	Games   []models.Game      `json:"games"`
	Detail  *models.GameDetail `json:"detail"`
	Partial bool               `json:"partial"`
	Message string             `json:"message"`
	State   router.Payload     `json:"state"`
	URL     string             `json:"url"`
}

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func dialSession(t *testing.T, h *Handler, path string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewEngine(h))
	t.Cleanup(srv.Close)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?path=" + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func sendMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func TestWSSessionFlow(t *testing.T) {
	details := fakeDetails{"5": {Game: models.Game{ID: "5", Slug: "game-5", Title: "Game 5"}, Description: "Full text"}}
	h, _ := newTestHandler(t, 20, details, true)
	conn := dialSession(t, h, "/")

	grid := readMsg(t, conn)
	assert.Equal(t, "grid", grid.Type)
	assert.Len(t, grid.Games, 9)
	assert.Eventually(t, func() bool { return h.Hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	sendMsg(t, conn, map[string]any{"type": "load_more"})
	appended := readMsg(t, conn)
	assert.Equal(t, "append", appended.Type)
	assert.Len(t, appended.Games, 9)

	sendMsg(t, conn, map[string]any{"type": "read_more", "slug": "game-5"})
	push := readMsg(t, conn)
	assert.Equal(t, "push_state", push.Type)
	assert.Equal(t, router.Payload{Route: "game", Slug: "game-5"}, push.State)
	assert.Equal(t, "/game/game-5", push.URL)

	partial := readMsg(t, conn)
	assert.Equal(t, "detail", partial.Type)
	assert.True(t, partial.Partial)
	full := readMsg(t, conn)
	assert.Equal(t, "Full text", full.Detail.Description)

	sendMsg(t, conn, map[string]any{"type": "popstate", "state": nil})
	back := readMsg(t, conn)
	assert.Equal(t, "grid", back.Type)
	assert.Len(t, back.Games, 18)
}

func TestWSDeepLinkFallback(t *testing.T) {
	h, _ := newTestHandler(t, 20, nil, true)
	conn := dialSession(t, h, "/game/unknown")

	assert.Equal(t, "loading", readMsg(t, conn).Type)

	replace := readMsg(t, conn)
	assert.Equal(t, "replace_state", replace.Type)
	assert.Equal(t, "/", replace.URL)
	assert.Equal(t, "home", replace.State.Route)

	assert.Equal(t, "notice", readMsg(t, conn).Type)
	assert.Equal(t, "grid", readMsg(t, conn).Type)
}

func TestWSSessionsWaitForStartupLoad(t *testing.T) {
	loader := newGatedLoader(20)
	cat := NewCatalog(catalog.NewStore(loader, catalog.Options{Step: 9}, nil))
	h := NewHandler(cat, nil, nil, 0, nil)

	loaded := make(chan int, 1)
	go func() { loaded <- cat.Load(context.Background()) }()
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, waitFor, tick)

	first := dialSession(t, h, "/")
	second := dialSession(t, h, "/")
	assert.Equal(t, "loading", readMsg(t, first).Type)
	assert.Equal(t, "loading", readMsg(t, second).Type)

	close(loader.release)
	for _, conn := range []*websocket.Conn{first, second} {
		grid := readMsg(t, conn)
		assert.Equal(t, "grid", grid.Type)
		assert.Len(t, grid.Games, 9)
	}

	assert.Equal(t, 20, <-loaded)
	assert.True(t, cat.Ready())
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestWSSessionUnregistersOnClose(t *testing.T) {
	h, _ := newTestHandler(t, 3, nil, true)
	conn := dialSession(t, h, "/")
	readMsg(t, conn)
	require.Eventually(t, func() bool { return h.Hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		raw  string
		want session.Event
		ok   bool
	}{
		{raw: `{"type":"load_more"}`, want: session.LoadMore{}, ok: true},
		{raw: `{"type":"READ_MORE","slug":"x"}`, want: session.ReadMore{Slug: "x"}, ok: true},
		{raw: `{"type":"search_input","term":"rp"}`, want: session.SearchInput{Term: "rp"}, ok: true},
		{raw: `{"type":"search_submit","term":"rpg"}`, want: session.SearchSubmit{Term: "rpg"}, ok: true},
		{raw: `{"type":"home"}`, want: session.GoHome{}, ok: true},
		{raw: `{"type":"popstate","state":{"route":"game","slug":"y"}}`, want: session.Pop{State: &router.Payload{Route: "game", Slug: "y"}}, ok: true},
		{raw: `{"type":"popstate","state":null}`, want: session.Pop{}, ok: true},
		{raw: `{"type":"popstate","state":"garbage"}`, want: session.Pop{}, ok: true},
		{raw: `{"type":"dance"}`},
		{raw: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := decodeEvent([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameWireShape(t *testing.T) {
	b, err := json.Marshal(session.Frame{Type: session.FrameGrid, Route: "home", Path: "/", Exhausted: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"grid","route":"home","path":"/","exhausted":true,"total":0}`, string(b))
}
