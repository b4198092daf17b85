package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamehub/internal/router"
	"gamehub/internal/session"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is what the browser sends: a UI event, or a popstate with
// the raw history state.
type clientMessage struct {
	Type  string          `json:"type"`
	Slug  string          `json:"slug,omitempty"`
	Term  string          `json:"term,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

// historyMessage asks the browser to mirror a router transition.
type historyMessage struct {
	Type  string         `json:"type"` // push_state or replace_state
	State router.Payload `json:"state"`
	URL   string         `json:"url"`
}

// decodeEvent maps a client message to a session event.
func decodeEvent(raw []byte) (session.Event, bool) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, false
	}
	switch strings.ToLower(strings.TrimSpace(msg.Type)) {
	case "load_more":
		return session.LoadMore{}, true
	case "read_more":
		return session.ReadMore{Slug: msg.Slug}, true
	case "search_input":
		return session.SearchInput{Term: msg.Term}, true
	case "search_submit":
		return session.SearchSubmit{Term: msg.Term}, true
	case "home":
		return session.GoHome{}, true
	case "popstate":
		return session.Pop{State: router.DecodePayload(msg.State)}, true
	default:
		return nil, false
	}
}

// wsPeer is both the renderer and the history of one browser tab.
type wsPeer struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	logger *zap.Logger
}

func (p *wsPeer) Render(f session.Frame) { p.write(f) }

func (p *wsPeer) Push(state router.Payload, url string) {
	p.write(historyMessage{Type: "push_state", State: state, URL: url})
}

func (p *wsPeer) Replace(state router.Payload, url string) {
	p.write(historyMessage{Type: "replace_state", State: state, URL: url})
}

func (p *wsPeer) write(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.ws.WriteJSON(v); err != nil {
		p.logger.Debug("ws write failed", zap.Error(err))
	}
}

// ws runs one browser session for the lifetime of the connection. The
// client passes its location as ?path= so deep links resolve.
func (h *Handler) ws(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = "/"
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	peer := &wsPeer{ws: conn, logger: h.Logger}
	s := session.New(h.Catalog.Fork(), peer, h.Details, peer, session.Config{
		Debounce:    h.Debounce,
		InitialPath: path,
	}, h.Logger)
	peer.logger = h.Logger.With(zap.String("session_id", s.ID))

	h.Hub.Add(s)
	peer.logger.Info("ws session opened", zap.String("path", path), zap.Int("sessions", h.Hub.Count()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		ev, ok := decodeEvent(payload)
		if !ok {
			peer.logger.Debug("ws message ignored", zap.ByteString("payload", payload))
			continue
		}
		if !s.Dispatch(ev) {
			break
		}
	}

	cancel()
	<-s.Done()
	h.Hub.Remove(s.ID)
	_ = conn.Close()
	peer.logger.Info("ws session closed", zap.Int("sessions", h.Hub.Count()))
}
