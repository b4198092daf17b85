package router

import "sync"

// History is where the router records navigation: the browser's history
// for a web session, a MemoryHistory for the terminal UI.
type History interface {
	Push(state Payload, url string)
	Replace(state Payload, url string)
}

type entry struct {
	state *Payload
	url   string
}

// MemoryHistory behaves like a browser tab's history: pushing drops any
// forward entries; the first entry carries no state.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []entry
	index   int
}

func NewMemoryHistory(initialURL string) *MemoryHistory {
	if initialURL == "" {
		initialURL = "/"
	}
	return &MemoryHistory{entries: []entry{{url: initialURL}}}
}

func (h *MemoryHistory) Push(state Payload, url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], entry{state: &state, url: url})
	h.index = len(h.entries) - 1
}

func (h *MemoryHistory) Replace(state Payload, url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = entry{state: &state, url: url}
}

// Back moves one entry back and returns its state, like a popstate event.
// ok is false when already at the first entry.
func (h *MemoryHistory) Back() (state *Payload, ok bool) {
	return h.move(-1)
}

func (h *MemoryHistory) Forward() (state *Payload, ok bool) {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) (*Payload, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		return nil, false
	}
	h.index = next
	return clonePayload(h.entries[next].state), true
}

// URL is the current entry's URL.
func (h *MemoryHistory) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].url
}

func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func clonePayload(p *Payload) *Payload {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
