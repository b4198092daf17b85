package tui

import (
	"context"
	"sync"

	"gamehub/internal/session"
)

// outbox sits between the model and the session. Dispatch only appends, so
// Update never waits on a session that may itself be waiting to hand a
// frame to the bubbletea loop; forward delivers events in order.
type outbox struct {
	mu     sync.Mutex
	queue  []session.Event
	closed bool
	wake   chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) Dispatch(ev session.Event) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}
	o.queue = append(o.queue, ev)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return true
}

// forward drains the queue into to until ctx ends or to stops accepting.
func (o *outbox) forward(ctx context.Context, to Dispatcher) {
	defer o.close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}
		for _, ev := range o.drain() {
			if !to.Dispatch(ev) {
				return
			}
		}
	}
}

func (o *outbox) drain() []session.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queue
	o.queue = nil
	return q
}

func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.queue = nil
	o.mu.Unlock()
}
