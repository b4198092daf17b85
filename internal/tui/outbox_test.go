package tui

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/session"
)

// stalledSession accepts nothing until release is closed.
type stalledSession struct {
	release chan struct{}

	mu  sync.Mutex
	got []session.Event
}

func (s *stalledSession) Dispatch(ev session.Event) bool {
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, ev)
	return true
}

func (s *stalledSession) events() []session.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Event(nil), s.got...)
}

func TestOutboxNeverBlocksAndKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target := &stalledSession{release: make(chan struct{})}
	o := newOutbox()
	go o.forward(ctx, target)

	const n = 500
	var want []session.Event
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i < n; i++ {
			ev := session.SearchInput{Term: strconv.Itoa(i)}
			want = append(want, ev)
			assert.True(t, o.Dispatch(ev))
		}
	}()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a stalled session")
	}

	close(target.release)
	require.Eventually(t, func() bool { return len(target.events()) == n }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, target.events())
}

func TestOutboxRejectsAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := newOutbox()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		o.forward(ctx, &recordingDispatcher{})
	}()

	cancel()
	<-stopped
	assert.False(t, o.Dispatch(session.GoHome{}))
}
