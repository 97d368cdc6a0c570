package player

import (
	"sync"

	"github.com/fportier/upnext/internal/queue"
)

// Manual is a transport stand-in for builds without an audio backend. It
// accepts timeline pushes like a real player and advances only when told
// to, which makes it suitable for the reference UI and for wiring tests.
type Manual struct {
	mu      sync.Mutex
	items   []queue.Item
	index   int
	advance chan int
	done    chan struct{}
	closed  bool
}

// NewManual creates a stopped manual transport.
func NewManual() *Manual {
	return &Manual{
		index:   -1,
		advance: make(chan int, 1),
		done:    make(chan struct{}),
	}
}

func (m *Manual) ApplyOrder(items []queue.Item, startIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.index = startIndex
	return nil
}

func (m *Manual) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Manual) AdvanceChan() <-chan int {
	return m.advance
}

func (m *Manual) Done() <-chan struct{} {
	return m.done
}

// AdvanceNext simulates the player finishing the current entry. Reports
// false when there is nothing left to advance to. Every advance is
// delivered: the send waits for the consumer rather than dropping, so
// the transport index and the session never drift apart.
func (m *Manual) AdvanceNext() bool {
	m.mu.Lock()
	if m.closed || m.index < 0 || m.index+1 >= len(m.items) {
		m.mu.Unlock()
		return false
	}
	m.index++
	next := m.index
	m.mu.Unlock()

	select {
	case m.advance <- next:
		return true
	case <-m.done:
		return false
	}
}

// Close shuts the transport down.
func (m *Manual) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
}
