package player

import (
	"sync"

	"github.com/fportier/upnext/internal/queue"
)

// Mock is a test double for the transport. The session pushes timelines
// from its own goroutines while tests emit advances and inspect calls,
// so every field access is mutex-guarded like Manual's.
type Mock struct {
	mu           sync.Mutex
	applyCalls   [][]queue.Item
	applyIndexes []int
	applyErr     error
	index        int
	advanceCh    chan int
	done         chan struct{}
	closed       bool
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a new mock transport for testing.
func NewMock() *Mock {
	return &Mock{
		index:     -1,
		advanceCh: make(chan int, 4),
		done:      make(chan struct{}),
	}
}

func (m *Mock) ApplyOrder(items []queue.Item, startIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]queue.Item, len(items))
	copy(copied, items)
	m.applyCalls = append(m.applyCalls, copied)
	m.applyIndexes = append(m.applyIndexes, startIndex)
	if m.applyErr != nil {
		return m.applyErr
	}
	m.index = startIndex
	return nil
}

func (m *Mock) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Mock) AdvanceChan() <-chan int { return m.advanceCh }

func (m *Mock) Done() <-chan struct{} { return m.done }

// EmitAdvance simulates the player reporting a move to a new index.
func (m *Mock) EmitAdvance(index int) {
	m.mu.Lock()
	m.index = index
	m.mu.Unlock()
	m.advanceCh <- index
}

// ApplyCalls returns a copy of the recorded timeline pushes.
func (m *Mock) ApplyCalls() [][]queue.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]queue.Item, len(m.applyCalls))
	copy(calls, m.applyCalls)
	return calls
}

// LastApply returns the most recent pushed order and index, or nil/-1.
func (m *Mock) LastApply() ([]queue.Item, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.applyCalls) == 0 {
		return nil, -1
	}
	return m.applyCalls[len(m.applyCalls)-1], m.applyIndexes[len(m.applyIndexes)-1]
}

// SetApplyError makes subsequent ApplyOrder calls fail.
func (m *Mock) SetApplyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyErr = err
}

// Close closes the done channel.
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
}
