// Package browse defines the contract to the browsing collaborator that
// supplies continuation tracks when the context segment runs low.
package browse

import (
	"context"

	"github.com/fportier/upnext/internal/queue"
)

// Source fetches more tracks from a playback context. Implementations may
// hit a library database or a remote catalog; the queue engine only calls
// it outside its write lock and tolerates failures by leaving the queue
// as it is.
type Source interface {
	FetchMore(ctx context.Context, pc queue.Context, excludeIDs []string) ([]queue.Track, error)
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)

// Mock is a test double for Source.
type Mock struct {
	Tracks []queue.Track
	Err    error

	calls []queue.Context
}

func (m *Mock) FetchMore(_ context.Context, pc queue.Context, _ []string) ([]queue.Track, error) {
	m.calls = append(m.calls, pc)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

// Calls returns the contexts FetchMore was invoked with.
func (m *Mock) Calls() []queue.Context { return m.calls }
