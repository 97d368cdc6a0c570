package session

import "github.com/fportier/upnext/internal/queue"

const errorBufferSize = 16

// ErrorEvent reports a post-commit failure: the queue mutation itself
// succeeded but a downstream collaborator (timeline push, continuation
// fetch) did not.
type ErrorEvent struct {
	Operation string // e.g. "push timeline", "fetch continuation"
	Err       error
}

// Subscription delivers queue snapshots to one subscriber.
//
// Updates conflates: when the subscriber lags, an undelivered snapshot is
// replaced by the newer one, so delivery is strictly ordered and the
// latest state always arrives, but intermediate states of a burst may be
// skipped. Only the final state after a run of drag moves matters to a
// renderer.
type Subscription struct {
	Updates <-chan queue.Snapshot
	Errors  <-chan ErrorEvent
	Done    <-chan struct{}

	updates chan queue.Snapshot
	errors  chan ErrorEvent
	done    chan struct{}
}

// newSubscription creates a subscription with a single-slot conflating
// update channel.
func newSubscription() *Subscription {
	s := &Subscription{
		updates: make(chan queue.Snapshot, 1),
		errors:  make(chan ErrorEvent, errorBufferSize),
		done:    make(chan struct{}),
	}
	s.Updates = s.updates
	s.Errors = s.errors
	s.Done = s.done
	return s
}

// close signals the subscriber to stop.
func (s *Subscription) close() {
	close(s.done)
}

// send delivers a snapshot, displacing an undelivered older one. Never
// blocks on a slow subscriber.
func (s *Subscription) send(snap queue.Snapshot) {
	for {
		select {
		case s.updates <- snap:
			return
		default:
		}
		// Slot occupied by a stale snapshot: drop it and retry.
		select {
		case <-s.updates:
		default:
		}
	}
}

// sendError delivers an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errors <- e:
	default:
		// Drop if buffer full
	}
}
