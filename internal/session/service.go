// Package session owns the playback queue for one listening session. It
// is the single writer of the queue store: user commands and player
// advancement are admitted one at a time and applied atomically, then a
// snapshot is fanned out to subscribers and pushed to the player
// timeline.
package session

import "github.com/fportier/upnext/internal/queue"

// Service defines the queue session contract.
type Service interface {
	// Commands. All validate first and apply all-or-nothing; a returned
	// error means the queue is unchanged.
	MoveItem(fromCombined, toCombined int) error
	RemoveItemByUID(uid string) error
	PlayNext(tracks []queue.Track, ctx *queue.Context) error
	AddToQueue(tracks []queue.Track) error
	SetContext(ctx queue.Context, tracks []queue.Track) error
	ClearTransientQueues() error

	// Queries. All return copies; mutating a result never touches the
	// session.
	VisibleQueue() []queue.Item
	QueueSnapshot() queue.Snapshot
	VisibleToCombined(visible int) (int, error)
	State() queue.State
	Context() *queue.Context

	// Event subscription
	Subscribe() *Subscription
	Unsubscribe(sub *Subscription)

	// Lifecycle
	Close() error
}
