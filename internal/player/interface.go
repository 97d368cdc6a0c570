package player

import "github.com/fportier/upnext/internal/queue"

// Interface defines the transport contract the queue engine consumes.
// The engine pushes the combined order whenever it changes structurally;
// the player reports timeline advancement through AdvanceChan. Audio
// decoding, output and seek live entirely behind this boundary.
type Interface interface {
	// ApplyOrder replaces the player's timeline with the given combined
	// order, positioned at startIndex (-1 when nothing is current).
	ApplyOrder(items []queue.Item, startIndex int) error

	// CurrentIndex returns the player's current timeline position.
	CurrentIndex() int

	// AdvanceChan fires with the new timeline index each time the player
	// moves to the next entry on its own.
	AdvanceChan() <-chan int

	// Done is closed when the player shuts down.
	Done() <-chan struct{}
}

// Verify Manual implements Interface at compile time.
var _ Interface = (*Manual)(nil)
