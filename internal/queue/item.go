package queue

import "time"

// Source identifies which logical queue an item belongs to.
type Source int

const (
	// SourceMain items come from the active browsing context
	// (playlist, album, ...) in that context's order.
	SourceMain Source = iota
	// SourcePlayNext items were queued with "play next" and run
	// immediately after the current track.
	SourcePlayNext
	// SourceUserQueue items were appended with "add to queue" and run
	// after the play-next block, before the remaining context items.
	SourceUserQueue
)

// String returns a display label for the source.
func (s Source) String() string {
	switch s {
	case SourcePlayNext:
		return "Play Next"
	case SourceUserQueue:
		return "Queue"
	default:
		return "Context"
	}
}

// Track describes a playable unit. MediaID is the identifier of the
// underlying media (a URI or library ID) and is not required to be unique
// within a queue.
type Track struct {
	MediaID  string
	Title    string
	Artist   string
	Duration time.Duration
}

// Item is one entry of the queue. UID is assigned at insertion and is
// unique for the lifetime of the queue even when the same track appears
// more than once.
//
// Isolated marks an entry that a user reorder or insertion disconnected
// from the deterministic order of its originating context; isolated
// entries survive context switches that replace the rest of the context
// segment.
type Item struct {
	Track

	UID      string
	Source   Source
	Isolated bool
	AddedAt  time.Time
}

// ContextType classifies the browsing context a queue was started from.
type ContextType string

const (
	ContextPlaylist   ContextType = "playlist"
	ContextAlbum      ContextType = "album"
	ContextLikedSongs ContextType = "liked_songs"
	ContextArtist     ContextType = "artist"
	ContextGenre      ContextType = "genre"
	ContextSearch     ContextType = "search"
	ContextDiscover   ContextType = "discover"
)

// Context names the source the context segment was derived from, shown as
// the "Playing from ..." affordance and used to fetch continuation tracks.
type Context struct {
	Type ContextType
	ID   string
	Name string
}

// State is a read-only summary of the queue, derived after every
// committed mutation.
type State struct {
	CurrentIndex   int // combined index of the current item, -1 if none
	PlayNextCount  int
	UserQueueCount int
	MainRemaining  int // upcoming context items, isolated ones included
	TotalItems     int // combined length, current item included
	Context        *Context
}

// HasCurrent reports whether a current item exists.
func (s State) HasCurrent() bool {
	return s.CurrentIndex >= 0
}

// Snapshot is an immutable copy of the combined order plus the derived
// state. Mutating a snapshot never affects the store it was taken from.
type Snapshot struct {
	Items []Item // combined order, current item first when present
	State State
}

// Current returns the current item, or nil if none.
func (s Snapshot) Current() *Item {
	if !s.State.HasCurrent() || len(s.Items) == 0 {
		return nil
	}
	item := s.Items[s.State.CurrentIndex]
	return &item
}

// Upcoming returns the visible list: every item after the current one.
func (s Snapshot) Upcoming() []Item {
	if !s.State.HasCurrent() {
		return s.Items
	}
	return s.Items[s.State.CurrentIndex+1:]
}
