package queue

import (
	"time"

	"github.com/google/uuid"
)

// Store is the authoritative holder of the combined queue order. It keeps
// the invariant:
//
//	[current] ++ play-next (insertion order) ++ user-queue (insertion
//	order) ++ remaining context items (context order)
//
// The store performs no locking of its own; the session serializes all
// writes and readers only ever see copies via Snapshot.
type Store struct {
	items      []Item // combined order, items[0] is current when hasCurrent
	hasCurrent bool
	context    *Context
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Restore replaces the store content from a persisted snapshot. Items must
// already be in combined order; the composer re-establishes segment order
// in case the persisted copy predates a rule change.
func (s *Store) Restore(items []Item, hasCurrent bool, ctx *Context) {
	s.items = make([]Item, len(items))
	copy(s.items, items)
	s.hasCurrent = hasCurrent && len(items) > 0
	s.context = copyContext(ctx)
	s.compose()
}

// Len returns the combined length, current item included.
func (s *Store) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the store holds no items at all.
func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// CurrentIndex returns the combined index of the current item, -1 if none.
func (s *Store) CurrentIndex() int {
	if !s.hasCurrent {
		return -1
	}
	return 0
}

// Current returns a copy of the current item, or nil if none.
func (s *Store) Current() *Item {
	if !s.hasCurrent || len(s.items) == 0 {
		return nil
	}
	item := s.items[0]
	return &item
}

// Context returns a copy of the active playback context, or nil.
func (s *Store) Context() *Context {
	return copyContext(s.context)
}

// SetContextOnly records a new context without touching the items. Used
// when the first play-next lands on an empty queue.
func (s *Store) SetContextOnly(ctx *Context) {
	s.context = copyContext(ctx)
}

// Insert creates items for the given tracks with the given source and
// splices them in so the first one lands at the given combined position.
// The position must fall inside the destination source's segment span,
// otherwise an InvalidPositionError is returned and nothing changes.
func (s *Store) Insert(tracks []Track, source Source, position int) error {
	lo, hi := s.segmentSpan(source)
	if position < lo || position > hi {
		return &InvalidPositionError{Position: position, Max: hi}
	}
	if len(tracks) == 0 {
		return nil
	}

	now := time.Now()
	batch := make([]Item, len(tracks))
	for i, t := range tracks {
		batch[i] = Item{
			Track:   t,
			UID:     uuid.NewString(),
			Source:  source,
			AddedAt: now,
		}
	}

	tail := make([]Item, len(s.items[position:]))
	copy(tail, s.items[position:])
	s.items = append(s.items[:position], append(batch, tail...)...)
	s.compose()
	return nil
}

// Remove deletes the item with the given uid. Returns ErrNotFound if no
// item carries that uid; removal is never a silent no-op.
func (s *Store) Remove(uid string) error {
	for i := range s.items {
		if s.items[i].UID == uid {
			if s.hasCurrent && i == 0 {
				s.hasCurrent = false
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.compose()
			return nil
		}
	}
	return ErrNotFound
}

// Contains reports whether an item with the given uid exists and whether
// it is the current item.
func (s *Store) Contains(uid string) (found, current bool) {
	for i := range s.items {
		if s.items[i].UID == uid {
			return true, s.hasCurrent && i == 0
		}
	}
	return false, false
}

// Move relocates one item between combined positions. The moved item is
// relabeled to the destination segment's source when it crosses a segment
// boundary and is always marked isolated: a user reorder disconnects it
// from its originating context order.
func (s *Store) Move(from, to int) error {
	n := len(s.items)
	switch {
	case from < 0 || from >= n:
		return &InvalidMoveError{From: from, To: to, Reason: "from index out of range"}
	case to < 0 || to >= n:
		return &InvalidMoveError{From: from, To: to, Reason: "to index out of range"}
	case from == to:
		return &InvalidMoveError{From: from, To: to, Reason: "indices are equal"}
	case from == s.CurrentIndex() || to == s.CurrentIndex():
		return &InvalidMoveError{From: from, To: to, Reason: "cannot move the current item"}
	}

	item := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	tail := make([]Item, len(s.items[to:]))
	copy(tail, s.items[to:])
	s.items = append(s.items[:to], append([]Item{item}, tail...)...)

	moved := &s.items[to]
	moved.Source = s.destinationSource(to, moved.Source)
	moved.Isolated = true
	s.compose()
	return nil
}

// Advance drops the current item and promotes the next combined item.
// Returns the new current item, or nil when the queue ran out. Played
// items are not retained; skip-previous history lives elsewhere.
func (s *Store) Advance() *Item {
	if s.hasCurrent && len(s.items) > 0 {
		s.items = s.items[1:]
	}
	if len(s.items) == 0 {
		s.hasCurrent = false
		return nil
	}
	s.hasCurrent = true
	item := s.items[0]
	return &item
}

// EnsureCurrent promotes the first item to current if nothing is playing.
// Returns the current item, or nil if the store is empty.
func (s *Store) EnsureCurrent() *Item {
	if len(s.items) == 0 {
		return nil
	}
	s.hasCurrent = true
	item := s.items[0]
	return &item
}

// SetContext switches the active context: non-isolated context items are
// replaced by the given tracks while play-next, user-queue and isolated
// entries stay where they are. The current item keeps playing regardless
// of where it came from.
func (s *Store) SetContext(ctx *Context, tracks []Track) {
	start := 0
	if s.hasCurrent {
		start = 1
	}

	kept := s.items[:start:start]
	for _, it := range s.items[start:] {
		if it.Source != SourceMain || it.Isolated {
			kept = append(kept, it)
		}
	}

	now := time.Now()
	for _, t := range tracks {
		kept = append(kept, Item{
			Track:   t,
			UID:     uuid.NewString(),
			Source:  SourceMain,
			AddedAt: now,
		})
	}

	s.items = kept
	s.context = copyContext(ctx)
	s.compose()
}

// ClearTransient removes all play-next and user-queue items and all
// non-isolated context items. The current item and isolated context items
// survive.
func (s *Store) ClearTransient() {
	start := 0
	if s.hasCurrent {
		start = 1
	}
	kept := s.items[:start:start]
	for _, it := range s.items[start:] {
		if it.Source == SourceMain && it.Isolated {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.compose()
}

// NonIsolatedMainRemaining counts upcoming context items still bound to
// the context order, the low-water input for continuation fetches.
func (s *Store) NonIsolatedMainRemaining() int {
	count := 0
	for _, it := range s.upcoming() {
		if it.Source == SourceMain && !it.Isolated {
			count++
		}
	}
	return count
}

// MediaIDs returns the media ids of every item, used to exclude
// already-queued tracks from continuation fetches.
func (s *Store) MediaIDs() []string {
	ids := make([]string, len(s.items))
	for i := range s.items {
		ids[i] = s.items[i].MediaID
	}
	return ids
}

// Snapshot returns an immutable copy of the combined order plus the
// derived state. Callers may keep or mutate the copy freely.
func (s *Store) Snapshot() Snapshot {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, State: s.State()}
}

// State derives the read-only queue summary.
func (s *Store) State() State {
	st := State{
		CurrentIndex: s.CurrentIndex(),
		TotalItems:   len(s.items),
		Context:      copyContext(s.context),
	}
	for _, it := range s.upcoming() {
		switch it.Source {
		case SourcePlayNext:
			st.PlayNextCount++
		case SourceUserQueue:
			st.UserQueueCount++
		case SourceMain:
			st.MainRemaining++
		}
	}
	return st
}

func (s *Store) upcoming() []Item {
	if s.hasCurrent && len(s.items) > 0 {
		return s.items[1:]
	}
	return s.items
}

// segmentSpan returns the inclusive range of combined positions at which
// an insert for the given source may start.
func (s *Store) segmentSpan(source Source) (lo, hi int) {
	st := s.State()
	base := 0
	if s.hasCurrent {
		base = 1
	}
	switch source {
	case SourcePlayNext:
		return base, base + st.PlayNextCount
	case SourceUserQueue:
		lo = base + st.PlayNextCount
		return lo, lo + st.UserQueueCount
	default:
		lo = base + st.PlayNextCount + st.UserQueueCount
		return lo, len(s.items)
	}
}

// destinationSource clamps an item's source between the segments of its
// new neighbors so the segment ordering invariant keeps holding. An item
// dropped strictly inside a foreign segment adopts that segment's source;
// one dropped at a seam it already borders keeps its own.
func (s *Store) destinationSource(pos int, own Source) Source {
	loRank, hiRank := 0, segRank(SourceMain)
	if prev := pos - 1; prev >= 0 && prev != s.CurrentIndex() {
		loRank = segRank(s.items[prev].Source)
	}
	if next := pos + 1; next < len(s.items) {
		hiRank = segRank(s.items[next].Source)
	}
	rank := segRank(own)
	if rank < loRank {
		rank = loRank
	}
	if rank > hiRank {
		rank = hiRank
	}
	return rankSource(rank)
}

// compose re-establishes the segment ordering invariant: a stable
// partition of the upcoming items into play-next, user-queue and context
// segments. Deterministic and idempotent; calling it on an already
// composed store changes nothing.
func (s *Store) compose() {
	start := 0
	if s.hasCurrent && len(s.items) > 0 {
		start = 1
	}

	var playNext, userQueue, main []Item
	for _, it := range s.items[start:] {
		switch it.Source {
		case SourcePlayNext:
			playNext = append(playNext, it)
		case SourceUserQueue:
			userQueue = append(userQueue, it)
		default:
			main = append(main, it)
		}
	}

	composed := s.items[:start:start]
	composed = append(composed, playNext...)
	composed = append(composed, userQueue...)
	composed = append(composed, main...)
	s.items = composed
}

func segRank(s Source) int {
	switch s {
	case SourcePlayNext:
		return 0
	case SourceUserQueue:
		return 1
	default:
		return 2
	}
}

func rankSource(rank int) Source {
	switch rank {
	case 0:
		return SourcePlayNext
	case 1:
		return SourceUserQueue
	default:
		return SourceMain
	}
}

func copyContext(ctx *Context) *Context {
	if ctx == nil {
		return nil
	}
	c := *ctx
	return &c
}
