package session

import (
	"context"
	"sync"

	"github.com/fportier/upnext/internal/browse"
	"github.com/fportier/upnext/internal/player"
	"github.com/fportier/upnext/internal/queue"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// Options tunes session behavior.
type Options struct {
	// RefillLowWater is the number of upcoming non-isolated context
	// items below which a continuation fetch is triggered. Zero disables
	// refilling.
	RefillLowWater int
}

type serviceImpl struct {
	mu sync.RWMutex

	store  *queue.Store
	player player.Interface
	source browse.Source
	opts   Options

	subs   []*Subscription
	subsMu sync.RWMutex

	refillMu  sync.Mutex
	refilling bool

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates a queue session around the given store. The source may be
// nil, in which case the context segment is never refilled.
func New(store *queue.Store, p player.Interface, source browse.Source, opts Options) Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		store:  store,
		player: p,
		source: source,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	go s.watchAdvance()
	return s
}

// MoveItem relocates one upcoming item between combined positions.
func (s *serviceImpl) MoveItem(fromCombined, toCombined int) error {
	s.mu.Lock()
	if err := s.store.Move(fromCombined, toCombined); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// RemoveItemByUID removes one upcoming item. The current item cannot be
// removed here; stopping what is playing is a transport operation.
func (s *serviceImpl) RemoveItemByUID(uid string) error {
	s.mu.Lock()
	found, current := s.store.Contains(uid)
	switch {
	case !found:
		s.mu.Unlock()
		return queue.ErrNotFound
	case current:
		s.mu.Unlock()
		return queue.ErrIllegalOperation
	}
	if err := s.store.Remove(uid); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// PlayNext inserts tracks ahead of all other upcoming items; a second
// play-next lands ahead of the first, so the most recent request plays
// soonest. On an empty queue the first track starts playing and the
// supplied context is adopted; otherwise the context is left alone.
func (s *serviceImpl) PlayNext(tracks []queue.Track, ctx *queue.Context) error {
	s.mu.Lock()
	wasEmpty := s.store.IsEmpty()
	position := 0
	if s.store.CurrentIndex() >= 0 {
		position = 1
	}
	if err := s.store.Insert(tracks, queue.SourcePlayNext, position); err != nil {
		s.mu.Unlock()
		return err
	}
	if wasEmpty {
		s.store.EnsureCurrent()
		s.store.SetContextOnly(ctx)
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// AddToQueue appends tracks after existing user-queue items.
func (s *serviceImpl) AddToQueue(tracks []queue.Track) error {
	s.mu.Lock()
	wasEmpty := s.store.IsEmpty()
	st := s.store.State()
	position := st.PlayNextCount + st.UserQueueCount
	if st.HasCurrent() {
		position++
	}
	if err := s.store.Insert(tracks, queue.SourceUserQueue, position); err != nil {
		s.mu.Unlock()
		return err
	}
	if wasEmpty {
		s.store.EnsureCurrent()
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// SetContext switches the browsing context, replacing the non-isolated
// context segment while play-next, user-queue and isolated items stay.
func (s *serviceImpl) SetContext(ctx queue.Context, tracks []queue.Track) error {
	s.mu.Lock()
	s.store.SetContext(&ctx, tracks)
	s.store.EnsureCurrent()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// ClearTransientQueues drops play-next, user-queue and non-isolated
// context items; the current item and isolated items survive.
func (s *serviceImpl) ClearTransientQueues() error {
	s.mu.Lock()
	s.store.ClearTransient()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
	return nil
}

// VisibleQueue returns the upcoming items, current item excluded.
func (s *serviceImpl) VisibleQueue() []queue.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot().Upcoming()
}

// QueueSnapshot returns the full combined order plus derived state.
func (s *serviceImpl) QueueSnapshot() queue.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot()
}

// VisibleToCombined translates a position in the visible list to the
// combined order.
func (s *serviceImpl) VisibleToCombined(visible int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queue.VisibleToCombined(visible, s.store.State())
}

// State returns the derived queue summary.
func (s *serviceImpl) State() queue.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.State()
}

// Context returns the active playback context, or nil.
func (s *serviceImpl) Context() *queue.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Context()
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Unsubscribe removes and closes a subscription.
func (s *serviceImpl) Unsubscribe(sub *Subscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close shuts down the session.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
	return nil
}

// watchAdvance routes player advancement through the same serialized
// path as user commands, so an in-flight reorder and a track change are
// applied in some total admission order, never interleaved.
func (s *serviceImpl) watchAdvance() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.player.Done():
			return
		case _, ok := <-s.player.AdvanceChan():
			if !ok {
				return
			}
			s.handleAdvance()
		}
	}
}

func (s *serviceImpl) handleAdvance() {
	s.mu.Lock()
	s.store.Advance()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(snap)
}

// commitLocked finalizes a mutation while the write lock is held: it
// takes the post-mutation snapshot, publishes it and re-anchors the
// player timeline. Publishing under the lock keeps snapshot delivery in
// commit order; the sends themselves never block.
func (s *serviceImpl) commitLocked() queue.Snapshot {
	snap := s.store.Snapshot()
	s.publish(snap)
	if err := s.player.ApplyOrder(snap.Items, snap.State.CurrentIndex); err != nil {
		// The committed order stands; the push is retried on the next
		// commit. Fail closed, report, move on.
		s.publishError(ErrorEvent{Operation: "push timeline", Err: err})
	}
	return snap
}

// afterCommit runs the post-commit work that must not hold the write
// lock.
func (s *serviceImpl) afterCommit(snap queue.Snapshot) {
	s.maybeRefill(snap)
}

func (s *serviceImpl) publish(snap queue.Snapshot) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.send(snap)
	}
}

func (s *serviceImpl) publishError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}

// maybeRefill asks the browsing collaborator for continuation tracks
// when the non-isolated context segment runs below the low-water mark.
// The fetch happens outside the lock; a failure leaves the queue alone.
func (s *serviceImpl) maybeRefill(snap queue.Snapshot) {
	if s.source == nil || s.opts.RefillLowWater <= 0 || snap.State.Context == nil {
		return
	}
	remaining := 0
	for _, it := range snap.Upcoming() {
		if it.Source == queue.SourceMain && !it.Isolated {
			remaining++
		}
	}
	if remaining >= s.opts.RefillLowWater {
		return
	}

	s.refillMu.Lock()
	if s.refilling {
		s.refillMu.Unlock()
		return
	}
	s.refilling = true
	s.refillMu.Unlock()

	go s.refill(*snap.State.Context, mediaIDs(snap.Items))
}

func (s *serviceImpl) refill(pc queue.Context, excludeIDs []string) {
	snap, committed := s.refillOnce(pc, excludeIDs)
	if !committed {
		return
	}
	// A short fetch may leave the segment still below the mark; check
	// again now that the in-flight flag is down.
	s.maybeRefill(snap)
}

func (s *serviceImpl) refillOnce(pc queue.Context, excludeIDs []string) (queue.Snapshot, bool) {
	defer func() {
		s.refillMu.Lock()
		s.refilling = false
		s.refillMu.Unlock()
	}()

	tracks, err := s.source.FetchMore(s.ctx, pc, excludeIDs)
	if err != nil {
		s.publishError(ErrorEvent{Operation: "fetch continuation", Err: err})
		return queue.Snapshot{}, false
	}
	if len(tracks) == 0 {
		return queue.Snapshot{}, false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return queue.Snapshot{}, false
	}
	err = s.store.Insert(tracks, queue.SourceMain, s.store.Len())
	if err != nil {
		s.mu.Unlock()
		s.publishError(ErrorEvent{Operation: "fetch continuation", Err: err})
		return queue.Snapshot{}, false
	}
	snap := s.commitLocked()
	s.mu.Unlock()
	return snap, true
}

func mediaIDs(items []queue.Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].MediaID
	}
	return ids
}
