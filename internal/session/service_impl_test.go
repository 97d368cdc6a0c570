package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fportier/upnext/internal/browse"
	"github.com/fportier/upnext/internal/player"
	"github.com/fportier/upnext/internal/queue"
)

func track(id string) queue.Track {
	return queue.Track{MediaID: id, Title: id}
}

func tracks(ids ...string) []queue.Track {
	result := make([]queue.Track, len(ids))
	for i, id := range ids {
		result[i] = track(id)
	}
	return result
}

func gymMix() queue.Context {
	return queue.Context{Type: queue.ContextPlaylist, ID: "gym", Name: "Gym Mix"}
}

// playingService starts a session where the first id is current and the
// rest are upcoming context items.
func playingService(t *testing.T, ids ...string) (Service, *player.Mock) {
	t.Helper()
	p := player.NewMock()
	svc := New(queue.NewStore(), p, nil, Options{})
	t.Cleanup(func() {
		_ = svc.Close()
		p.Close()
	})
	ctx := gymMix()
	require.NoError(t, svc.SetContext(ctx, tracks(ids...)))
	return svc, p
}

func mediaOrder(items []queue.Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].MediaID
	}
	return ids
}

// waitFor polls a subscription until the snapshot satisfies the
// condition or the timeout expires.
func waitFor(t *testing.T, sub *Subscription, cond func(queue.Snapshot) bool) queue.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.Updates:
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestService_PlayNextScenario(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")

	require.NoError(t, svc.PlayNext(tracks("D", "E"), nil))

	assert.Equal(t, []string{"D", "E", "A", "B"}, mediaOrder(svc.VisibleQueue()))
	snap := svc.QueueSnapshot()
	assert.Equal(t, []string{"C", "D", "E", "A", "B"}, mediaOrder(snap.Items))
	require.NotNil(t, snap.Current())
	assert.Equal(t, "C", snap.Current().MediaID)
	// Context untouched: the queue was not empty.
	require.NotNil(t, svc.Context())
	assert.Equal(t, "Gym Mix", svc.Context().Name)
}

func TestService_MoveScenario(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")
	require.NoError(t, svc.PlayNext(tracks("D", "E"), nil))

	// Move A (combined 3) into D's slot (combined 1).
	require.NoError(t, svc.MoveItem(3, 1))

	snap := svc.QueueSnapshot()
	assert.Equal(t, []string{"C", "A", "D", "E", "B"}, mediaOrder(snap.Items))
	moved := snap.Items[1]
	assert.Equal(t, queue.SourcePlayNext, moved.Source)
	assert.True(t, moved.Isolated)
}

func TestService_MoveItem_Invalid(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")

	var moveErr *queue.InvalidMoveError
	require.ErrorAs(t, svc.MoveItem(1, 1), &moveErr)
	require.ErrorAs(t, svc.MoveItem(0, 2), &moveErr)
	require.ErrorAs(t, svc.MoveItem(1, 9), &moveErr)
	// Nothing applied.
	assert.Equal(t, []string{"C", "A", "B"}, mediaOrder(svc.QueueSnapshot().Items))
}

func TestService_RemoveItemByUID(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")
	uid := svc.VisibleQueue()[0].UID

	require.NoError(t, svc.RemoveItemByUID(uid))

	for _, it := range svc.QueueSnapshot().Items {
		assert.NotEqual(t, uid, it.UID, "removed uid must not reappear")
	}

	// Second removal with the same uid.
	err := svc.RemoveItemByUID(uid)
	assert.ErrorIs(t, err, queue.ErrNotFound)
	assert.Equal(t, 2, svc.State().TotalItems)
}

func TestService_RemoveCurrentRejected(t *testing.T) {
	svc, _ := playingService(t, "C", "A")
	cur := svc.QueueSnapshot().Current()
	require.NotNil(t, cur)

	err := svc.RemoveItemByUID(cur.UID)

	assert.ErrorIs(t, err, queue.ErrIllegalOperation)
	assert.Equal(t, 2, svc.State().TotalItems)
}

func TestService_PlayNext_EmptyQueue(t *testing.T) {
	p := player.NewMock()
	svc := New(queue.NewStore(), p, nil, Options{})
	defer svc.Close()

	ctx := gymMix()
	require.NoError(t, svc.PlayNext(tracks("D"), &ctx))

	snap := svc.QueueSnapshot()
	require.NotNil(t, snap.Current())
	assert.Equal(t, "D", snap.Current().MediaID)
	// Empty queue adopts the supplied context.
	require.NotNil(t, svc.Context())
	assert.Equal(t, "Gym Mix", svc.Context().Name)
}

func TestService_AddToQueue_AfterPlayNext(t *testing.T) {
	svc, _ := playingService(t, "C", "A")
	require.NoError(t, svc.PlayNext(tracks("D"), nil))

	require.NoError(t, svc.AddToQueue(tracks("U")))

	assert.Equal(t, []string{"C", "D", "U", "A"}, mediaOrder(svc.QueueSnapshot().Items))
	st := svc.State()
	assert.Equal(t, 1, st.PlayNextCount)
	assert.Equal(t, 1, st.UserQueueCount)
}

func TestService_ClearTransientQueues(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")
	require.NoError(t, svc.PlayNext(tracks("D"), nil))
	require.NoError(t, svc.AddToQueue(tracks("U")))
	// Isolate A: [C, D, U, A, B] -> move A to the tail.
	require.NoError(t, svc.MoveItem(3, 4))

	require.NoError(t, svc.ClearTransientQueues())

	st := svc.State()
	assert.Zero(t, st.PlayNextCount)
	assert.Zero(t, st.UserQueueCount)
	snap := svc.QueueSnapshot()
	require.NotNil(t, snap.Current())
	assert.Equal(t, "C", snap.Current().MediaID)
	// The isolated item survives, the bound context item does not.
	assert.Equal(t, []string{"C", "A"}, mediaOrder(snap.Items))
	assert.True(t, snap.Items[1].Isolated)
}

func TestService_TimelinePushedOnCommit(t *testing.T) {
	svc, p := playingService(t, "C", "A", "B")

	require.NoError(t, svc.PlayNext(tracks("D"), nil))

	items, idx := p.LastApply()
	assert.Equal(t, []string{"C", "D", "A", "B"}, mediaOrder(items))
	assert.Equal(t, 0, idx)
}

func TestService_TimelinePushFailureKeepsCommit(t *testing.T) {
	svc, p := playingService(t, "C", "A")
	sub := svc.Subscribe()
	p.SetApplyError(errors.New("transport gone"))

	require.NoError(t, svc.PlayNext(tracks("D"), nil))

	// The mutation stands even though the push failed.
	assert.Equal(t, []string{"C", "D", "A"}, mediaOrder(svc.QueueSnapshot().Items))
	select {
	case e := <-sub.Errors:
		assert.Equal(t, "push timeline", e.Operation)
	case <-time.After(time.Second):
		t.Fatal("no error event delivered")
	}
}

func TestService_PlayerAdvance(t *testing.T) {
	svc, p := playingService(t, "C", "A", "B")
	sub := svc.Subscribe()

	p.EmitAdvance(1)

	snap := waitFor(t, sub, func(s queue.Snapshot) bool {
		return s.Current() != nil && s.Current().MediaID == "A"
	})
	assert.Equal(t, []string{"A", "B"}, mediaOrder(snap.Items))
}

func TestService_Refill_BelowLowWater(t *testing.T) {
	src := &browse.Mock{Tracks: tracks("X", "Y")}
	p := player.NewMock()
	svc := New(queue.NewStore(), p, src, Options{RefillLowWater: 3})
	defer svc.Close()
	sub := svc.Subscribe()

	// Two upcoming context items: already below the low-water mark.
	require.NoError(t, svc.SetContext(gymMix(), tracks("C", "A", "B")))

	snap := waitFor(t, sub, func(s queue.Snapshot) bool {
		return s.State.MainRemaining >= 4
	})
	assert.Equal(t, []string{"C", "A", "B", "X", "Y"}, mediaOrder(snap.Items))
	require.NotEmpty(t, src.Calls())
	assert.Equal(t, "Gym Mix", src.Calls()[0].Name)
}

func TestService_Refill_RepeatsAfterShortFetch(t *testing.T) {
	// One track per fetch: a single refill cannot reach the mark, so the
	// refill's own commit must trigger the next round.
	src := &browse.Mock{Tracks: tracks("X")}
	p := player.NewMock()
	svc := New(queue.NewStore(), p, src, Options{RefillLowWater: 3})
	defer svc.Close()
	sub := svc.Subscribe()

	require.NoError(t, svc.SetContext(gymMix(), tracks("C")))

	snap := waitFor(t, sub, func(s queue.Snapshot) bool {
		return s.State.MainRemaining >= 3
	})
	assert.Equal(t, 4, snap.State.TotalItems)
	assert.GreaterOrEqual(t, len(src.Calls()), 3)
}

func TestService_Refill_FailureLeavesQueue(t *testing.T) {
	src := &browse.Mock{Err: errors.New("catalog unreachable")}
	p := player.NewMock()
	svc := New(queue.NewStore(), p, src, Options{RefillLowWater: 3})
	defer svc.Close()
	sub := svc.Subscribe()

	require.NoError(t, svc.SetContext(gymMix(), tracks("C", "A")))

	select {
	case e := <-sub.Errors:
		assert.Equal(t, "fetch continuation", e.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("no error event delivered")
	}
	// Fail closed: the prior order is untouched.
	assert.Equal(t, []string{"C", "A"}, mediaOrder(svc.QueueSnapshot().Items))
}

func TestService_ConcurrentMoveAndAdvance(t *testing.T) {
	svc, p := playingService(t, "C", "A", "B", "X")
	sub := svc.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The move may lose the race against the advance and become
		// invalid; either outcome is a legal total order.
		_ = svc.MoveItem(2, 3)
	}()
	p.EmitAdvance(1)
	<-done

	snap := waitFor(t, sub, func(s queue.Snapshot) bool {
		return s.Current() != nil && s.Current().MediaID == "A"
	})
	// No torn merge: every item survives exactly once and the count
	// identity holds.
	st := snap.State
	assert.Equal(t, 3, st.TotalItems)
	assert.Equal(t,
		st.TotalItems-1,
		st.PlayNextCount+st.UserQueueCount+st.MainRemaining)
	assert.ElementsMatch(t, []string{"A", "B", "X"}, mediaOrder(snap.Items))
}

func TestService_SnapshotCountsInvariant(t *testing.T) {
	svc, _ := playingService(t, "C", "A", "B")
	require.NoError(t, svc.PlayNext(tracks("D", "E"), nil))
	require.NoError(t, svc.AddToQueue(tracks("U")))
	require.NoError(t, svc.MoveItem(4, 2))

	st := svc.State()
	assert.Equal(t, st.TotalItems-1,
		st.PlayNextCount+st.UserQueueCount+st.MainRemaining)
}
