package state

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fportier/upnext/internal/queue"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := initSchema(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func testSnapshot() queue.Snapshot {
	added := time.UnixMilli(1700000000000)
	return queue.Snapshot{
		Items: []queue.Item{
			{
				Track:   queue.Track{MediaID: "/c.mp3", Title: "C", Artist: "X", Duration: 3 * time.Minute},
				UID:     "uid-c",
				Source:  queue.SourceMain,
				AddedAt: added,
			},
			{
				Track:    queue.Track{MediaID: "/d.mp3", Title: "D"},
				UID:      "uid-d",
				Source:   queue.SourcePlayNext,
				Isolated: true,
				AddedAt:  added,
			},
			{
				Track:   queue.Track{MediaID: "/a.mp3", Title: "A"},
				UID:     "uid-a",
				Source:  queue.SourceMain,
				AddedAt: added,
			},
		},
		State: queue.State{
			CurrentIndex: 0,
			TotalItems:   3,
			Context:      &queue.Context{Type: queue.ContextPlaylist, ID: "gym", Name: "Gym Mix"},
		},
	}
}

func TestGetQueue_Empty(t *testing.T) {
	db := setupTestDB(t)

	saved, err := getQueue(db)
	if err != nil {
		t.Fatalf("getQueue failed: %v", err)
	}
	if saved != nil {
		t.Errorf("expected nil queue on empty db, got %+v", saved)
	}
}

func TestSaveAndGetQueue(t *testing.T) {
	db := setupTestDB(t)

	if err := saveQueue(db, testSnapshot()); err != nil {
		t.Fatalf("saveQueue failed: %v", err)
	}

	saved, err := getQueue(db)
	if err != nil {
		t.Fatalf("getQueue failed: %v", err)
	}
	if saved == nil {
		t.Fatal("getQueue returned nil")
	}
	if !saved.HasCurrent {
		t.Error("HasCurrent should be true")
	}
	if len(saved.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(saved.Items))
	}
	if saved.Items[0].UID != "uid-c" || saved.Items[0].MediaID != "/c.mp3" {
		t.Errorf("first item = %+v, want uid-c", saved.Items[0])
	}
	if saved.Items[0].Duration != 3*time.Minute {
		t.Errorf("Duration = %v, want 3m", saved.Items[0].Duration)
	}
	if saved.Items[1].Source != queue.SourcePlayNext || !saved.Items[1].Isolated {
		t.Errorf("second item = %+v, want isolated play-next", saved.Items[1])
	}
	if saved.Context == nil || saved.Context.Name != "Gym Mix" {
		t.Errorf("Context = %+v, want Gym Mix", saved.Context)
	}
}

func TestSaveQueue_ReplacesPrevious(t *testing.T) {
	db := setupTestDB(t)

	if err := saveQueue(db, testSnapshot()); err != nil {
		t.Fatalf("first saveQueue failed: %v", err)
	}

	smaller := queue.Snapshot{
		Items: []queue.Item{
			{Track: queue.Track{MediaID: "/z.mp3"}, UID: "uid-z", Source: queue.SourceMain, AddedAt: time.Now()},
		},
		State: queue.State{CurrentIndex: -1, TotalItems: 1},
	}
	if err := saveQueue(db, smaller); err != nil {
		t.Fatalf("second saveQueue failed: %v", err)
	}

	saved, err := getQueue(db)
	if err != nil {
		t.Fatalf("getQueue failed: %v", err)
	}
	if len(saved.Items) != 1 || saved.Items[0].UID != "uid-z" {
		t.Errorf("Items = %+v, want single uid-z", saved.Items)
	}
	if saved.HasCurrent {
		t.Error("HasCurrent should be false")
	}
	if saved.Context != nil {
		t.Errorf("Context = %+v, want nil", saved.Context)
	}
}

func TestManager_RoundTripThroughFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upnext.db")

	mgr, err := OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := mgr.SaveQueueNow(testSnapshot()); err != nil {
		t.Fatalf("SaveQueueNow failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mgr, err = OpenPath(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer mgr.Close()

	saved, err := mgr.GetQueue()
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	if saved == nil || len(saved.Items) != 3 {
		t.Fatalf("saved = %+v, want 3 items", saved)
	}

	// A restored store recomposes and resumes where it left off.
	store := queue.NewStore()
	store.Restore(saved.Items, saved.HasCurrent, saved.Context)
	if cur := store.Current(); cur == nil || cur.MediaID != "/c.mp3" {
		t.Errorf("current = %v, want /c.mp3", cur)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
}

func TestManager_SaveQueueDebounces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "upnext.db")
	mgr, err := OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}

	// Burst of saves; Close flushes the pending one.
	mgr.SaveQueue(testSnapshot())
	mgr.SaveQueue(testSnapshot())
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mgr, err = OpenPath(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer mgr.Close()

	saved, err := mgr.GetQueue()
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	if saved == nil || len(saved.Items) != 3 {
		t.Fatalf("saved = %+v, want flushed snapshot", saved)
	}
}
