// Package state persists the queue between runs. The engine itself is
// in-memory; on startup the saved combined order, current item and
// context are loaded back and handed to a fresh store.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fportier/upnext/internal/queue"
)

const (
	appName      = "upnext"
	dbFileName   = "upnext.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the sqlite handle and debounces queue saves so a burst of
// drag moves results in a single write.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *queue.Snapshot
}

// Open opens the database at the default XDG data location.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Manager, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close flushes any pending save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = saveQueue(m.db, *pending)
	}

	return m.db.Close()
}

// DB exposes the handle for callers that share the database.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// SaveQueue schedules a debounced write of the snapshot. The latest
// snapshot of a burst wins.
func (m *Manager) SaveQueue(snap queue.Snapshot) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &snap

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveQueue(m.db, *pending)
		}
	})
}

// SaveQueueNow writes the snapshot immediately, bypassing the debounce.
func (m *Manager) SaveQueueNow(snap queue.Snapshot) error {
	return saveQueue(m.db, snap)
}

// GetQueue loads the saved queue, or nil if none was saved.
func (m *Manager) GetQueue() (*SavedQueue, error) {
	return getQueue(m.db)
}
