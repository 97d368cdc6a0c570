package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/fportier/upnext/internal/db"
	"github.com/fportier/upnext/internal/queue"
)

// SavedQueue is the persisted form of a queue session.
type SavedQueue struct {
	Items      []queue.Item
	HasCurrent bool
	Context    *queue.Context
}

func getQueue(db *sql.DB) (*SavedQueue, error) {
	var hasCurrent bool
	var ctxType, ctxID, ctxName sql.NullString
	row := db.QueryRow(`SELECT has_current, context_type, context_id, context_name FROM queue_state WHERE id = 1`)
	err := row.Scan(&hasCurrent, &ctxType, &ctxID, &ctxName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT uid, media_id, title, artist, duration_ms, source, isolated, added_at
		FROM queue_items
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []queue.Item
	for rows.Next() {
		var it queue.Item
		var title, artist sql.NullString
		var durationMs, addedAt int64
		var source int

		err := rows.Scan(&it.UID, &it.MediaID, &title, &artist, &durationMs, &source, &it.Isolated, &addedAt)
		if err != nil {
			return nil, err
		}

		it.Title = dbutil.NullStringValue(title)
		it.Artist = dbutil.NullStringValue(artist)
		it.Duration = time.Duration(durationMs) * time.Millisecond
		it.Source = queue.Source(source)
		it.AddedAt = time.UnixMilli(addedAt)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	saved := &SavedQueue{
		Items:      items,
		HasCurrent: hasCurrent,
	}
	if ctxType.Valid {
		saved.Context = &queue.Context{
			Type: queue.ContextType(ctxType.String),
			ID:   dbutil.NullStringValue(ctxID),
			Name: dbutil.NullStringValue(ctxName),
		}
	}
	return saved, nil
}

func saveQueue(sqlDB *sql.DB, snap queue.Snapshot) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		_, err := tx.Exec(`DELETE FROM queue_items`)
		if err != nil {
			return err
		}

		var ctxType, ctxID, ctxName any
		if snap.State.Context != nil {
			ctxType = string(snap.State.Context.Type)
			ctxID = snap.State.Context.ID
			ctxName = snap.State.Context.Name
		}
		_, err = tx.Exec(`
			INSERT INTO queue_state (id, has_current, context_type, context_id, context_name)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				has_current = excluded.has_current,
				context_type = excluded.context_type,
				context_id = excluded.context_id,
				context_name = excluded.context_name
		`, snap.State.HasCurrent(), ctxType, ctxID, ctxName)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_items (position, uid, media_id, title, artist, duration_ms, source, isolated, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, it := range snap.Items {
			_, err = stmt.Exec(i, it.UID, it.MediaID, it.Title, it.Artist,
				it.Duration.Milliseconds(), int(it.Source), it.Isolated,
				it.AddedAt.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
