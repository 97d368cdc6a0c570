package browse

import (
	"context"

	"github.com/fportier/upnext/internal/queue"
)

// Verify Static implements Source at compile time.
var _ Source = (*Static)(nil)

// Static serves continuation tracks from a fixed catalog. It hands out
// at most batchSize tracks per fetch and never repeats a track the
// queue already holds.
type Static struct {
	catalog   []queue.Track
	batchSize int
}

// NewStatic creates a source over a fixed catalog.
func NewStatic(catalog []queue.Track, batchSize int) *Static {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Static{catalog: catalog, batchSize: batchSize}
}

func (s *Static) FetchMore(_ context.Context, _ queue.Context, excludeIDs []string) ([]queue.Track, error) {
	exclude := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = struct{}{}
	}

	var result []queue.Track
	for _, tr := range s.catalog {
		if _, ok := exclude[tr.MediaID]; ok {
			continue
		}
		result = append(result, tr)
		if len(result) >= s.batchSize {
			break
		}
	}
	return result, nil
}
