package browse

import (
	"context"
	"testing"

	"github.com/fportier/upnext/internal/queue"
)

func catalog(ids ...string) []queue.Track {
	result := make([]queue.Track, len(ids))
	for i, id := range ids {
		result[i] = queue.Track{MediaID: id, Title: id}
	}
	return result
}

func TestStatic_RespectsBatchSize(t *testing.T) {
	s := NewStatic(catalog("a", "b", "c", "d", "e"), 2)

	got, err := s.FetchMore(context.Background(), queue.Context{}, nil)
	if err != nil {
		t.Fatalf("FetchMore: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tracks, want 2", len(got))
	}
	if got[0].MediaID != "a" || got[1].MediaID != "b" {
		t.Fatalf("got %v, want a, b", got)
	}
}

func TestStatic_SkipsExcluded(t *testing.T) {
	s := NewStatic(catalog("a", "b", "c"), 10)

	got, err := s.FetchMore(context.Background(), queue.Context{}, []string{"a", "c"})
	if err != nil {
		t.Fatalf("FetchMore: %v", err)
	}
	if len(got) != 1 || got[0].MediaID != "b" {
		t.Fatalf("got %v, want just b", got)
	}
}

func TestStatic_ExhaustedCatalog(t *testing.T) {
	s := NewStatic(catalog("a"), 10)

	got, err := s.FetchMore(context.Background(), queue.Context{}, []string{"a"})
	if err != nil {
		t.Fatalf("FetchMore: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}
