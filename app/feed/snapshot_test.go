package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

func TestSnapshotPublishAndBatches(t *testing.T) {
	s := NewSnapshot()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if s.Version() != 0 {
		t.Errorf("Expected version 0, got %d", s.Version())
	}

	s.Publish("detik", "detikcom", []aggregate.RawItem{{Title: "b"}}, nil, now)
	s.Publish("antara", "ANTARA", []aggregate.RawItem{{Title: "a"}}, nil, now)
	s.Publish("kompas", "Kompas", []aggregate.RawItem{{Title: "k"}}, errors.New("timeout"), now)

	batches, version := s.Batches()
	if version != 3 {
		t.Errorf("Expected version 3, got %d", version)
	}
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}

	if batches[0].Name != "ANTARA" || batches[1].Name != "detikcom" || batches[2].Name != "Kompas" {
		t.Errorf("Expected batches ordered by feed name, got %v, %v, %v", batches[0].Name, batches[1].Name, batches[2].Name)
	}
	if batches[2].Err == nil || len(batches[2].Items) != 0 {
		t.Error("Expected failed batch without items")
	}

	batches[0].Items[0].Title = "changed"
	again, _ := s.Batches()
	if again[0].Items[0].Title != "a" {
		t.Error("Expected batches to be copies")
	}
}

func TestSnapshotReplaceAndRemove(t *testing.T) {
	s := NewSnapshot()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Publish("antara", "ANTARA", []aggregate.RawItem{{Title: "lama"}}, nil, now)
	s.Publish("antara", "ANTARA", []aggregate.RawItem{{Title: "baru"}, {Title: "baru 2"}}, nil, now.Add(time.Minute))

	batches, _ := s.Batches()
	if len(batches) != 1 || len(batches[0].Items) != 2 {
		t.Fatalf("Expected the latest poll to replace the previous one, got %v", batches)
	}

	fetchedAt, ok := s.FetchedAt("antara")
	if !ok || !fetchedAt.Equal(now.Add(time.Minute)) {
		t.Errorf("Unexpected fetch time %v", fetchedAt)
	}

	before := s.Version()
	s.Remove("missing")
	if s.Version() != before {
		t.Error("Expected removing an unknown feed to keep the version")
	}

	s.Remove("antara")
	if s.Version() != before+1 {
		t.Error("Expected removal to bump the version")
	}
	if batches, _ := s.Batches(); len(batches) != 0 {
		t.Errorf("Expected no batches, got %d", len(batches))
	}
}
