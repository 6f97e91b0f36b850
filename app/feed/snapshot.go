package feed

import (
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

type snapshotEntry struct {
	source    string
	items     []aggregate.RawItem
	err       error
	fetchedAt time.Time
}

// Snapshot holds the latest poll result of every feed. Each poll replaces the
// feed's previous entry; nothing is persisted. The version increases on every change.
type Snapshot struct {
	entries map[string]snapshotEntry
	version uint64
	mu      sync.RWMutex
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		entries: make(map[string]snapshotEntry),
	}
}

// Publish records the outcome of polling feed name. A non-nil err discards any items.
func (s *Snapshot) Publish(name, source string, items []aggregate.RawItem, err error, fetchedAt time.Time) {
	if err != nil {
		items = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = snapshotEntry{
		source:    source,
		items:     items,
		err:       err,
		fetchedAt: fetchedAt,
	}
	s.version++
}

func (s *Snapshot) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; ok {
		delete(s.entries, name)
		s.version++
	}
}

// Batches returns one batch per feed, ordered by feed name, and the version they belong to.
func (s *Snapshot) Batches() ([]aggregate.SourceBatch, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	batches := make([]aggregate.SourceBatch, 0, len(names))
	for _, name := range names {
		entry := s.entries[name]
		items := make([]aggregate.RawItem, len(entry.items))
		copy(items, entry.items)

		batches = append(batches, aggregate.SourceBatch{
			Name:  entry.source,
			Items: items,
			Err:   entry.err,
		})
	}

	return batches, s.version
}

func (s *Snapshot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// FetchedAt returns when feed name was last polled.
func (s *Snapshot) FetchedAt(name string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	return entry.fetchedAt, ok
}
