package aggregate

import (
	"time"
)

func newsKey(r NewsRecord) string {
	return r.Title + "|" + r.PublishedAt.Format(time.RFC3339)
}

func eventKey(r EventRecord) string {
	return r.Title + "|" + r.Date.Format(time.RFC3339)
}

func quoteKey(r QuoteRecord) string {
	return r.Text + "|" + r.Date.Format(time.RFC3339)
}

// dedupe keeps one record per key: the one with the smallest rank. The winner
// does not depend on the order records arrived in.
func dedupe[T any](records []T, key func(T) string, rank func(T) string) []T {
	winners := make(map[string]int, len(records))
	out := make([]T, 0, len(records))

	for _, r := range records {
		k := key(r)
		i, seen := winners[k]
		if !seen {
			winners[k] = len(out)
			out = append(out, r)
			continue
		}
		if rank(r) < rank(out[i]) {
			out[i] = r
		}
	}

	return out
}

// newer orders by date descending, then by ID ascending.
func newer(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}

func capped[T any](records []T, limit int) []T {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
