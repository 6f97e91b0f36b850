package database

import (
	"time"
)

// Feed is the fetch status of one configured feed. Items themselves are never stored.
type Feed struct {
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Title         string     `json:"title"`
	LastFetchedAt *time.Time `json:"lastFetchedAt"`
	NextFetchAt   *time.Time `json:"nextFetchAt"`
	LastError     string     `json:"lastError,omitempty"`
	ItemCount     int        `json:"itemCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
