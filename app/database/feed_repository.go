package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type feedRepository struct {
	db  *DB
	now func() time.Time
}

func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db, now: time.Now}
}

const feedColumns = `name, url, source, title, last_fetched_at, next_fetch_at, last_error, item_count, created_at, updated_at`

func (r *feedRepository) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, feedName)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *feedRepository) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	feeds := []Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feeds: %w", err)
	}

	return feeds, nil
}

func (r *feedRepository) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

// GetFeedsDue returns feeds never fetched or whose next fetch time has passed.
func (r *feedRepository) GetFeedsDue(now time.Time) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT name FROM feeds
		WHERE next_fetch_at IS NULL OR next_fetch_at <= ?
		ORDER BY name
	`, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query due feeds: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan feed name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (r *feedRepository) UpsertFeed(feedName, feedURL, source string) error {
	now := formatTime(r.now())

	_, err := r.db.Exec(`
		INSERT INTO feeds (name, url, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			source = excluded.source,
			next_fetch_at = CASE WHEN feeds.url = excluded.url THEN feeds.next_fetch_at ELSE NULL END,
			updated_at = excluded.updated_at
	`, feedName, feedURL, source, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

func (r *feedRepository) RecordFetchSuccess(feedName, title string, itemCount int, fetchedAt, nextFetch time.Time) error {
	return r.update(feedName, `
		UPDATE feeds
		SET title = ?, item_count = ?, last_error = '', last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, title, itemCount, formatTime(fetchedAt), formatTime(nextFetch), formatTime(r.now()), feedName)
}

func (r *feedRepository) RecordFetchFailure(feedName, fetchErr string, fetchedAt, nextFetch time.Time) error {
	return r.update(feedName, `
		UPDATE feeds
		SET last_error = ?, item_count = 0, last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, fetchErr, formatTime(fetchedAt), formatTime(nextFetch), formatTime(r.now()), feedName)
}

// ScheduleNow makes the feed due on the next scheduler tick.
func (r *feedRepository) ScheduleNow(feedName string) error {
	return r.update(feedName, `UPDATE feeds SET next_fetch_at = NULL, updated_at = ? WHERE name = ?`,
		formatTime(r.now()), feedName)
}

func (r *feedRepository) DeleteFeed(feedName string) error {
	return r.update(feedName, `DELETE FROM feeds WHERE name = ?`, feedName)
}

func (r *feedRepository) update(feedName, query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update feed %s: %w", feedName, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update feed %s: %w", feedName, err)
	}
	if n == 0 {
		return fmt.Errorf("feed %s: %w", feedName, ErrFeedNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*Feed, error) {
	var (
		feed                   Feed
		lastFetched, nextFetch sql.NullString
		createdAt, updatedAt   string
	)

	err := s.Scan(&feed.Name, &feed.URL, &feed.Source, &feed.Title, &lastFetched, &nextFetch,
		&feed.LastError, &feed.ItemCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	feed.LastFetchedAt = parseNullTime(lastFetched)
	feed.NextFetchAt = parseNullTime(nextFetch)
	feed.CreatedAt = parseTime(createdAt)
	feed.UpdatedAt = parseTime(updatedAt)

	return &feed, nil
}

// Timestamps are stored as fixed-width UTC text so they compare correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
