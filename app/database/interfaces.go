package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)
	GetFeedsDue(now time.Time) ([]string, error)

	UpsertFeed(feedName, feedURL, source string) error
	RecordFetchSuccess(feedName, title string, itemCount int, fetchedAt, nextFetch time.Time) error
	RecordFetchFailure(feedName, fetchErr string, fetchedAt, nextFetch time.Time) error
	ScheduleNow(feedName string) error
	DeleteFeed(feedName string) error
}
