package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL string) error
	UpdateFetchSuccess(feedName, title string, fetchedAt time.Time) error
	UpdateFetchError(feedName string, fetchedAt time.Time, fetchError string) error
}

type RunRepository interface {
	StartRun(startedAt time.Time, triggeredBy string) (int64, error)
	FinishRun(run IngestionRun) error
	GetLastRun() (*IngestionRun, error)
	GetRunTotals() (RunTotals, error)
}
