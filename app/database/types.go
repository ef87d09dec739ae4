package database

import (
	"time"
)

type Feed struct {
	Name          string // Configuration feed identifier derived from filename
	URL           string
	Title         string // Feed's own title once fetched
	LastFetchedAt *time.Time
	LastError     string // Empty after a successful fetch
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IngestionRun is one complete pass of the scheduler over all configured
// feeds. FinishedAt stays nil while the run is in flight.
type IngestionRun struct {
	ID             int64
	StartedAt      time.Time
	FinishedAt     *time.Time
	TriggeredBy    string // "scheduled" or "manual"
	FeedsAttempted int
	FeedsFailed    int
	ItemsMerged    int
	ItemsSkipped   int
	MergeErrors    int
}

// RunTotals aggregates counters across all recorded runs.
type RunTotals struct {
	Runs         int
	ItemsMerged  int64
	ItemsSkipped int64
	MergeErrors  int64
}
