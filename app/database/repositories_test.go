package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open state database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestFeedRepository_UpsertAndGet(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	if err := repo.UpsertFeed("test-feed", "https://example.gov/feed.xml"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("test-feed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed == nil {
		t.Fatal("Expected feed to exist")
	}
	if feed.URL != "https://example.gov/feed.xml" {
		t.Errorf("Expected stored URL, got: %s", feed.URL)
	}
	if feed.LastFetchedAt != nil {
		t.Error("Expected no fetch time before first fetch")
	}

	// Upserting the same name updates in place
	if err := repo.UpsertFeed("test-feed", "https://example.gov/changed.xml"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err = repo.GetFeed("test-feed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.URL != "https://example.gov/changed.xml" {
		t.Errorf("Expected updated URL, got: %s", feed.URL)
	}

	count, err := repo.GetFeedCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 feed, got: %d", count)
	}
}

func TestFeedRepository_GetFeedNotFound(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feed, err := repo.GetFeed("missing")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed != nil {
		t.Error("Expected nil for unknown feed")
	}
}

func TestFeedRepository_FetchStateTransitions(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	if err := repo.UpsertFeed("test-feed", "https://example.gov/feed.xml"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateFetchError("test-feed", fetchedAt, "HTTP error: 500"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("test-feed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.LastError != "HTTP error: 500" {
		t.Errorf("Expected recorded fetch error, got: %q", feed.LastError)
	}
	if feed.LastFetchedAt == nil {
		t.Fatal("Expected fetch time to be recorded")
	}

	// A successful fetch clears the error
	if err := repo.UpdateFetchSuccess("test-feed", "Sarkari Notices", fetchedAt.Add(time.Minute)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err = repo.GetFeed("test-feed")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.LastError != "" {
		t.Errorf("Expected error cleared after success, got: %q", feed.LastError)
	}
	if feed.Title != "Sarkari Notices" {
		t.Errorf("Expected feed title recorded, got: %q", feed.Title)
	}
}

func TestRunRepository_Lifecycle(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	startedAt := time.Now().UTC().Truncate(time.Second)
	runID, err := repo.StartRun(startedAt, "manual")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if runID == 0 {
		t.Fatal("Expected a run id")
	}

	run, err := repo.GetLastRun()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run == nil {
		t.Fatal("Expected a run")
	}
	if run.FinishedAt != nil {
		t.Error("Expected in-flight run to have no finish time")
	}
	if run.TriggeredBy != "manual" {
		t.Errorf("Expected trigger 'manual', got: %s", run.TriggeredBy)
	}

	finishedAt := startedAt.Add(time.Minute)
	err = repo.FinishRun(IngestionRun{
		ID:             runID,
		FinishedAt:     &finishedAt,
		FeedsAttempted: 3,
		FeedsFailed:    1,
		ItemsMerged:    10,
		ItemsSkipped:   2,
		MergeErrors:    1,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	run, err = repo.GetLastRun()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run.FinishedAt == nil {
		t.Fatal("Expected finished run to have a finish time")
	}
	if run.FeedsAttempted != 3 || run.FeedsFailed != 1 {
		t.Errorf("Expected persisted feed counters, got: %d/%d", run.FeedsAttempted, run.FeedsFailed)
	}
	if run.ItemsMerged != 10 || run.ItemsSkipped != 2 || run.MergeErrors != 1 {
		t.Errorf("Expected persisted item counters, got: %d/%d/%d",
			run.ItemsMerged, run.ItemsSkipped, run.MergeErrors)
	}
}

func TestRunRepository_FinishRunRequiresFinishTime(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	if err := repo.FinishRun(IngestionRun{ID: 1}); err == nil {
		t.Error("Expected error for run without finish time")
	}
}

func TestRunRepository_Totals(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	totals, err := repo.GetRunTotals()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if totals.Runs != 0 {
		t.Errorf("Expected 0 runs on empty database, got: %d", totals.Runs)
	}

	for i := 0; i < 2; i++ {
		startedAt := time.Now().UTC()
		runID, err := repo.StartRun(startedAt, "scheduled")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		finishedAt := startedAt.Add(time.Second)
		err = repo.FinishRun(IngestionRun{
			ID:          runID,
			FinishedAt:  &finishedAt,
			ItemsMerged: 5,
			MergeErrors: 1,
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	totals, err = repo.GetRunTotals()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if totals.Runs != 2 {
		t.Errorf("Expected 2 runs, got: %d", totals.Runs)
	}
	if totals.ItemsMerged != 10 {
		t.Errorf("Expected 10 items merged in total, got: %d", totals.ItemsMerged)
	}
	if totals.MergeErrors != 2 {
		t.Errorf("Expected 2 merge errors in total, got: %d", totals.MergeErrors)
	}
}

func TestRunRepository_GetLastRunEmpty(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run, err := repo.GetLastRun()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run != nil {
		t.Error("Expected nil on empty database")
	}
}
