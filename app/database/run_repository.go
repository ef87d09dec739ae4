package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RunRepository = (*RunRepositoryImpl)(nil)

type RunRepositoryImpl struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

func (r *RunRepositoryImpl) StartRun(startedAt time.Time, triggeredBy string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO ingestion_runs (started_at, triggered_by)
		VALUES (?, ?)
	`, startedAt, triggeredBy)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	return id, nil
}

func (r *RunRepositoryImpl) FinishRun(run IngestionRun) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("run %d has no finish time", run.ID)
	}

	_, err := r.db.Exec(`
		UPDATE ingestion_runs
		SET finished_at = ?, feeds_attempted = ?, feeds_failed = ?,
		    items_merged = ?, items_skipped = ?, merge_errors = ?
		WHERE id = ?
	`, *run.FinishedAt, run.FeedsAttempted, run.FeedsFailed,
		run.ItemsMerged, run.ItemsSkipped, run.MergeErrors, run.ID)

	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

func (r *RunRepositoryImpl) GetLastRun() (*IngestionRun, error) {
	var run IngestionRun
	err := r.db.QueryRow(`
		SELECT id, started_at, finished_at, triggered_by,
		       feeds_attempted, feeds_failed, items_merged, items_skipped, merge_errors
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.TriggeredBy,
		&run.FeedsAttempted, &run.FeedsFailed, &run.ItemsMerged,
		&run.ItemsSkipped, &run.MergeErrors)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	return &run, nil
}

func (r *RunRepositoryImpl) GetRunTotals() (RunTotals, error) {
	var totals RunTotals
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(items_merged), 0),
		       COALESCE(SUM(items_skipped), 0),
		       COALESCE(SUM(merge_errors), 0)
		FROM ingestion_runs
	`).Scan(&totals.Runs, &totals.ItemsMerged, &totals.ItemsSkipped, &totals.MergeErrors)

	if err != nil {
		return RunTotals{}, fmt.Errorf("failed to get run totals: %w", err)
	}

	return totals, nil
}
