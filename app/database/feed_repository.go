package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ FeedRepository = (*FeedRepositoryImpl)(nil)

type FeedRepositoryImpl struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepositoryImpl {
	return &FeedRepositoryImpl{db: db}
}

func (r *FeedRepositoryImpl) UpsertFeed(feedName, feedURL string) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO feeds (name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			updated_at = excluded.updated_at
	`, feedName, feedURL, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

func (r *FeedRepositoryImpl) UpdateFetchSuccess(feedName, title string, fetchedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, last_fetched_at = ?, last_error = '', updated_at = ?
		WHERE name = ?
	`, title, fetchedAt, fetchedAt, feedName)

	if err != nil {
		return fmt.Errorf("failed to update fetch status: %w", err)
	}

	return nil
}

func (r *FeedRepositoryImpl) UpdateFetchError(feedName string, fetchedAt time.Time, fetchError string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_fetched_at = ?, last_error = ?, updated_at = ?
		WHERE name = ?
	`, fetchedAt, fetchError, fetchedAt, feedName)

	if err != nil {
		return fmt.Errorf("failed to update fetch error: %w", err)
	}

	return nil
}

func (r *FeedRepositoryImpl) GetFeed(feedName string) (*Feed, error) {
	var feed Feed
	err := r.db.QueryRow(`
		SELECT name, url, title, last_fetched_at, last_error, created_at, updated_at
		FROM feeds
		WHERE name = ?
	`, feedName).Scan(&feed.Name, &feed.URL, &feed.Title,
		&feed.LastFetchedAt, &feed.LastError, &feed.CreatedAt, &feed.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return &feed, nil
}

func (r *FeedRepositoryImpl) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}
