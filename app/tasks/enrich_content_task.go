package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
)

var enrichKinds = []feed.ContentKind{feed.KindJob, feed.KindResult, feed.KindAdmission}

// EnrichContentTask replaces short syndication descriptions with the
// readable text of the announcement page itself. Records are picked up by
// extraction status, so interrupted batches resume on the next run.
type EnrichContentTask struct {
	Task
	FeedConfig       *feed.Config
	fetcher          *feed.Fetcher
	contentExtractor *feed.ContentExtractor
	recordStore      store.RecordStore
}

func NewEnrichContentTask(feedName string, feedConfig *feed.Config, fetcher *feed.Fetcher,
	contentExtractor *feed.ContentExtractor, recordStore store.RecordStore) *EnrichContentTask {
	return &EnrichContentTask{
		Task:             NewTask(TaskTypeEnrichContent, feedName),
		FeedConfig:       feedConfig,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		recordStore:      recordStore,
	}
}

func (t *EnrichContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	successCount := 0
	errorCount := 0

	for _, kind := range enrichKinds {
		keys, err := t.recordStore.GetKeysForExtraction(ctx, kind, t.FeedConfig.Settings.MaxItems)
		if err != nil {
			slog.Error("Failed to get records for extraction", "kind", string(kind), "error", err)
			errorCount++
			continue
		}

		for _, key := range keys {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := t.enrichRecord(ctx, kind, key); err != nil {
				slog.Error("Failed to extract content for record", "kind", string(kind), "key", key, "error", err)
				errorCount++

				if err := t.recordStore.UpdateExtractedContent(ctx, kind, key, "", feed.ExtractionFailed); err != nil {
					slog.Error("Failed to update content extraction status", "kind", string(kind), "key", key, "error", err)
				}
			} else {
				successCount++
			}
		}
	}

	if successCount == 0 && errorCount == 0 {
		slog.Debug("No records need content extraction", "feed", t.FeedName)
		return nil
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *EnrichContentTask) enrichRecord(ctx context.Context, kind feed.ContentKind, key string) error {
	data, err := t.fetcher.Run(ctx, key, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	if err != nil {
		return err
	}

	content, err := t.contentExtractor.Run(data)
	if err != nil {
		return err
	}

	return t.recordStore.UpdateExtractedContent(ctx, kind, key, content, feed.ExtractionSuccess)
}
