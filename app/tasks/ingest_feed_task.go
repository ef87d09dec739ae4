package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sarkarihub/sarkarihub/app/database"
	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
)

// IngestFeedTask runs the full pipeline for one source: fetch, parse, then
// per item classify, extract dates and upsert. Items are processed in
// document order; one item's failure never aborts the rest of the feed.
type IngestFeedTask struct {
	Task
	FeedConfig  *feed.Config
	fetcher     *feed.Fetcher
	parser      *feed.Parser
	classifier  *feed.Classifier
	builder     *feed.RecordBuilder
	feedRepo    database.FeedRepository
	recordStore store.RecordStore
	counters    *RunCounters
	runWG       *sync.WaitGroup
	completed   sync.Once
}

func NewIngestFeedTask(feedName string, feedConfig *feed.Config, fetcher *feed.Fetcher,
	parser *feed.Parser, classifier *feed.Classifier, builder *feed.RecordBuilder,
	feedRepo database.FeedRepository, recordStore store.RecordStore,
	counters *RunCounters, runWG *sync.WaitGroup) *IngestFeedTask {
	return &IngestFeedTask{
		Task:        NewTask(TaskTypeIngestFeed, feedName),
		FeedConfig:  feedConfig,
		fetcher:     fetcher,
		parser:      parser,
		classifier:  classifier,
		builder:     builder,
		feedRepo:    feedRepo,
		recordStore: recordStore,
		counters:    counters,
		runWG:       runWG,
	}
}

// Complete records the task's final outcome and releases its slot in the
// run, after all retries are spent.
func (t *IngestFeedTask) Complete(err error) {
	t.completed.Do(func() {
		if err != nil {
			t.counters.FeedsFailed.Add(1)
		}
		t.runWG.Done()
	})
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Run(ctx, t.FeedConfig.URL, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	if err != nil {
		t.recordFetchError(err)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		t.recordFetchError(err)
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now().UTC()
	merged := 0
	skipped := 0
	mergeErrors := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		kind := t.classifier.Run(item.Title, item.Categories)
		if kind == feed.KindUnknown {
			slog.Info("Item skipped", "feed", t.FeedName, "title", item.Title, "reason", "no content kind matched")
			skipped++
			continue
		}

		record, err := t.builder.Run(item, kind, now)
		if err != nil {
			slog.Warn("Item skipped", "feed", t.FeedName, "title", item.Title, "reason", err.Error())
			skipped++
			continue
		}

		if err := t.recordStore.Upsert(ctx, record); err != nil {
			mergeErr := &feed.MergeError{Kind: kind, ExternalKey: record.ExternalKey(), Err: err}
			slog.Error("Item merge failed", "feed", t.FeedName, "key", record.ExternalKey(), "error", mergeErr)
			mergeErrors++
			continue
		}

		slog.Debug("Item merged", "feed", t.FeedName, "kind", string(kind), "key", record.ExternalKey())
		merged++
	}

	if err := t.feedRepo.UpdateFetchSuccess(t.FeedName, metadata.Title, time.Now().UTC()); err != nil {
		slog.Warn("Failed to update feed fetch state", "feed", t.FeedName, "error", err)
	}

	t.counters.ItemsMerged.Add(int64(merged))
	t.counters.ItemsSkipped.Add(int64(skipped))
	t.counters.MergeErrors.Add(int64(mergeErrors))

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"merged", merged,
		"skipped", skipped,
		"merge_errors", mergeErrors)

	return nil
}

func (t *IngestFeedTask) recordFetchError(fetchErr error) {
	if err := t.feedRepo.UpdateFetchError(t.FeedName, time.Now().UTC(), fetchErr.Error()); err != nil {
		slog.Warn("Failed to update feed fetch state", "feed", t.FeedName, "error", err)
	}
}
