package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarkarihub/sarkarihub/app/database"
	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// ErrRunInProgress is returned when a run is requested while the previous
// one has not finished. Overlapping runs are never started so concurrent
// upserts cannot race on the same external key.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// RunState is the scheduler's explicit run state. Transitions happen under
// one mutex: Idle -> Running on tick or manual trigger, Running -> Idle once
// every feed of the run has been attempted.
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
)

// RunCounters aggregates per-run statistics across ingest tasks running on
// different workers.
type RunCounters struct {
	FeedsAttempted atomic.Int64
	FeedsFailed    atomic.Int64
	ItemsMerged    atomic.Int64
	ItemsSkipped   atomic.Int64
	MergeErrors    atomic.Int64
}

type Scheduler struct {
	configCache      *feed.ConfigCache
	feedRepo         database.FeedRepository
	runRepo          database.RunRepository
	recordStore      store.RecordStore
	fetcher          *feed.Fetcher
	parser           *feed.Parser
	classifier       *feed.Classifier
	builder          *feed.RecordBuilder
	contentExtractor *feed.ContentExtractor
	interval         time.Duration
	workerCount      int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu           sync.Mutex
	state        RunState
	skippedTicks int
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	runRepo database.RunRepository, recordStore store.RecordStore,
	httpClient *http.Client, userAgent string, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache:      configCache,
		feedRepo:         feedRepo,
		runRepo:          runRepo,
		recordStore:      recordStore,
		fetcher:          feed.NewFetcher(httpClient, userAgent),
		parser:           feed.NewParser(),
		classifier:       feed.NewClassifier(),
		builder:          feed.NewRecordBuilder(),
		contentExtractor: feed.NewContentExtractor(),
		interval:         interval,
		workerCount:      workerCount,
		ctx:              ctx,
		cancel:           cancel,
		state:            RunStateIdle,
		taskQueue:        make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if err := s.startRun("startup"); err != nil {
			slog.Warn("Startup run not started", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.startRun("scheduled"); err != nil {
					slog.Warn("Tick skipped, run still in progress", "skipped_ticks", s.SkippedTicks())
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

// TriggerRun starts a manual ingestion run. Manual triggers obey the same
// no-overlap rule as scheduled ticks.
func (s *Scheduler) TriggerRun() error {
	return s.startRun("manual")
}

func (s *Scheduler) State() (RunState, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.skippedTicks
}

func (s *Scheduler) SkippedTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skippedTicks
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) startRun(triggeredBy string) error {
	s.mu.Lock()
	if s.state == RunStateRunning {
		s.skippedTicks++
		s.mu.Unlock()
		return ErrRunInProgress
	}
	s.state = RunStateRunning
	s.mu.Unlock()

	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		s.setIdle()
		return nil
	}

	runID, err := s.runRepo.StartRun(time.Now().UTC(), triggeredBy)
	if err != nil {
		slog.Error("Failed to record run start, counters will not be persisted", "error", err)
	}

	slog.Info("Ingestion run started", "run_id", runID, "triggered_by", triggeredBy, "feeds", len(feedConfigs))

	counters := &RunCounters{}
	runWG := &sync.WaitGroup{}

	for _, feedConfig := range feedConfigs {
		ingestTask := NewIngestFeedTask(feedConfig.Name, feedConfig, s.fetcher, s.parser,
			s.classifier, s.builder, s.feedRepo, s.recordStore, counters, runWG)

		runWG.Add(1)
		counters.FeedsAttempted.Add(1)
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestFeedTask", "feed", feedConfig.Name, "error", err)
			counters.FeedsFailed.Add(1)
			runWG.Done()
		}

		if feedConfig.Settings.ExtractContent {
			enrichTask := NewEnrichContentTask(feedConfig.Name, feedConfig, s.fetcher,
				s.contentExtractor, s.recordStore)
			if err := s.EnqueueTask(enrichTask); err != nil {
				slog.Warn("Failed to enqueue EnrichContentTask", "feed", feedConfig.Name, "error", err)
			}
		}
	}

	s.wg.Add(1)
	go s.finalizeRun(runID, counters, runWG)

	return nil
}

// finalizeRun waits for every feed of the run to be attempted, persists the
// run counters and transitions the scheduler back to idle.
func (s *Scheduler) finalizeRun(runID int64, counters *RunCounters, runWG *sync.WaitGroup) {
	defer s.wg.Done()
	defer s.setIdle()

	done := make(chan struct{})
	go func() {
		runWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-s.ctx.Done():
		slog.Debug("Scheduler stopped, abandoning run finalization", "run_id", runID)
		return
	}

	now := time.Now().UTC()
	run := database.IngestionRun{
		ID:             runID,
		FinishedAt:     &now,
		FeedsAttempted: int(counters.FeedsAttempted.Load()),
		FeedsFailed:    int(counters.FeedsFailed.Load()),
		ItemsMerged:    int(counters.ItemsMerged.Load()),
		ItemsSkipped:   int(counters.ItemsSkipped.Load()),
		MergeErrors:    int(counters.MergeErrors.Load()),
	}

	if runID != 0 {
		if err := s.runRepo.FinishRun(run); err != nil {
			slog.Error("Failed to record run completion", "run_id", runID, "error", err)
		}
	}

	slog.Info("Ingestion run completed",
		"run_id", runID,
		"feeds", run.FeedsAttempted,
		"feeds_failed", run.FeedsFailed,
		"merged", run.ItemsMerged,
		"skipped", run.ItemsSkipped,
		"merge_errors", run.MergeErrors)
}

func (s *Scheduler) setIdle() {
	s.mu.Lock()
	s.state = RunStateIdle
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil {
		s.completeTask(task, nil)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.completeTask(task, err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.completeTask(task, err)
			return
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				s.completeTask(task, retryErr)
			}
		}
	}()
}

func (s *Scheduler) completeTask(task TaskInterface, err error) {
	if ct, ok := task.(completionTask); ok {
		ct.Complete(err)
	}
}
