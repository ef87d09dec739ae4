package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sarkarihub/sarkarihub/app/database"
	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
	"github.com/sarkarihub/sarkarihub/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	runRepo database.RunRepository, recordStore store.RecordStore,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		configCache: configCache,
		feedRepo:    feedRepo,
		runRepo:     runRepo,
		recordStore: recordStore,
		scheduler:   scheduler,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if err := h.recordStore.Ping(c.Request.Context()); err != nil {
		slog.Error("Record store ping failed", "error", err)
		health["record_store"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	health["record_store"] = "ok"

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	state, skippedTicks := h.scheduler.State()

	stats := gin.H{
		"run_state":     string(state),
		"skipped_ticks": skippedTicks,
	}

	if totals, err := h.runRepo.GetRunTotals(); err == nil {
		stats["runs"] = totals.Runs
		stats["items_merged"] = totals.ItemsMerged
		stats["items_skipped"] = totals.ItemsSkipped
		stats["merge_errors"] = totals.MergeErrors
	}

	if lastRun, err := h.runRepo.GetLastRun(); err == nil && lastRun != nil {
		last := gin.H{
			"started_at":   lastRun.StartedAt.Format(time.RFC3339),
			"triggered_by": lastRun.TriggeredBy,
			"feeds":        lastRun.FeedsAttempted,
			"feeds_failed": lastRun.FeedsFailed,
			"merged":       lastRun.ItemsMerged,
			"skipped":      lastRun.ItemsSkipped,
		}
		if lastRun.FinishedAt != nil {
			last["finished_at"] = lastRun.FinishedAt.Format(time.RFC3339)
		}
		stats["last_run"] = last
	}

	counts := gin.H{}
	for _, kind := range []feed.ContentKind{feed.KindJob, feed.KindResult, feed.KindAdmission} {
		if count, err := h.recordStore.CountRecords(c.Request.Context(), kind); err == nil {
			counts[string(kind)] = count
		}
	}
	stats["records"] = counts

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListJobs(c *gin.Context) {
	query := listQueryFromRequest(c)

	records, total, err := h.recordStore.ListJobs(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "list_jobs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, paginate(records, total, query))
}

func (h *Handler) ListResults(c *gin.Context) {
	query := listQueryFromRequest(c)

	records, total, err := h.recordStore.ListResults(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "list_results", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, paginate(records, total, query))
}

func (h *Handler) ListAdmissions(c *gin.Context) {
	query := listQueryFromRequest(c)

	records, total, err := h.recordStore.ListAdmissions(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "list_admissions", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, paginate(records, total, query))
}

func (h *Handler) TriggerIngest(c *gin.Context) {
	if err := h.scheduler.TriggerRun(); err != nil {
		if errors.Is(err, tasks.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to trigger ingestion run", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "run started"})
}

func listQueryFromRequest(c *gin.Context) store.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit > 100 {
		limit = 100
	}

	return store.ListQuery{
		Category:     c.Query("category"),
		Status:       c.Query("status"),
		Organization: c.Query("organization"),
		Search:       c.Query("search"),
		Page:         page,
		Limit:        limit,
	}
}

func paginate(records interface{}, total int64, query store.ListQuery) listResponse {
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return listResponse{
		Records:     records,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
