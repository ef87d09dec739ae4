package api

import (
	"github.com/sarkarihub/sarkarihub/app/database"
	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
	"github.com/sarkarihub/sarkarihub/app/tasks"
)

type Handler struct {
	configCache *feed.ConfigCache
	feedRepo    database.FeedRepository
	runRepo     database.RunRepository
	recordStore store.RecordStore
	scheduler   tasks.TaskSchedulerInterface
	version     string
}

// listResponse is the paginated catalog payload shared by the three record
// endpoints.
type listResponse struct {
	Records     interface{} `json:"records"`
	Total       int64       `json:"total"`
	TotalPages  int64       `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
}
