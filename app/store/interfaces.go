package store

import (
	"context"

	"github.com/sarkarihub/sarkarihub/app/feed"
)

// ListQuery carries the catalog filter/pagination parameters. Zero values
// mean "no filter"; Page is 1-based.
type ListQuery struct {
	Category     string
	Status       string
	Organization string
	Search       string
	Page         int
	Limit        int
}

// RecordStore is the canonical record store contract. Upsert is an atomic
// replace-or-insert keyed on (kind, external key); re-ingesting the same key
// updates the existing record in place.
type RecordStore interface {
	Upsert(ctx context.Context, record feed.Record) error

	CountRecords(ctx context.Context, kind feed.ContentKind) (int64, error)
	ListJobs(ctx context.Context, query ListQuery) ([]feed.JobRecord, int64, error)
	ListResults(ctx context.Context, query ListQuery) ([]feed.ResultRecord, int64, error)
	ListAdmissions(ctx context.Context, query ListQuery) ([]feed.AdmissionRecord, int64, error)

	GetKeysForExtraction(ctx context.Context, kind feed.ContentKind, limit int) ([]string, error)
	UpdateExtractedContent(ctx context.Context, kind feed.ContentKind, externalKey, content, status string) error

	Ping(ctx context.Context) error
}
