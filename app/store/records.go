package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sarkarihub/sarkarihub/app/feed"
)

// Upsert merges a record into its collection keyed by the external key.
// ReplaceOne with upsert is a single atomic replace-or-insert from the
// store's perspective. The first-seen timestamp is read beforehand so a
// replace does not regress it.
func (s *Store) Upsert(ctx context.Context, record feed.Record) error {
	collection, spec, err := s.collectionFor(record.Kind())
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{spec.keyField: record.ExternalKey()}

	createdAt := time.Now().UTC()
	var existing struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	err = collection.FindOne(opCtx, filter,
		options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&existing)
	switch {
	case err == nil && !existing.CreatedAt.IsZero():
		createdAt = existing.CreatedAt
	case err != nil && err != mongo.ErrNoDocuments:
		return fmt.Errorf("failed to look up existing record: %w", err)
	}

	setCreatedAt(record, createdAt)

	if _, err := collection.ReplaceOne(opCtx, filter, record, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

func setCreatedAt(record feed.Record, createdAt time.Time) {
	switch r := record.(type) {
	case *feed.JobRecord:
		r.CreatedAt = createdAt
	case *feed.ResultRecord:
		r.CreatedAt = createdAt
	case *feed.AdmissionRecord:
		r.CreatedAt = createdAt
	}
}

func (s *Store) CountRecords(ctx context.Context, kind feed.ContentKind) (int64, error) {
	collection, _, err := s.collectionFor(kind)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := collection.CountDocuments(opCtx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

func (s *Store) ListJobs(ctx context.Context, query ListQuery) ([]feed.JobRecord, int64, error) {
	var records []feed.JobRecord
	total, err := s.list(ctx, feed.KindJob, query, "department", "start_date", &records)
	return records, total, err
}

func (s *Store) ListResults(ctx context.Context, query ListQuery) ([]feed.ResultRecord, int64, error) {
	var records []feed.ResultRecord
	total, err := s.list(ctx, feed.KindResult, query, "organization", "result_date", &records)
	return records, total, err
}

func (s *Store) ListAdmissions(ctx context.Context, query ListQuery) ([]feed.AdmissionRecord, int64, error) {
	var records []feed.AdmissionRecord
	total, err := s.list(ctx, feed.KindAdmission, query, "institute", "start_date", &records)
	return records, total, err
}

func (s *Store) list(ctx context.Context, kind feed.ContentKind, query ListQuery, orgField, sortField string, out interface{}) (int64, error) {
	collection, _, err := s.collectionFor(kind)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	filter := buildListFilter(query, orgField)

	total, err := collection.CountDocuments(opCtx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count matching records: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(opCtx, filter, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}
	defer cursor.Close(opCtx)

	if err := cursor.All(opCtx, out); err != nil {
		return 0, fmt.Errorf("failed to decode records: %w", err)
	}

	return total, nil
}

func buildListFilter(query ListQuery, orgField string) bson.M {
	filter := bson.M{}

	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.Organization != "" {
		filter[orgField] = query.Organization
	}
	if query.Search != "" {
		filter["$or"] = []bson.M{
			{"title.en": bson.M{"$regex": query.Search, "$options": "i"}},
			{orgField: bson.M{"$regex": query.Search, "$options": "i"}},
		}
	}

	return filter
}

// GetKeysForExtraction returns external keys of records still waiting for
// announcement page content extraction.
func (s *Store) GetKeysForExtraction(ctx context.Context, kind feed.ContentKind, limit int) ([]string, error) {
	collection, spec, err := s.collectionFor(kind)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{spec.keyField: 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(opCtx, bson.M{"content_extraction_status": feed.ExtractionPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for extraction: %w", err)
	}
	defer cursor.Close(opCtx)

	var keys []string
	for cursor.Next(opCtx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode record key: %w", err)
		}
		if key, ok := doc[spec.keyField].(string); ok && key != "" {
			keys = append(keys, key)
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction candidates: %w", err)
	}

	return keys, nil
}

// UpdateExtractedContent stores the extraction outcome for one record. On
// success the primary-language description is replaced with the extracted
// page text; the secondary language is left for the translation pipeline.
func (s *Store) UpdateExtractedContent(ctx context.Context, kind feed.ContentKind, externalKey, content, status string) error {
	collection, spec, err := s.collectionFor(kind)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	set := bson.M{
		"content_extraction_status": status,
		"content_extracted_at":      time.Now().UTC(),
	}
	if status == feed.ExtractionSuccess && content != "" {
		set["description.en"] = content
	}

	if _, err := collection.UpdateOne(opCtx, bson.M{spec.keyField: externalKey}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}
