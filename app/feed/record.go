package feed

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record statuses. Job and admission records share one lifecycle, result
// records have their own.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusClosed   = "closed"

	StatusPending   = "pending"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Content extraction states for announcement page enrichment.
const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"
)

const defaultDeadlineDays = 30

// LocalizedText holds a bilingual string. The secondary language stays empty
// until translated downstream; ingestion never invents it.
type LocalizedText struct {
	EN string `bson:"en" json:"en"`
	HI string `bson:"hi" json:"hi"`
}

// Record is the common envelope over the three persisted record shapes. The
// external key is the canonical source link and the sole merge identity.
type Record interface {
	Kind() ContentKind
	ExternalKey() string
}

type JobRecord struct {
	Title                   LocalizedText `bson:"title" json:"title"`
	Description             LocalizedText `bson:"description" json:"description"`
	Department              string        `bson:"department" json:"department"`
	StartDate               time.Time     `bson:"start_date" json:"startDate"`
	EndDate                 time.Time     `bson:"end_date" json:"endDate"`
	Category                string        `bson:"category" json:"category"`
	ApplicationURL          string        `bson:"application_url" json:"applicationUrl"`
	Status                  string        `bson:"status" json:"status"`
	ContentExtractionStatus string        `bson:"content_extraction_status" json:"-"`
	CreatedAt               time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt               time.Time     `bson:"updated_at" json:"updatedAt"`
}

func (r *JobRecord) Kind() ContentKind   { return KindJob }
func (r *JobRecord) ExternalKey() string { return r.ApplicationURL }

type ResultRecord struct {
	Title                   LocalizedText `bson:"title" json:"title"`
	Description             LocalizedText `bson:"description" json:"description"`
	Organization            string        `bson:"organization" json:"organization"`
	ExamDate                time.Time     `bson:"exam_date" json:"examDate"`
	ResultDate              time.Time     `bson:"result_date" json:"resultDate"`
	Category                string        `bson:"category" json:"category"`
	Type                    string        `bson:"type" json:"type"`
	ResultURL               string        `bson:"result_url" json:"resultUrl"`
	Status                  string        `bson:"status" json:"status"`
	ContentExtractionStatus string        `bson:"content_extraction_status" json:"-"`
	CreatedAt               time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt               time.Time     `bson:"updated_at" json:"updatedAt"`
}

func (r *ResultRecord) Kind() ContentKind   { return KindResult }
func (r *ResultRecord) ExternalKey() string { return r.ResultURL }

type AdmissionRecord struct {
	Title                   LocalizedText `bson:"title" json:"title"`
	Description             LocalizedText `bson:"description" json:"description"`
	Institute               string        `bson:"institute" json:"institute"`
	Course                  string        `bson:"course" json:"course"`
	StartDate               time.Time     `bson:"start_date" json:"startDate"`
	EndDate                 time.Time     `bson:"end_date" json:"endDate"`
	Category                string        `bson:"category" json:"category"`
	ApplicationURL          string        `bson:"application_url" json:"applicationUrl"`
	Status                  string        `bson:"status" json:"status"`
	ContentExtractionStatus string        `bson:"content_extraction_status" json:"-"`
	CreatedAt               time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt               time.Time     `bson:"updated_at" json:"updatedAt"`
}

func (r *AdmissionRecord) Kind() ContentKind   { return KindAdmission }
func (r *AdmissionRecord) ExternalKey() string { return r.ApplicationURL }

// RecordBuilder maps a classified item to its persisted record shape,
// applying date defaults and recomputing the derived status on every build.
type RecordBuilder struct {
	extractor *DateExtractor
}

func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		extractor: NewDateExtractor(),
	}
}

func (b *RecordBuilder) Run(item Item, kind ContentKind, now time.Time) (Record, error) {
	if item.Link == "" {
		return nil, fmt.Errorf("item %q has no link", item.Title)
	}

	switch kind {
	case KindJob:
		return b.buildJob(item, now), nil
	case KindResult:
		return b.buildResult(item, now), nil
	case KindAdmission:
		return b.buildAdmission(item, now), nil
	default:
		return nil, fmt.Errorf("cannot build record for kind %q", kind)
	}
}

func (b *RecordBuilder) buildJob(item Item, now time.Time) *JobRecord {
	dates := b.extractor.Run(item.Description)
	start, end := applyDateDefaults(dates, now)

	return &JobRecord{
		Title:                   LocalizedText{EN: item.Title},
		Description:             LocalizedText{EN: item.Description},
		Department:              organizationFromCategories(item.Categories),
		StartDate:               start,
		EndDate:                 end,
		Category:                "Government",
		ApplicationURL:          item.Link,
		Status:                  deadlineStatus(start, end, now),
		ContentExtractionStatus: ExtractionPending,
		UpdatedAt:               now,
	}
}

func (b *RecordBuilder) buildResult(item Item, now time.Time) *ResultRecord {
	resultDate := item.PublishedAt
	if resultDate.IsZero() {
		resultDate = now
	}

	// The exam date is rarely announced in a structured way; a start-slot
	// label in the description is the best available signal.
	examDate := now
	if dates := b.extractor.Run(item.Description); dates.Start != nil {
		examDate = *dates.Start
	}

	return &ResultRecord{
		Title:                   LocalizedText{EN: item.Title},
		Description:             LocalizedText{EN: item.Description},
		Organization:            organizationFromCategories(item.Categories),
		ExamDate:                examDate,
		ResultDate:              resultDate,
		Category:                "Examination",
		Type:                    "result",
		ResultURL:               item.Link,
		Status:                  resultStatus(resultDate, now),
		ContentExtractionStatus: ExtractionPending,
		UpdatedAt:               now,
	}
}

func (b *RecordBuilder) buildAdmission(item Item, now time.Time) *AdmissionRecord {
	dates := b.extractor.Run(item.Description)
	start, end := applyDateDefaults(dates, now)

	return &AdmissionRecord{
		Title:                   LocalizedText{EN: item.Title},
		Description:             LocalizedText{EN: item.Description},
		Institute:               organizationFromCategories(item.Categories),
		Course:                  "General",
		StartDate:               start,
		EndDate:                 end,
		Category:                "Education",
		ApplicationURL:          item.Link,
		Status:                  deadlineStatus(start, end, now),
		ContentExtractionStatus: ExtractionPending,
		UpdatedAt:               now,
	}
}

func applyDateDefaults(dates ExtractedDates, now time.Time) (start, end time.Time) {
	start = now
	if dates.Start != nil {
		start = *dates.Start
	}

	end = now.AddDate(0, 0, defaultDeadlineDays)
	if dates.End != nil {
		end = *dates.End
	}

	return start, end
}

func deadlineStatus(start, end, now time.Time) string {
	switch {
	case start.After(now):
		return StatusUpcoming
	case end.Before(now):
		return StatusClosed
	default:
		return StatusActive
	}
}

func resultStatus(resultDate, now time.Time) string {
	switch {
	case resultDate.After(now):
		return StatusPending
	case resultDate.Before(now.AddDate(0, 0, -defaultDeadlineDays)):
		return StatusArchived
	default:
		return StatusPublished
	}
}

func organizationFromCategories(categories []string) string {
	if len(categories) == 0 || strings.TrimSpace(categories[0]) == "" {
		return "General"
	}

	caser := cases.Title(language.English)
	return caser.String(strings.ToLower(strings.TrimSpace(categories[0])))
}
