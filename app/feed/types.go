package feed

import (
	"time"
)

// ContentKind is the classification assigned to an ingested item. It decides
// which record collection the item is merged into.
type ContentKind string

const (
	KindJob       ContentKind = "job"
	KindResult    ContentKind = "result"
	KindAdmission ContentKind = "admission"
	KindUnknown   ContentKind = "unknown"
)

// Feed processing types

type Metadata struct {
	Title           string
	Link            string
	Description     string
	Language        string
	FeedPublishedAt *time.Time
}

// Item is one syndication entry as delivered by a source. It only lives for
// the duration of a single ingestion pass.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishedAt time.Time
	Categories  []string
}

// ExtractedDates holds the optional start/end dates recovered from free text.
// A nil field means no matching label was found; the caller applies defaults.
type ExtractedDates struct {
	Start *time.Time
	End   *time.Time
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	Timeout        int  `yaml:"timeout"`         // seconds
	MaxItems       int  `yaml:"max_items"`       // per-feed cap for enrichment batches
	ExtractContent bool `yaml:"extract_content"` // enable announcement page extraction
}
