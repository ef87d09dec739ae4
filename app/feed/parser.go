package feed

import (
	"bytes"
	"cmp"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a raw feed payload into metadata and normalized items in
// document order. Entries that carry neither a link nor a GUID are skipped
// with a logged skip event; one bad entry never discards the rest of the
// document.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	if parsed.PublishedParsed != nil {
		metadata.FeedPublishedAt = parsed.PublishedParsed
	}

	items := make([]Item, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil || (item.Link == "" && item.GUID == "") {
			slog.Warn("Skipping malformed feed entry", "feed", parsed.Title, "position", i, "reason", "no link or guid")
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Link:        cmp.Or(item.Link, item.GUID),
		Description: item.Description,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	}

	if item.Categories != nil {
		normalized.Categories = item.Categories
	}

	return normalized
}
