package feed

import (
	"errors"
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sarkari Notices</title>
    <link>https://notices.example.gov</link>
    <description>Official announcements</description>
    <language>en-in</language>
    <item>
      <title>Clerk Recruitment 2024</title>
      <link>https://notices.example.gov/item1</link>
      <description>Last Date: 15/08/2024</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jun 2024 10:00:00 GMT</pubDate>
      <category>SSC</category>
      <category>jobs</category>
    </item>
    <item>
      <title>Exam Result Declared</title>
      <link>https://notices.example.gov/item2</link>
      <description>Merit list available</description>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jun 2024 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Test metadata
	if metadata.Title != "Sarkari Notices" {
		t.Errorf("Expected title 'Sarkari Notices', got: %s", metadata.Title)
	}
	if metadata.Link != "https://notices.example.gov" {
		t.Errorf("Expected link 'https://notices.example.gov', got: %s", metadata.Link)
	}
	if metadata.Language != "en-in" {
		t.Errorf("Expected language 'en-in', got: %s", metadata.Language)
	}

	// Test items
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.Title != "Clerk Recruitment 2024" {
		t.Errorf("Expected title 'Clerk Recruitment 2024', got: %s", item1.Title)
	}
	if item1.Link != "https://notices.example.gov/item1" {
		t.Errorf("Expected link 'https://notices.example.gov/item1', got: %s", item1.Link)
	}
	if item1.GUID != "item-1" {
		t.Errorf("Expected GUID 'item-1', got: %s", item1.GUID)
	}
	if len(item1.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(item1.Categories))
	}
	expected := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	if !item1.PublishedAt.Equal(expected) {
		t.Errorf("Expected published at %v, got: %v", expected, item1.PublishedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>University Bulletin</title>
  <link href="https://example.edu"/>
  <updated>2024-06-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Admission Open for B.Sc</title>
    <link href="https://example.edu/entry1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2024-06-03T10:00:00Z</updated>
    <content type="html">Applications invited</content>
  </entry>
</feed>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(atomData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "University Bulletin" {
		t.Errorf("Expected title 'University Bulletin', got: %s", metadata.Title)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	item := items[0]
	if item.Title != "Admission Open for B.Sc" {
		t.Errorf("Expected title 'Admission Open for B.Sc', got: %s", item.Title)
	}
	if item.Link != "https://example.edu/entry1" {
		t.Errorf("Expected link 'https://example.edu/entry1', got: %s", item.Link)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Fatal("Expected error for invalid XML")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected *ParseError, got %T", err)
	}
}

func TestParseSkipsEntryWithoutLinkOrGUID(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sarkari Notices</title>
    <link>https://notices.example.gov</link>
    <description>Official announcements</description>
    <item>
      <title>Entry with no link and no guid</title>
      <description>Cannot be identified</description>
    </item>
    <item>
      <title>Good Entry</title>
      <link>https://notices.example.gov/good</link>
      <description>Has a link</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected malformed entry to be skipped, got %d items", len(items))
	}
	if items[0].Title != "Good Entry" {
		t.Errorf("Expected surviving entry 'Good Entry', got: %s", items[0].Title)
	}
}

func TestParseGUIDFallsBackToLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sarkari Notices</title>
    <link>https://notices.example.gov</link>
    <description>Official announcements</description>
    <item>
      <title>No GUID Entry</title>
      <link>https://notices.example.gov/no-guid</link>
      <description>Link only</description>
    </item>
    <item>
      <title>No Link Entry</title>
      <guid isPermaLink="false">guid-only</guid>
      <description>GUID only</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	if items[0].GUID != "https://notices.example.gov/no-guid" {
		t.Errorf("Expected GUID to fall back to link, got: %s", items[0].GUID)
	}
	if items[1].Link != "guid-only" {
		t.Errorf("Expected link to fall back to GUID, got: %s", items[1].Link)
	}
}
