package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_Run(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title>Recruitment Notice</title></head>
<body>
  <nav>Home | About | Contact</nav>
  <article>
    <h1>Clerk Recruitment 2024</h1>
    <p>Applications are invited for the post of Lower Division Clerk.
    Eligible candidates may apply online through the official portal.
    The selection process consists of a written examination followed
    by a skill test.</p>
    <p>Last Date: 15/08/2024. Application fee must be paid online.</p>
  </article>
  <footer>Copyright 2024</footer>
</body>
</html>`

	extractor := NewContentExtractor()
	text, err := extractor.Run([]byte(html))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(text, "Lower Division Clerk") {
		t.Errorf("Expected extracted text to contain the article body, got: %s", text)
	}
	if strings.Contains(text, "<p>") {
		t.Error("Expected plain text, got markup")
	}
}

func TestContentExtractor_RunEmptyInput(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestContentExtractor_RunNoContent(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run([]byte("<html><body></body></html>")); err == nil {
		t.Error("Expected error for page with no readable content")
	}
}
