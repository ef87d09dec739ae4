package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcher_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Test Agent/1.0" {
			t.Errorf("Expected custom user agent, got: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Test Agent/1.0")
	data, err := fetcher.Run(context.Background(), server.URL, 5*time.Second)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<rss></rss>" {
		t.Errorf("Expected payload '<rss></rss>', got: %s", string(data))
	}
}

func TestFetcher_RunServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Test Agent/1.0")
	_, err := fetcher.Run(context.Background(), server.URL, 5*time.Second)

	if err == nil {
		t.Fatal("Expected error for 500 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got %T", err)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("Expected error to carry the URL, got: %s", fetchErr.URL)
	}
}

func TestFetcher_RunUnreachable(t *testing.T) {
	fetcher := NewFetcher(&http.Client{}, "Test Agent/1.0")
	_, err := fetcher.Run(context.Background(), "http://127.0.0.1:1/feed.xml", time.Second)

	if err == nil {
		t.Fatal("Expected error for unreachable host")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected *FetchError, got %T", err)
	}
}

func TestFetcher_RunTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Test Agent/1.0")
	_, err := fetcher.Run(context.Background(), server.URL, 100*time.Millisecond)

	if err == nil {
		t.Fatal("Expected timeout error")
	}
}
