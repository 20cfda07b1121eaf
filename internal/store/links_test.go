package store

import (
	"os"
	"strings"
	"testing"
)

func TestLinkStoreDeduplicatesByURL(t *testing.T) {
	s, err := NewLinkStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLinkStore() error = %v", err)
	}
	defer s.Close()

	added, err := s.Add(LinkRecord{URL: "https://www.youtube.com/watch?v=abc123", VideoID: "abc123", Source: "page_source"})
	if err != nil || !added {
		t.Fatalf("first Add() = (%v, %v); want (true, nil)", added, err)
	}
	added, err = s.Add(LinkRecord{URL: "https://www.youtube.com/watch?v=abc123", VideoID: "abc123", Source: "network"})
	if err != nil || added {
		t.Fatalf("duplicate Add() = (%v, %v); want (false, nil)", added, err)
	}

	if got := s.Count(); got != 1 {
		t.Fatalf("Count() = %d; want 1", got)
	}
}

func TestLinkFileHasNoDuplicateLines(t *testing.T) {
	s, err := NewLinkStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLinkStore() error = %v", err)
	}

	for _, url := range []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://youtu.be/xyz789",
		"https://www.youtube.com/watch?v=abc123",
		"https://youtu.be/xyz789",
	} {
		if _, err := s.Add(LinkRecord{URL: url}); err != nil {
			t.Fatalf("Add(%q) error = %v", url, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read link file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("link file has %d lines; want 2:\n%s", len(lines), data)
	}
	seen := make(map[string]struct{})
	for _, line := range lines {
		if _, dup := seen[line]; dup {
			t.Fatalf("duplicate line in link file: %q", line)
		}
		seen[line] = struct{}{}
	}
}

func TestLinkStoreOrderAndRecords(t *testing.T) {
	s, err := NewLinkStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLinkStore() error = %v", err)
	}
	defer s.Close()

	urls := []string{
		"https://www.youtube.com/watch?v=one",
		"https://www.youtube.com/watch?v=two",
		"https://youtu.be/three",
	}
	for _, u := range urls {
		if _, err := s.Add(LinkRecord{URL: u}); err != nil {
			t.Fatalf("Add(%q) error = %v", u, err)
		}
	}

	got := s.Links()
	if len(got) != len(urls) {
		t.Fatalf("Links() = %v; want %v", got, urls)
	}
	for i := range urls {
		if got[i] != urls[i] {
			t.Fatalf("Links()[%d] = %q; want %q", i, got[i], urls[i])
		}
	}

	for _, rec := range s.Records() {
		if rec.ExtractedAt.IsZero() {
			t.Fatalf("record %q has zero ExtractedAt", rec.URL)
		}
	}
}

func TestLinkStoreAddAfterClose(t *testing.T) {
	s, err := NewLinkStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLinkStore() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Add(LinkRecord{URL: "https://youtu.be/late"}); err == nil {
		t.Fatal("Add() after Close() = nil error; want error")
	}
}
