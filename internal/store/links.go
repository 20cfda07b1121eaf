package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LinkRecord is one discovered YouTube link with its discovery context.
type LinkRecord struct {
	URL         string    `json:"url"`
	VideoID     string    `json:"video_id"`
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// LinkStore accumulates YouTube links for one run, deduplicated by URL.
// Unique links are appended to <output>/youtube_links_<timestamp>.txt as they
// are found; full records go to a JSONL sidecar through an async writer.
type LinkStore struct {
	txtPath string

	mu      sync.Mutex
	seen    map[string]struct{}
	records []LinkRecord
	txt     *os.File
	details *detailWriter
	closed  bool
}

// NewLinkStore creates the link file (and its JSONL detail stream) under
// outputDir, stamped with the run start time.
func NewLinkStore(outputDir string) (*LinkStore, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("link store: mkdir %s: %w", outputDir, err)
	}

	stamp := time.Now().UTC().Format(timestampLayout)
	txtPath := filepath.Join(outputDir, "youtube_links_"+stamp+".txt")
	txt, err := os.OpenFile(txtPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("link store: open %s: %w", txtPath, err)
	}

	return &LinkStore{
		txtPath: txtPath,
		seen:    make(map[string]struct{}),
		txt:     txt,
		details: newDetailWriter(filepath.Join(outputDir, "youtube_links_"+stamp+".jsonl")),
	}, nil
}

// Add records a link if its URL has not been seen this run. Returns true
// when the link was new.
func (s *LinkStore) Add(rec LinkRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, fmt.Errorf("link store: closed")
	}
	if _, dup := s.seen[rec.URL]; dup {
		return false, nil
	}

	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now().UTC()
	}

	if _, err := s.txt.WriteString(rec.URL + "\n"); err != nil {
		return false, fmt.Errorf("link store: append %s: %w", s.txtPath, err)
	}

	s.seen[rec.URL] = struct{}{}
	s.records = append(s.records, rec)
	s.details.write(rec)
	return true, nil
}

// Links returns the unique URLs recorded so far, in discovery order.
func (s *LinkStore) Links() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.URL)
	}
	return out
}

// Records returns copies of all link records recorded so far.
func (s *LinkStore) Records() []LinkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LinkRecord(nil), s.records...)
}

// Count returns the number of unique links.
func (s *LinkStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Path returns the flat link file path.
func (s *LinkStore) Path() string { return s.txtPath }

// Close flushes and closes both output files. Add after Close is an error.
func (s *LinkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	detailsErr := s.details.close()
	if err := s.txt.Close(); err != nil {
		return fmt.Errorf("link store: close %s: %w", s.txtPath, err)
	}
	return detailsErr
}
