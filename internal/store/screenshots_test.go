package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScreenshotNamesDistinctWithinSameSecond(t *testing.T) {
	s, err := NewScreenshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewScreenshotStore() error = %v", err)
	}
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	paths := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		p, err := s.Save(1, []byte("img"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, dup := paths[p]; dup {
			t.Fatalf("Save() produced duplicate path %q", p)
		}
		paths[p] = struct{}{}
	}

	if got := s.Count(); got != 3 {
		t.Fatalf("Count() = %d; want 3", got)
	}
}

func TestScreenshotNameFormat(t *testing.T) {
	s, err := NewScreenshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewScreenshotStore() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 34, 56, 0, time.UTC) }

	p, err := s.Save(7, []byte("img"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got, want := filepath.Base(p), "slide_007_20250601123456.png"; got != want {
		t.Fatalf("Save() name = %q; want %q", got, want)
	}
}

func TestScreenshotListParsesNames(t *testing.T) {
	s, err := NewScreenshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewScreenshotStore() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	for _, slide := range []int{2, 1, 3} {
		if _, err := s.Save(slide, []byte("img")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	// Foreign files are skipped.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	metas, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("List() returned %d entries; want 3", len(metas))
	}
	for i, want := range []int{1, 2, 3} {
		if metas[i].Slide != want {
			t.Fatalf("List()[%d].Slide = %d; want %d", i, metas[i].Slide, want)
		}
	}
}

func TestScreenshotReadImageRejectsForeignNames(t *testing.T) {
	s, err := NewScreenshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewScreenshotStore() error = %v", err)
	}

	for _, name := range []string{"../escape.png", "notes.txt", "slide_1_20250601.png"} {
		if _, err := s.ReadImage(name); err == nil {
			t.Errorf("ReadImage(%q) = nil error; want reject", name)
		}
	}
}
