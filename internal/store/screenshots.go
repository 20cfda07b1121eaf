// Package store persists run output: slide screenshots and extracted
// YouTube links, all as flat files under one output directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"
)

const timestampLayout = "20060102150405"

var screenshotNameRe = regexp.MustCompile(`^slide_(\d{3})_(\d{14})(?:_(\d+))?\.png$`)

// ScreenshotMeta describes a stored slide screenshot.
type ScreenshotMeta struct {
	Name      string    `json:"name"`
	Slide     int       `json:"slide"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ScreenshotStore writes slide screenshots for one run into
// <output>/screenshots/ as slide_<index>_<timestamp>.png. Filenames are
// guaranteed pairwise distinct within the run.
type ScreenshotStore struct {
	dir string

	mu    sync.Mutex
	used  map[string]struct{}
	count int
	now   func() time.Time
}

// NewScreenshotStore creates the screenshots subdirectory under outputDir.
func NewScreenshotStore(outputDir string) (*ScreenshotStore, error) {
	dir := filepath.Join(outputDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("screenshot store: mkdir %s: %w", dir, err)
	}
	return &ScreenshotStore{dir: dir, used: make(map[string]struct{}), now: time.Now}, nil
}

// Dir returns the screenshots directory path.
func (s *ScreenshotStore) Dir() string { return s.dir }

// Count returns how many screenshots this run has saved.
func (s *ScreenshotStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Save writes the image bytes for a slide and returns the file path.
// When two saves land in the same second a numeric suffix keeps the
// filenames distinct.
func (s *ScreenshotStore) Save(slideIndex int, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := fmt.Sprintf("slide_%03d_%s", slideIndex, s.now().UTC().Format(timestampLayout))
	name := base + ".png"
	for n := 2; ; n++ {
		if _, taken := s.used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d.png", base, n)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("screenshot store: write %s: %w", name, err)
	}

	s.used[name] = struct{}{}
	s.count++
	return path, nil
}

// List returns metadata for all screenshots in the directory, ordered by
// slide index. Metadata is parsed from the filenames; foreign files are
// skipped.
func (s *ScreenshotStore) List() ([]ScreenshotMeta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("screenshot store: read dir: %w", err)
	}

	metas := make([]ScreenshotMeta, 0, len(entries))
	for _, entry := range entries {
		m := screenshotNameRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		slide, _ := strconv.Atoi(m[1])
		createdAt, err := time.ParseInLocation(timestampLayout, m[2], time.UTC)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		metas = append(metas, ScreenshotMeta{
			Name:      entry.Name(),
			Slide:     slide,
			SizeBytes: info.Size(),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Slide != metas[j].Slide {
			return metas[i].Slide < metas[j].Slide
		}
		return metas[i].Name < metas[j].Name
	})
	return metas, nil
}

// ReadImage reads a stored screenshot by filename. The name must match the
// store's own naming scheme; anything else is rejected.
func (s *ScreenshotStore) ReadImage(name string) ([]byte, error) {
	if !screenshotNameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid screenshot name: %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("screenshot not found: %s", name)
		}
		return nil, fmt.Errorf("screenshot store: read %s: %w", name, err)
	}
	return data, nil
}
