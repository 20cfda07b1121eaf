package runner

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/config"
	"github.com/dgnsrekt/prezi_grab/internal/prezi"
	"github.com/dgnsrekt/prezi_grab/internal/scraper"
	"github.com/dgnsrekt/prezi_grab/internal/store"
)

// RunInfo is the externally visible record of one run.
type RunInfo struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	State      string          `json:"state"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Result     *scraper.Result `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type run struct {
	info   RunInfo
	shots  *store.ScreenshotStore
	links  *store.LinkStore
	cancel context.CancelFunc
}

// Service runs grabs on behalf of the control API. The browser holds one
// presentation tab, so at most one run is active at a time; finished runs
// stay queryable for the lifetime of the process.
type Service struct {
	cfg *config.Config

	mu     sync.Mutex
	runs   map[string]*run
	order  []string
	active string

	// execFn is swapped out by tests.
	execFn func(ctx context.Context, r *run, presentationURL string) (scraper.Result, error)
}

func NewService(cfg *config.Config) *Service {
	s := &Service{cfg: cfg, runs: make(map[string]*run)}
	s.execFn = s.executeRun
	return s
}

// StartRun launches a run in the background and returns immediately.
func (s *Service) StartRun(ctx context.Context, presentationURL string) (RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		return RunInfo{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeBusy, Message: "a run is already in progress: " + s.active}
	}
	if err := prezi.ValidateURL(presentationURL); err != nil {
		return RunInfo{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "invalid presentation URL", Cause: err}
	}

	id := uuid.NewString()
	outputDir := filepath.Join(s.cfg.OutputDir, id)
	shots, err := store.NewScreenshotStore(outputDir)
	if err != nil {
		return RunInfo{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "prepare screenshot dir", Cause: err}
	}
	links, err := store.NewLinkStore(outputDir)
	if err != nil {
		return RunInfo{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "prepare link file", Cause: err}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{
		info: RunInfo{
			ID:        id,
			URL:       presentationURL,
			State:     scraper.StateNavigating.String(),
			StartedAt: time.Now().UTC(),
		},
		shots:  shots,
		links:  links,
		cancel: cancel,
	}
	s.runs[id] = r
	s.order = append(s.order, id)
	s.active = id

	go s.execute(runCtx, r, presentationURL)
	return r.info, nil
}

func (s *Service) execute(ctx context.Context, r *run, presentationURL string) {
	defer r.cancel()

	res, err := s.execFn(ctx, r, presentationURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	r.info.FinishedAt = &now
	r.info.State = scraper.StateFinished.String()
	r.info.Result = &res
	if err != nil {
		r.info.Error = err.Error()
	}
	if s.active == r.info.ID {
		s.active = ""
	}
}

func (s *Service) executeRun(ctx context.Context, r *run, presentationURL string) (scraper.Result, error) {
	coord, cleanup := newCoordinator(s.cfg, r.shots, r.links)
	defer cleanup()
	return coord.Run(ctx, presentationURL)
}

// GetRun returns the record for one run.
func (s *Service) GetRun(id string) (RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return RunInfo{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeRunNotFound, Message: "unknown run: " + id}
	}
	return r.info, nil
}

// ListRuns returns all runs, newest first.
func (s *Service) ListRuns() []RunInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id].info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// CancelRun aborts an in-flight run. Cancelling a finished run is a no-op.
func (s *Service) CancelRun(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return &cdpcontrol.CodedError{Code: cdpcontrol.CodeRunNotFound, Message: "unknown run: " + id}
	}
	r.cancel()
	return nil
}

// ListLinks returns the deduplicated link records collected by a run.
func (s *Service) ListLinks(id string) ([]store.LinkRecord, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return nil, &cdpcontrol.CodedError{Code: cdpcontrol.CodeRunNotFound, Message: "unknown run: " + id}
	}
	return r.links.Records(), nil
}

// ListScreenshots returns metadata for a run's captured slides.
func (s *Service) ListScreenshots(id string) ([]store.ScreenshotMeta, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return nil, &cdpcontrol.CodedError{Code: cdpcontrol.CodeRunNotFound, Message: "unknown run: " + id}
	}
	return r.shots.List()
}

// ReadScreenshot returns the PNG bytes of one captured slide.
func (s *Service) ReadScreenshot(id, name string) ([]byte, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return nil, &cdpcontrol.CodedError{Code: cdpcontrol.CodeRunNotFound, Message: "unknown run: " + id}
	}
	return r.shots.ReadImage(name)
}

// Shutdown cancels any active run.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		r.cancel()
	}
}
