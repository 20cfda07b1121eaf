package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/config"
	"github.com/dgnsrekt/prezi_grab/internal/scraper"
)

const testURL = "https://prezi.com/p/service-test/"

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{OutputDir: t.TempDir(), MaxSlides: 5, StallThreshold: 3}
	return NewService(cfg)
}

func waitFinished(t *testing.T, s *Service, id string) RunInfo {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		info, err := s.GetRun(id)
		if err != nil {
			t.Fatalf("GetRun: %v", err)
		}
		if info.FinishedAt != nil {
			return info
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run %s did not finish", id)
	return RunInfo{}
}

func TestServiceRejectsConcurrentRuns(t *testing.T) {
	s := newTestService(t)
	release := make(chan struct{})
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		<-release
		return scraper.Result{SlidesProcessed: 1}, nil
	}

	first, err := s.StartRun(context.Background(), testURL)
	if err != nil {
		t.Fatalf("first StartRun: %v", err)
	}

	_, err = s.StartRun(context.Background(), testURL)
	var coded *cdpcontrol.CodedError
	if !errors.As(err, &coded) || coded.Code != cdpcontrol.CodeBusy {
		t.Fatalf("second StartRun error = %v, want BUSY", err)
	}

	close(release)
	info := waitFinished(t, s, first.ID)
	if info.State != "finished" {
		t.Errorf("state = %q, want finished", info.State)
	}

	// The slot frees up once the first run completes.
	if _, err := s.StartRun(context.Background(), testURL); err != nil {
		t.Fatalf("StartRun after completion: %v", err)
	}
}

func TestServiceRejectsInvalidURLBeforeRegistering(t *testing.T) {
	s := newTestService(t)
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		t.Error("execFn ran for a rejected URL")
		return scraper.Result{}, nil
	}

	_, err := s.StartRun(context.Background(), "http://example.com/p/not-prezi/")
	var coded *cdpcontrol.CodedError
	if !errors.As(err, &coded) || coded.Code != cdpcontrol.CodeValidation {
		t.Fatalf("StartRun error = %v, want VALIDATION", err)
	}
	if runs := s.ListRuns(); len(runs) != 0 {
		t.Errorf("rejected run was registered, got %d runs", len(runs))
	}

	// The slot stays free for a valid request.
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		return scraper.Result{}, nil
	}
	if _, err := s.StartRun(context.Background(), testURL); err != nil {
		t.Fatalf("StartRun after rejection: %v", err)
	}
}

func TestServiceRecordsRunFailure(t *testing.T) {
	s := newTestService(t)
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		return scraper.Result{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeCDPUnavailable, Message: "no browser"}
	}

	started, err := s.StartRun(context.Background(), testURL)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	info := waitFinished(t, s, started.ID)
	if info.Error == "" {
		t.Error("failed run has empty Error")
	}
	if info.Result == nil {
		t.Error("failed run should still carry a result snapshot")
	}
}

func TestServiceGetRunUnknownID(t *testing.T) {
	s := newTestService(t)
	_, err := s.GetRun("no-such-run")
	var coded *cdpcontrol.CodedError
	if !errors.As(err, &coded) || coded.Code != cdpcontrol.CodeRunNotFound {
		t.Fatalf("GetRun error = %v, want RUN_NOT_FOUND", err)
	}
}

func TestServiceListRunsNewestFirst(t *testing.T) {
	s := newTestService(t)
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		return scraper.Result{}, nil
	}

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := s.StartRun(context.Background(), testURL)
		if err != nil {
			t.Fatalf("StartRun %d: %v", i, err)
		}
		waitFinished(t, s, info.ID)
		ids = append(ids, info.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs := s.ListRuns()
	if len(runs) != 3 {
		t.Fatalf("ListRuns returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("newest run first: got %s, want %s", runs[0].ID, ids[2])
	}
}

func TestServiceRunArtifactsQueryable(t *testing.T) {
	s := newTestService(t)
	s.execFn = func(ctx context.Context, r *run, url string) (scraper.Result, error) {
		if _, err := r.shots.Save(1, []byte("png")); err != nil {
			return scraper.Result{}, err
		}
		return scraper.Result{SlidesProcessed: 1}, nil
	}

	info, err := s.StartRun(context.Background(), testURL)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	waitFinished(t, s, info.ID)

	metas, err := s.ListScreenshots(info.ID)
	if err != nil {
		t.Fatalf("ListScreenshots: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("got %d screenshots, want 1", len(metas))
	}
	data, err := s.ReadScreenshot(info.ID, metas[0].Name)
	if err != nil {
		t.Fatalf("ReadScreenshot: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("screenshot bytes = %q", data)
	}
}
