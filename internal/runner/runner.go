// Package runner assembles and executes grab runs. The CLI uses Execute
// directly; the control API drives runs through Service.
package runner

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/config"
	"github.com/dgnsrekt/prezi_grab/internal/embedwatch"
	"github.com/dgnsrekt/prezi_grab/internal/notify"
	"github.com/dgnsrekt/prezi_grab/internal/prezi"
	"github.com/dgnsrekt/prezi_grab/internal/scraper"
	"github.com/dgnsrekt/prezi_grab/internal/store"
)

// newCoordinator wires a session, the stores, and the optional network
// embed watcher into a ready coordinator. The returned cleanup must be
// called after the run to drop the watcher's CDP connection.
func newCoordinator(cfg *config.Config, shots *store.ScreenshotStore, links *store.LinkStore) (*scraper.Coordinator, func()) {
	session := cdpcontrol.NewSession(cfg.CDPURL(), cfg.EvalTimeout())

	var coord *scraper.Coordinator
	var watcher *embedwatch.Watcher
	opts := scraper.Options{
		MaxSlides:       cfg.MaxSlides,
		StallThreshold:  cfg.StallThreshold,
		NavDelay:        cfg.NavDelay(),
		PageLoadTimeout: cfg.PageLoadTimeout(),
	}
	if cfg.WatchEmbeds {
		opts.OnSessionReady = func(ctx context.Context) {
			watcher = embedwatch.New(coord.ReportLink)
			if err := watcher.Attach(ctx, cfg.CDPURL(), session.TargetID()); err != nil {
				slog.Warn("embed watcher attach failed, network links will be missed", "error", err)
				watcher = nil
			}
		}
	}
	coord = scraper.New(session, shots, links, opts)

	cleanup := func() {
		if watcher != nil {
			watcher.Close()
		}
	}
	return coord, cleanup
}

// Execute performs one complete grab run with artifacts under outputDir.
func Execute(ctx context.Context, cfg *config.Config, outputDir, presentationURL string) (scraper.Result, error) {
	if err := prezi.ValidateURL(presentationURL); err != nil {
		return scraper.Result{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "invalid presentation URL", Cause: err}
	}
	shots, err := store.NewScreenshotStore(outputDir)
	if err != nil {
		return scraper.Result{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "prepare screenshot dir", Cause: err}
	}
	links, err := store.NewLinkStore(outputDir)
	if err != nil {
		return scraper.Result{}, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "prepare link file", Cause: err}
	}

	coord, cleanup := newCoordinator(cfg, shots, links)
	defer cleanup()
	res, err := coord.Run(ctx, presentationURL)

	if cfg.NotifyEndpoint != "" && err == nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if nerr := notifySend(notifyCtx, cfg.NotifyEndpoint, res); nerr != nil {
			slog.Warn("completion notification failed", "endpoint", cfg.NotifyEndpoint, "error", nerr)
		}
	}
	return res, err
}

// notifySend is split out so tests can stub the HTTP hop.
var notifySend = func(ctx context.Context, endpoint string, res scraper.Result) error {
	return notify.Send(ctx, http.DefaultClient, endpoint,
		notify.RunSummary(res.Title, res.SlidesProcessed, res.LinksFound))
}
