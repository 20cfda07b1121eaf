// Package embedwatch observes network traffic of a presentation tab and
// reports YouTube player loads that never surface in the page markup, such
// as embeds created inside cross-origin iframes.
package embedwatch

import (
	"context"
	"log/slog"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/prezi_grab/internal/youtube"
)

// ReportFunc receives every YouTube link spotted on the wire. Callers are
// expected to deduplicate; the watcher reports raw sightings.
type ReportFunc func(link youtube.Link, source string)

// Watcher attaches to an already-open browser tab over a second CDP
// connection and listens for outgoing requests.
type Watcher struct {
	report      ReportFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
}

func New(report ReportFunc) *Watcher {
	return &Watcher{report: report}
}

// Attach connects to the browser at cdpURL and subscribes to network events
// of the given page target. A failed attach only loses the network-sourced
// links, never the run.
func (w *Watcher) Attach(ctx context.Context, cdpURL string, targetID string) error {
	w.allocCtx, w.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cdpURL)

	tabCtx, tabCancel := chromedp.NewContext(w.allocCtx, chromedp.WithTargetID(target.ID(targetID)))
	w.tabCancel = tabCancel

	runCtx := tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}
	if err := chromedp.Run(runCtx, network.Enable()); err != nil {
		w.Close()
		return err
	}

	chromedp.ListenTarget(tabCtx, w.handleEvent)
	slog.Info("embed watcher attached", "target_id", targetID)
	return nil
}

func (w *Watcher) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		w.inspect(e.Request.URL)
	case *page.EventFrameNavigated:
		w.inspect(e.Frame.URL)
	}
}

func (w *Watcher) inspect(url string) {
	link, ok := youtube.FromURL(url)
	if !ok {
		return
	}
	slog.Debug("youtube request observed", "url", url)
	w.report(link, youtube.SourceNetwork)
}

// Close drops the watcher's CDP connection. The watched tab stays open; it
// belongs to the session driver, not to the watcher.
func (w *Watcher) Close() {
	if w.tabCancel != nil {
		w.tabCancel()
		w.tabCancel = nil
	}
	if w.allocCancel != nil {
		w.allocCancel()
		w.allocCancel = nil
	}
}
