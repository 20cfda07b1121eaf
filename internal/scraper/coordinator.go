// Package scraper walks a Prezi presentation slide by slide, capturing a
// screenshot and harvesting YouTube links at every stop.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/prezi"
	"github.com/dgnsrekt/prezi_grab/internal/store"
	"github.com/dgnsrekt/prezi_grab/internal/youtube"
)

// State of one coordinator run.
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PageDriver is the narrow browser capability the coordinator depends on.
// cdpcontrol.Session is the real implementation; tests inject fakes.
type PageDriver interface {
	Open(ctx context.Context, url string, loadTimeout time.Duration) error
	Title(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	AdvanceSlide(ctx context.Context) error
	Fingerprint(ctx context.Context) (string, error)
	Close() error
}

// Options tune the slide walk. Zero values fall back to defaults matching
// typical Prezi decks.
type Options struct {
	// MaxSlides caps how many slides are captured.
	MaxSlides int
	// StallThreshold is how many consecutive no-change navigation attempts
	// signal the end of the presentation.
	StallThreshold int
	// NavDelay is the settle time after each navigation key press.
	NavDelay time.Duration
	// PageLoadTimeout bounds the initial page load.
	PageLoadTimeout time.Duration
	// OnSessionReady runs once after the presentation tab is open, before
	// the first capture. Used to attach auxiliary observers.
	OnSessionReady func(ctx context.Context)
}

const (
	DefaultMaxSlides       = 50
	DefaultStallThreshold  = 3
	DefaultNavDelay        = 1500 * time.Millisecond
	DefaultPageLoadTimeout = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxSlides <= 0 {
		o.MaxSlides = DefaultMaxSlides
	}
	if o.StallThreshold <= 0 {
		o.StallThreshold = DefaultStallThreshold
	}
	if o.NavDelay <= 0 {
		o.NavDelay = DefaultNavDelay
	}
	if o.PageLoadTimeout <= 0 {
		o.PageLoadTimeout = DefaultPageLoadTimeout
	}
	return o
}

// Result summarizes a finished run.
type Result struct {
	Title           string `json:"title,omitempty"`
	SlidesProcessed int    `json:"slides_processed"`
	LinksFound      int    `json:"links_found"`
	ScreenshotDir   string `json:"screenshot_dir"`
	LinkFile        string `json:"link_file"`
}

// Coordinator owns one run: the browser session lifecycle, the slide loop,
// and the output stores. It is single-use; create a new Coordinator per run.
type Coordinator struct {
	driver PageDriver
	shots  *store.ScreenshotStore
	links  *store.LinkStore
	opts   Options

	mu    sync.Mutex
	state State
}

func New(driver PageDriver, shots *store.ScreenshotStore, links *store.LinkStore, opts Options) *Coordinator {
	return &Coordinator{
		driver: driver,
		shots:  shots,
		links:  links,
		opts:   opts.withDefaults(),
		state:  StateIdle,
	}
}

// State returns the current run state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ReportLink records an externally discovered link (e.g. from the network
// embed watcher). Safe to call concurrently with the slide loop.
func (c *Coordinator) ReportLink(link youtube.Link, source string) {
	added, err := c.links.Add(store.LinkRecord{
		URL:         link.URL,
		VideoID:     link.VideoID,
		Source:      source,
		ExtractedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("record link failed", "url", link.URL, "error", err)
		return
	}
	if added {
		slog.Info("youtube link found", "url", link.URL, "source", source)
	}
}

// Run executes the full Idle → Navigating → Finished walk for one
// presentation. Per-slide failures are logged and skipped; session failures
// abort with a non-nil error. The browser session is released and the link
// file flushed on every exit path.
func (c *Coordinator) Run(ctx context.Context, presentationURL string) (Result, error) {
	res := Result{ScreenshotDir: c.shots.Dir(), LinkFile: c.links.Path()}

	if c.State() != StateIdle {
		return res, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "coordinator already used"}
	}
	if err := prezi.ValidateURL(presentationURL); err != nil {
		c.setState(StateFinished)
		if cerr := c.links.Close(); cerr != nil {
			slog.Warn("link file flush failed", "error", cerr)
		}
		return res, &cdpcontrol.CodedError{Code: cdpcontrol.CodeValidation, Message: "invalid presentation URL", Cause: err}
	}

	c.setState(StateNavigating)
	defer c.setState(StateFinished)
	defer func() {
		if err := c.driver.Close(); err != nil {
			slog.Warn("session close failed", "error", err)
		}
		if err := c.links.Close(); err != nil {
			slog.Warn("link file flush failed", "error", err)
		}
	}()

	slog.Info("opening presentation", "url", presentationURL)
	if err := c.driver.Open(ctx, presentationURL, c.opts.PageLoadTimeout); err != nil {
		return res, err
	}
	if c.opts.OnSessionReady != nil {
		c.opts.OnSessionReady(ctx)
	}

	if title, err := c.driver.Title(ctx); err == nil && title != "" {
		res.Title = title
		slog.Info("processing presentation", "title", title)
	}

	fp, err := c.driver.Fingerprint(ctx)
	if err != nil {
		return res, err
	}

	slide := 1
	for {
		if err := ctx.Err(); err != nil {
			res.SlidesProcessed = slide - 1
			res.LinksFound = c.links.Count()
			return res, &cdpcontrol.CodedError{Code: cdpcontrol.CodeSessionLost, Message: "run cancelled", Cause: err}
		}

		if err := c.processSlide(ctx, slide); err != nil {
			res.SlidesProcessed = slide - 1
			res.LinksFound = c.links.Count()
			return res, err
		}

		advanced, err := c.advance(ctx, &fp, slide)
		if err != nil {
			res.SlidesProcessed = slide
			res.LinksFound = c.links.Count()
			return res, err
		}
		if !advanced {
			break
		}
		slide++
	}

	res.SlidesProcessed = slide
	res.LinksFound = c.links.Count()
	slog.Info("run finished",
		"slides_processed", res.SlidesProcessed,
		"links_found", res.LinksFound,
		"screenshot_dir", res.ScreenshotDir,
		"link_file", res.LinkFile,
	)
	return res, nil
}

// processSlide captures the current slide and extracts links from its
// markup. Only a lost session is propagated; everything else is logged and
// the run continues.
func (c *Coordinator) processSlide(ctx context.Context, slide int) error {
	data, err := c.driver.Screenshot(ctx)
	if err != nil {
		if isFatal(err) {
			return err
		}
		slog.Warn("screenshot failed, skipping slide capture", "slide", slide, "error", err)
	} else if path, err := c.shots.Save(slide, data); err != nil {
		slog.Warn("screenshot write failed", "slide", slide, "error", err)
	} else {
		slog.Debug("screenshot saved", "slide", slide, "path", path)
	}

	src, err := c.driver.PageSource(ctx)
	if err != nil {
		if isFatal(err) {
			return err
		}
		slog.Warn("page source read failed, skipping extraction", "slide", slide, "error", err)
		return nil
	}
	for _, link := range youtube.Extract(src) {
		c.ReportLink(link, youtube.SourcePage)
	}
	return nil
}

// advance presses the next-slide key until the page fingerprint changes.
// It gives up after exactly StallThreshold unchanged attempts, or
// immediately when the slide cap is reached.
func (c *Coordinator) advance(ctx context.Context, fp *string, slide int) (bool, error) {
	if slide >= c.opts.MaxSlides {
		slog.Info("max slide count reached", "max_slides", c.opts.MaxSlides)
		return false, nil
	}

	for attempt := 1; attempt <= c.opts.StallThreshold; attempt++ {
		if err := c.driver.AdvanceSlide(ctx); err != nil {
			return false, err
		}
		if err := sleepCtx(ctx, c.opts.NavDelay); err != nil {
			return false, &cdpcontrol.CodedError{Code: cdpcontrol.CodeSessionLost, Message: "run cancelled", Cause: err}
		}
		next, err := c.driver.Fingerprint(ctx)
		if err != nil {
			return false, err
		}
		if next != *fp {
			*fp = next
			return true, nil
		}
		slog.Debug("navigation produced no page change", "slide", slide, "attempt", attempt)
	}

	slog.Info("navigation stalled, assuming end of presentation",
		"slide", slide, "attempts", c.opts.StallThreshold)
	return false, nil
}

// isFatal reports whether a per-slide failure actually means the session is
// gone and the run must abort.
func isFatal(err error) bool {
	var coded *cdpcontrol.CodedError
	if errors.As(err, &coded) {
		return coded.Code == cdpcontrol.CodeSessionLost || coded.Code == cdpcontrol.CodeCDPUnavailable
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
