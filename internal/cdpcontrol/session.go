// Package cdpcontrol drives a single presentation tab in a running
// Chrome/Chromium instance over the DevTools protocol.
package cdpcontrol

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// transientHints are substrings in error causes that indicate the browser
// session itself is gone rather than a single command failing.
var transientHints = []string{
	"context canceled",
	"target closed",
	"session closed",
	"websocket",
	"connection reset",
	"broken pipe",
	"eof",
	"connection refused",
	"connection closed",
}

// fingerprint JS returns a compact string describing the observable page
// state. Prezi advances slides without changing the document, so the body
// text and element counts are what move between slides.
const jsFingerprint = `(() => {
	const b = document.body;
	if (!b) return location.href + "|no-body";
	return location.href + "|" + b.innerText.length + "|" + b.getElementsByTagName("*").length;
})()`

// Session owns one presentation tab: it opens the page, reads rendered
// content, captures screenshots, and simulates navigation key presses.
// Lifecycle is owned by the caller; Open must be called before any other
// operation and Close releases the tab and the CDP connection.
type Session struct {
	cdp         *rawCDP
	evalTimeout time.Duration

	sessionID     string
	targetID      string
	createdTarget bool
}

// NewSession creates a session against the CDP HTTP endpoint
// (e.g. "http://127.0.0.1:9222"). Nothing is dialed until Open.
func NewSession(cdpURL string, evalTimeout time.Duration) *Session {
	if evalTimeout <= 0 {
		evalTimeout = 5 * time.Second
	}
	return &Session{cdp: newRawCDP(cdpURL), evalTimeout: evalTimeout}
}

// Open connects to the browser, locates or creates a tab for the given URL,
// attaches to it, and waits for the document to finish loading.
func (s *Session) Open(ctx context.Context, url string, loadTimeout time.Duration) error {
	if err := s.cdp.connect(ctx); err != nil {
		return newError(CodeCDPUnavailable, "connect to browser", err)
	}

	targetID, created, err := s.findOrCreateTarget(ctx, url)
	if err != nil {
		return err
	}
	s.targetID = targetID
	s.createdTarget = created

	sessionID, err := s.cdp.attachToTarget(ctx, targetID)
	if err != nil {
		return s.sessionErr("attach to presentation tab", err)
	}
	s.sessionID = sessionID
	slog.Info("presentation tab attached", "target_id", targetID, "created", created)

	if err := s.waitLoaded(ctx, loadTimeout); err != nil {
		return err
	}
	return nil
}

// findOrCreateTarget reuses a page tab already showing the URL (the launcher
// may have started the browser with it) or opens a new one.
func (s *Session) findOrCreateTarget(ctx context.Context, url string) (string, bool, error) {
	targets, err := s.cdp.listTargets(ctx)
	if err != nil {
		return "", false, newError(CodeCDPUnavailable, "list browser targets", err)
	}
	for _, t := range targets {
		if t.Type == "page" && strings.HasPrefix(t.URL, url) {
			return string(t.TargetID), false, nil
		}
	}

	targetID, err := s.cdp.createTarget(ctx, url)
	if err != nil {
		return "", false, s.sessionErr("open presentation tab", err)
	}
	return targetID, true, nil
}

// waitLoaded polls document.readyState until the page reports complete.
func (s *Session) waitLoaded(ctx context.Context, timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return newError(CodeSessionLost, "wait for page load", ctx.Err())
		case <-deadline:
			return newError(CodePageLoadTimeout, "page did not finish loading", nil)
		case <-ticker.C:
			state, err := s.eval(ctx, "document.readyState")
			if err != nil {
				// The tab may still be mid-navigation; keep polling.
				slog.Debug("readyState poll failed", "error", err)
				continue
			}
			if state == "complete" {
				return nil
			}
		}
	}
}

// PageSource returns the rendered document markup.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	src, err := s.eval(ctx, "document.documentElement.outerHTML")
	if err != nil {
		return "", s.sessionErr("read page source", err)
	}
	return src, nil
}

// Title returns the document title, trimmed.
func (s *Session) Title(ctx context.Context) (string, error) {
	title, err := s.eval(ctx, "document.title")
	if err != nil {
		return "", s.sessionErr("read page title", err)
	}
	return strings.TrimSpace(title), nil
}

// Fingerprint returns an opaque string that changes when the visible page
// state changes. Used by the coordinator's navigation-stall heuristic.
func (s *Session) Fingerprint(ctx context.Context) (string, error) {
	fp, err := s.eval(ctx, jsFingerprint)
	if err != nil {
		return "", s.sessionErr("fingerprint page", err)
	}
	return fp, nil
}

// Screenshot captures the full page as PNG and returns the decoded bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()

	b64, err := s.cdp.captureScreenshot(evalCtx, s.sessionID, "png", 0, true)
	if err != nil {
		return nil, s.captureErr(err)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, newError(CodeCaptureFailure, "decode screenshot data", err)
	}
	return data, nil
}

// AdvanceSlide simulates the "next slide" key (right arrow) on the tab.
func (s *Session) AdvanceSlide(ctx context.Context) error {
	evalCtx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()

	if err := s.cdp.dispatchKeyEvent(evalCtx, s.sessionID, "ArrowRight", "ArrowRight", 39); err != nil {
		return s.sessionErr("dispatch next-slide key", err)
	}
	return nil
}

// TargetID exposes the attached tab's target ID so auxiliary observers
// (the embed watcher) can attach to the same tab.
func (s *Session) TargetID() string {
	return s.targetID
}

// Close detaches from the tab, closes it if this session opened it, and
// drops the CDP connection. Safe to call when Open failed part-way.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if s.sessionID != "" {
		_ = s.cdp.detachFromTarget(ctx, s.sessionID)
		s.sessionID = ""
	}
	if s.createdTarget && s.targetID != "" {
		_ = s.cdp.closeTarget(ctx, s.targetID)
	}
	s.targetID = ""
	s.cdp.close()
	return nil
}

func (s *Session) eval(ctx context.Context, js string) (string, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()
	return s.cdp.evaluate(evalCtx, s.sessionID, js)
}

// sessionErr wraps a failure as SESSION_LOST when the cause looks like a dead
// browser connection, CDP_UNAVAILABLE otherwise.
func (s *Session) sessionErr(msg string, cause error) error {
	if isTransient(cause) {
		return newError(CodeSessionLost, msg, cause)
	}
	return newError(CodeCDPUnavailable, msg, cause)
}

// captureErr keeps screenshot failures recoverable unless the session died.
func (s *Session) captureErr(cause error) error {
	if isTransient(cause) {
		return newError(CodeSessionLost, "capture screenshot", cause)
	}
	return newError(CodeCaptureFailure, "capture screenshot", cause)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}
