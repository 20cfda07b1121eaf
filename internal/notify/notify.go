// Package notify posts plain-text run summaries to an NTFY-style webhook.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RunSummary formats the completion message posted after a grab run.
func RunSummary(title string, slides, links int) string {
	name := title
	if name == "" {
		name = "presentation"
	}
	return fmt.Sprintf("Finished grabbing %q: %d slides captured, %d YouTube links found.", name, slides, links)
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
