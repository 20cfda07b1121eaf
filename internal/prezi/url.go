package prezi

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that rawURL is a recognized Prezi presentation URL of
// the form https://prezi.com/p/<name>/ or https://www.prezi.com/p/<name>/.
// Any other shape is rejected before a browser session is opened.
func ValidateURL(rawURL string) error {
	_, err := PresentationName(rawURL)
	return err
}

// PresentationName extracts the <name> path segment from a valid Prezi
// presentation URL.
func PresentationName(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("presentation URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse presentation URL: %w", err)
	}

	if u.Scheme != "https" {
		return "", fmt.Errorf("presentation URL must use https, got %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host != "prezi.com" && host != "www.prezi.com" {
		return "", fmt.Errorf("not a prezi.com URL: %q", u.Hostname())
	}

	// Path must be exactly /p/<name> with an optional trailing slash.
	path := strings.TrimSuffix(u.Path, "/")
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) != 2 || segments[0] != "p" || segments[1] == "" {
		return "", fmt.Errorf("not a presentation path: %q (want /p/<name>/)", u.Path)
	}

	return segments[1], nil
}
