// Package youtube extracts YouTube video links from rendered page markup.
package youtube

import (
	"regexp"
	"sort"
)

// Link discovery sources.
const (
	SourcePage    = "page_source"
	SourceNetwork = "network"
)

// Link is a discovered YouTube video reference in canonical URL form.
type Link struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id"`
}

// pattern couples a URL-shape regex with its canonical rendering. The video
// ID is always capture group 1. Short links keep their youtu.be form; all
// youtube.com shapes canonicalize to the watch form.
type pattern struct {
	re    *regexp.Regexp
	short bool
}

var patterns = []pattern{
	{re: regexp.MustCompile(`(?i)https?://(?:www\.|m\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]+)`)},
	{re: regexp.MustCompile(`(?i)https?://(?:www\.|m\.)?youtube\.com/embed/([a-zA-Z0-9_-]+)`)},
	{re: regexp.MustCompile(`(?i)https?://(?:www\.|m\.)?youtube\.com/v/([a-zA-Z0-9_-]+)`)},
	{re: regexp.MustCompile(`(?i)https?://youtu\.be/([a-zA-Z0-9_-]+)`), short: true},
}

func (p pattern) canonical(videoID string) string {
	if p.short {
		return "https://youtu.be/" + videoID
	}
	return "https://www.youtube.com/watch?v=" + videoID
}

// Extract scans raw page markup for YouTube URL shapes (watch, embed, legacy
// /v/, and youtu.be short links) and returns the distinct canonical links in
// order of first appearance. Pure function: no side effects, no network
// access. Near-miss domains (e.g. notyoutube.com) never match because each
// pattern anchors the host directly after the scheme.
func Extract(pageSource string) []Link {
	type match struct {
		pos  int
		link Link
	}
	var found []match
	for _, p := range patterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(pageSource, -1) {
			id := pageSource[idx[2]:idx[3]]
			found = append(found, match{pos: idx[0], link: Link{URL: p.canonical(id), VideoID: id}})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	seen := make(map[string]struct{})
	var links []Link
	for _, m := range found {
		if _, dup := seen[m.link.URL]; dup {
			continue
		}
		seen[m.link.URL] = struct{}{}
		links = append(links, m.link)
	}
	return links
}

// FromURL canonicalizes a single URL (for example an iframe src or a network
// request URL) when it is one of the recognized YouTube shapes.
func FromURL(rawURL string) (Link, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(rawURL)
		if m == nil || p.re.FindStringIndex(rawURL)[0] != 0 {
			continue
		}
		return Link{URL: p.canonical(m[1]), VideoID: m[1]}, true
	}
	return Link{}, false
}
