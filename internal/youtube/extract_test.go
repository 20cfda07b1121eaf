package youtube

import (
	"reflect"
	"testing"
)

func urls(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.URL)
	}
	return out
}

func TestExtractDeduplicates(t *testing.T) {
	src := `<html>
		<a href="https://www.youtube.com/watch?v=abc123">first</a>
		<p>see https://www.youtube.com/watch?v=abc123 again</p>
		<a href="https://youtu.be/xyz789">short</a>
	</html>`

	got := urls(Extract(src))
	want := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://youtu.be/xyz789",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v; want %v", got, want)
	}
}

func TestExtractCanonicalizesShapes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "embed",
			src:  `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1">`,
			want: []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "legacy v path",
			src:  `http://youtube.com/v/dQw4w9WgXcQ`,
			want: []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "mobile host",
			src:  `https://m.youtube.com/watch?v=dQw4w9WgXcQ`,
			want: []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "watch and embed of same video collapse",
			src:  `https://www.youtube.com/watch?v=dQw4w9WgXcQ https://youtube.com/embed/dQw4w9WgXcQ`,
			want: []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "short link keeps youtu.be form",
			src:  `https://youtu.be/dQw4w9WgXcQ`,
			want: []string{"https://youtu.be/dQw4w9WgXcQ"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := urls(Extract(tc.src))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Extract(%q) = %v; want %v", tc.src, got, tc.want)
			}
		})
	}
}

func TestExtractPreservesDocumentOrderAcrossShapes(t *testing.T) {
	src := `<html>
		<iframe src="https://www.youtube.com/embed/first11"></iframe>
		<a href="https://youtu.be/second2">clip</a>
		<a href="https://www.youtube.com/watch?v=third33">video</a>
	</html>`

	got := urls(Extract(src))
	want := []string{
		"https://www.youtube.com/watch?v=first11",
		"https://youtu.be/second2",
		"https://www.youtube.com/watch?v=third33",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v; want %v", got, want)
	}
}

func TestExtractNoFalsePositives(t *testing.T) {
	cases := []string{
		"",
		"no links here at all",
		"https://notyoutube.com/watch?v=abc123",
		"https://example.com/watch?v=abc123",
		"https://vimeo.com/12345",
		"https://youtube.co.uk/watch?v=abc123",
		"youtube.com/watch?v=abc123",
	}
	for _, src := range cases {
		if got := Extract(src); len(got) != 0 {
			t.Errorf("Extract(%q) = %v; want none", src, got)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	got := Extract(`https://www.youtube.com/watch?v=abc123`)
	if len(got) != 1 || got[0].VideoID != "abc123" {
		t.Fatalf("Extract() = %v; want single link with video id abc123", got)
	}
}

func TestFromURL(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/abc123", "https://youtu.be/abc123", true},
		{"https://prezi.com/p/deck/", "", false},
		{"https://example.com/?next=https://www.youtube.com/watch?v=abc123", "", false},
	}
	for _, tc := range cases {
		link, ok := FromURL(tc.raw)
		if ok != tc.ok {
			t.Errorf("FromURL(%q) ok = %v; want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && link.URL != tc.want {
			t.Errorf("FromURL(%q) = %q; want %q", tc.raw, link.URL, tc.want)
		}
	}
}
