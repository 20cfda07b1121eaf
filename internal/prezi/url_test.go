package prezi

import "testing"

func TestValidateURLAccepted(t *testing.T) {
	cases := []struct {
		url  string
		name string
	}{
		{"https://prezi.com/p/marketing-deck/", "marketing-deck"},
		{"https://www.prezi.com/p/marketing-deck/", "marketing-deck"},
		{"https://prezi.com/p/x", "x"},
		{"https://PREZI.com/p/abc-123/", "abc-123"},
	}
	for _, tc := range cases {
		name, err := PresentationName(tc.url)
		if err != nil {
			t.Errorf("PresentationName(%q) error = %v; want accept", tc.url, err)
			continue
		}
		if name != tc.name {
			t.Errorf("PresentationName(%q) = %q; want %q", tc.url, name, tc.name)
		}
	}
}

func TestValidateURLRejected(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not a url",
		"http://prezi.com/p/deck/",
		"https://prezi.com/",
		"https://prezi.com/p/",
		"https://prezi.com/p//",
		"https://prezi.com/explore/deck/",
		"https://prezi.com/p/deck/extra/",
		"https://notprezi.com/p/deck/",
		"https://prezi.com.evil.example/p/deck/",
		"https://youtube.com/watch?v=abc123",
		"ftp://prezi.com/p/deck/",
	}
	for _, url := range cases {
		if err := ValidateURL(url); err == nil {
			t.Errorf("ValidateURL(%q) = nil; want reject", url)
		}
	}
}
