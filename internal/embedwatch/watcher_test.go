package embedwatch

import (
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"

	"github.com/dgnsrekt/prezi_grab/internal/youtube"
)

func TestHandleEventReportsOnlyYouTubeTraffic(t *testing.T) {
	var got []youtube.Link
	w := New(func(link youtube.Link, source string) {
		if source != youtube.SourceNetwork {
			t.Errorf("source = %q, want %q", source, youtube.SourceNetwork)
		}
		got = append(got, link)
	})

	events := []interface{}{
		&network.EventRequestWillBeSent{Request: &network.Request{URL: "https://prezi.com/api/v1/slides"}},
		&network.EventRequestWillBeSent{Request: &network.Request{URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}},
		&network.EventRequestWillBeSent{Request: &network.Request{URL: "https://fonts.gstatic.com/s/roboto.woff2"}},
		&page.EventFrameNavigated{Frame: &cdp.Frame{URL: "https://youtu.be/xyz789"}},
		&network.EventLoadingFinished{},
	}
	for _, ev := range events {
		w.handleEvent(ev)
	}

	if len(got) != 2 {
		t.Fatalf("reported %d links, want 2: %+v", len(got), got)
	}
	if got[0].URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("first link = %q", got[0].URL)
	}
	if got[1].URL != "https://youtu.be/xyz789" {
		t.Errorf("second link = %q", got[1].URL)
	}
}
