package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/dgnsrekt/prezi_grab/internal/runner"
)

func TestRequestLoggerTagsMatchedRoute(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ts := newTestServer(&stubService{runs: map[string]runner.RunInfo{
		"run-1": {ID: "run-1", State: "finished"},
	}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/runs/run-1")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "route=/api/v1/runs/{run_id}") {
		t.Errorf("log output missing route pattern: %q", out)
	}
	if !strings.Contains(out, "path=/api/v1/runs/run-1") {
		t.Errorf("log output missing raw path: %q", out)
	}
}
