// Package api exposes grab runs over an HTTP control surface.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/runner"
	"github.com/dgnsrekt/prezi_grab/internal/store"
)

type Service interface {
	StartRun(ctx context.Context, presentationURL string) (runner.RunInfo, error)
	GetRun(id string) (runner.RunInfo, error)
	ListRuns() []runner.RunInfo
	CancelRun(id string) error
	ListLinks(id string) ([]store.LinkRecord, error)
	ListScreenshots(id string) ([]store.ScreenshotMeta, error)
	ReadScreenshot(id, name string) ([]byte, error)
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Prezi Grab API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerRunHandlers(api, svc)
	registerArtifactHandlers(api, svc)
	registerMiscHandlers(api)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *cdpcontrol.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case cdpcontrol.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case cdpcontrol.CodeRunNotFound, cdpcontrol.CodeTargetNotFound:
			return huma.Error404NotFound(coded.Message)
		case cdpcontrol.CodeBusy:
			return huma.Error409Conflict(coded.Message)
		case cdpcontrol.CodePageLoadTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case cdpcontrol.CodeCDPUnavailable, cdpcontrol.CodeSessionLost:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
