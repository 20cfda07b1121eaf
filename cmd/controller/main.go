// Command controller runs the long-lived grab service: it keeps a browser
// alive and exposes runs, links, and screenshots over an HTTP API.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/prezi_grab/internal/api"
	"github.com/dgnsrekt/prezi_grab/internal/browser"
	"github.com/dgnsrekt/prezi_grab/internal/config"
	"github.com/dgnsrekt/prezi_grab/internal/netutil"
	"github.com/dgnsrekt/prezi_grab/internal/runner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	svcCfg, err := config.LoadService()
	if err != nil {
		slog.Error("failed to load service config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("controller config loaded",
		"bind_addr", svcCfg.BindAddr,
		"cdp_url", cfg.CDPURL(),
		"output_dir", cfg.OutputDir,
		"max_slides", cfg.MaxSlides,
		"stall_threshold", cfg.StallThreshold,
		"watch_embeds", cfg.WatchEmbeds,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(svcCfg.BindAddr, svcCfg.PortCandidates, svcCfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", svcCfg.BindAddr, "error", err)
		os.Exit(1)
	}

	launcher := browser.NewLauncher(browser.Config{
		CDPAddress: cfg.CDPAddress,
		CDPPort:    cfg.CDPPort,
		Headless:   cfg.Headless,
		WindowSize: cfg.WindowSize,
	})
	if err := launcher.Launch(context.Background()); err != nil {
		slog.Error("browser launch failed", "error", err)
		os.Exit(1)
	}
	defer launcher.Stop()

	svc := runner.NewService(cfg)
	h := api.NewServer(svc)

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("controller listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("controller server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	svc.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("controller shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
