// Command grabber captures a public Prezi presentation: it steps through
// every slide, saves a screenshot per slide, and collects YouTube links
// found along the way.
//
// Usage:
//
//	grabber [flags] <presentation-url>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/prezi_grab/internal/browser"
	"github.com/dgnsrekt/prezi_grab/internal/cdpcontrol"
	"github.com/dgnsrekt/prezi_grab/internal/config"
	"github.com/dgnsrekt/prezi_grab/internal/prezi"
	"github.com/dgnsrekt/prezi_grab/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	output := flag.String("output", cfg.OutputDir, "directory for screenshots and the link file")
	maxSlides := flag.Int("max-slides", cfg.MaxSlides, "maximum number of slides to capture")
	stall := flag.Int("stall-threshold", cfg.StallThreshold, "unchanged navigation attempts before assuming the end")
	navDelay := flag.Int("nav-delay-ms", cfg.NavDelayMS, "settle time after each slide navigation, in milliseconds")
	loadTimeout := flag.Int("timeout-s", cfg.PageLoadTimeoutS, "page load timeout, in seconds")
	windowSize := flag.String("window-size", cfg.WindowSize, "browser window size as WIDTH,HEIGHT")
	headless := flag.Bool("headless", cfg.Headless, "run the browser without a visible window")
	noLaunch := flag.Bool("no-launch", false, "do not launch a browser, attach to an already running one")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <presentation-url>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	presentationURL := flag.Arg(0)
	if err := prezi.ValidateURL(presentationURL); err != nil {
		fmt.Fprintf(os.Stderr, "invalid presentation URL: %v\n", err)
		return 2
	}

	cfg.OutputDir = *output
	cfg.MaxSlides = *maxSlides
	cfg.StallThreshold = *stall
	cfg.NavDelayMS = *navDelay
	cfg.PageLoadTimeoutS = *loadTimeout
	cfg.WindowSize = *windowSize
	cfg.Headless = *headless

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*noLaunch {
		launcher := browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			Headless:   cfg.Headless,
			WindowSize: cfg.WindowSize,
		})
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("browser launch failed", "error", err)
			return 1
		}
		defer launcher.Stop()
	}

	res, err := runner.Execute(ctx, cfg, cfg.OutputDir, presentationURL)
	if err != nil {
		slog.Error("grab failed", "url", presentationURL, "error", err)
		var coded *cdpcontrol.CodedError
		if errors.As(err, &coded) && coded.Code == cdpcontrol.CodeValidation {
			return 2
		}
		return 1
	}

	fmt.Printf("Presentation: %s\n", res.Title)
	fmt.Printf("Slides captured: %d\n", res.SlidesProcessed)
	fmt.Printf("YouTube links found: %d\n", res.LinksFound)
	fmt.Printf("Screenshots: %s\n", res.ScreenshotDir)
	fmt.Printf("Link file: %s\n", res.LinkFile)
	return 0
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
