package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for one grab run: the browser connection, the
// slide walk, and where the artifacts land.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Browser launch settings
	Headless   bool
	WindowSize string

	// Slide walk behavior
	MaxSlides        int
	StallThreshold   int
	NavDelayMS       int
	PageLoadTimeoutS int
	EvalTimeoutMS    int
	WatchEmbeds      bool

	// Output settings
	OutputDir string

	// Logging
	LogLevel string
	LogFile  string

	// Optional completion webhook
	NotifyEndpoint string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:       getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		Headless:         getEnvBoolOrDefault("GRABBER_HEADLESS", true),
		WindowSize:       getEnvOrDefault("GRABBER_WINDOW_SIZE", "1920,1080"),
		MaxSlides:        getEnvIntOrDefault("GRABBER_MAX_SLIDES", 50),
		StallThreshold:   getEnvIntOrDefault("GRABBER_STALL_THRESHOLD", 3),
		NavDelayMS:       getEnvIntOrDefault("GRABBER_NAV_DELAY_MS", 1500),
		PageLoadTimeoutS: getEnvIntOrDefault("GRABBER_PAGE_LOAD_TIMEOUT_S", 30),
		EvalTimeoutMS:    getEnvIntOrDefault("GRABBER_EVAL_TIMEOUT_MS", 5000),
		WatchEmbeds:      getEnvBoolOrDefault("GRABBER_WATCH_EMBEDS", true),
		OutputDir:        getEnvOrDefault("GRABBER_OUTPUT_DIR", "./prezi_output"),
		LogLevel:         strings.ToLower(getEnvOrDefault("GRABBER_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("GRABBER_LOG_FILE", "logs/prezi_grab.log"),
		NotifyEndpoint:   getEnvOrDefault("GRABBER_NOTIFY_ENDPOINT", ""),
	}

	if cfg.MaxSlides < 1 {
		cfg.MaxSlides = 1
	}
	if cfg.StallThreshold < 1 {
		cfg.StallThreshold = 1
	}
	if cfg.EvalTimeoutMS < 1000 {
		cfg.EvalTimeoutMS = 1000
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint for both the raw session driver and
// the chromedp remote allocator.
func (c *Config) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func (c *Config) NavDelay() time.Duration { return time.Duration(c.NavDelayMS) * time.Millisecond }

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutS) * time.Second
}

func (c *Config) EvalTimeout() time.Duration {
	return time.Duration(c.EvalTimeoutMS) * time.Millisecond
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
