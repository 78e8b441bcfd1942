package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the agent.
type AppConfig struct {
	APIBaseURL string
	APIToken   string
	CallerKey  string // scopes the local snapshot row; one per student session

	PollInterval           time.Duration
	SettleDelay            time.Duration
	CycleTimeout           time.Duration
	RecentResolutionWindow time.Duration // missed-transition heuristic bound

	SnapshotDBPath string
	FlagsReviewURL string

	StatusToastDuration   time.Duration
	ResponseToastDuration time.Duration
	ToastOffsetStep       int

	IdentityProbeInterval time.Duration
	IdentityProbeAttempts int

	ListenAddr  string
	LogLevel    string
	Environment string

	// Optional Telegram mirroring of notifications.
	TelegramToken  string
	TelegramChatID int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is not set")
	}

	cfg.APIToken = os.Getenv("API_TOKEN")
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("API_TOKEN is not set")
	}

	cfg.CallerKey = stringEnv("CALLER_KEY", "default")

	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = durationEnv("SETTLE_DELAY", 1*time.Second); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = durationEnv("CYCLE_TIMEOUT", 1*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RecentResolutionWindow, err = durationEnv("RECENT_RESOLUTION_WINDOW", 2*time.Hour); err != nil {
		return nil, err
	}

	cfg.SnapshotDBPath = stringEnv("SNAPSHOT_DB_PATH", "data/flag_snapshots.db")
	cfg.FlagsReviewURL = stringEnv("FLAGS_REVIEW_URL", "/my-flags")

	if cfg.StatusToastDuration, err = durationEnv("STATUS_TOAST_DURATION", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResponseToastDuration, err = durationEnv("RESPONSE_TOAST_DURATION", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.ToastOffsetStep, err = intEnv("TOAST_OFFSET_STEP", 80); err != nil {
		return nil, err
	}

	if cfg.IdentityProbeInterval, err = durationEnv("IDENTITY_PROBE_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.IdentityProbeAttempts, err = intEnv("IDENTITY_PROBE_ATTEMPTS", 20); err != nil {
		return nil, err
	}

	cfg.ListenAddr = stringEnv("LISTEN_ADDR", ":8090")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	return cfg, nil
}

func stringEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
