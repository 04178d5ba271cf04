package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // Timezone database for hosts without zoneinfo

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string // Empty disables the bot and alert delivery
	OwnerTelegramID  int64  // Chat that receives reminder alerts
	DatabaseDriver   string // "sqlite" or "postgres"
	DatabaseURL      string
	LogLevel         string
	Environment      string
	WeekStart        time.Weekday
	Location         *time.Location
	HTTPListen       string // Empty disables the HTTP API
	CronSpecSweep    string // Cleanup sweep for duplicate reminders
	ShutdownTimeout  time.Duration
	TelegramPollTime time.Duration
}

// BotEnabled reports whether the Telegram bot should be started.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{
		ShutdownTimeout:  10 * time.Second,
		TelegramPollTime: 10 * time.Second,
	}
	var err error

	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")

	ownerIDStr := getenv("OWNER_TELEGRAM_ID")
	if ownerIDStr != "" {
		cfg.OwnerTelegramID, err = strconv.ParseInt(ownerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.OwnerTelegramID == 0 {
		return nil, fmt.Errorf("OWNER_TELEGRAM_ID is not set")
	}

	cfg.DatabaseDriver = strings.ToLower(getenv("DATABASE_DRIVER"))
	switch cfg.DatabaseDriver {
	case "":
		cfg.DatabaseDriver = "sqlite"
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want sqlite or postgres)", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseDriver == "postgres" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		cfg.DatabaseURL = "file:oneday.db" // Local store next to the binary
	}

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	switch weekStart := strings.ToLower(getenv("WEEK_START")); weekStart {
	case "", "sunday":
		cfg.WeekStart = time.Sunday
	case "monday":
		cfg.WeekStart = time.Monday
	default:
		return nil, fmt.Errorf("invalid WEEK_START %q (want sunday or monday)", weekStart)
	}

	tz := getenv("TIMEZONE")
	if tz == "" {
		tz = "Asia/Seoul"
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	// HTTP_LISTEN="" keeps the default; "off" disables the API.
	cfg.HTTPListen = getenv("HTTP_LISTEN")
	switch cfg.HTTPListen {
	case "":
		cfg.HTTPListen = ":8080"
	case "off":
		cfg.HTTPListen = ""
	}

	cfg.CronSpecSweep = getenv("CRON_SPEC_REMINDER_SWEEP")
	if cfg.CronSpecSweep == "" {
		cfg.CronSpecSweep = "0 4 * * *" // Default: 04:00 daily
	}

	return cfg, nil
}
