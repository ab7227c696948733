package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	defaultDepartments = []string{"Admin", "Sales", "Support", "Engineering"}
	defaultChannels    = []string{"Email", "Phone", "Chat", "Meeting", "Other"}
	defaultPriorities  = []string{"High", "Med", "Low"}
)

// Config keeps runtime settings for the report server.
type Config struct {
	DatabasePath   string
	HTTPAddr       string
	FixedFields    bool
	Departments    []string
	Channels       []string
	Priorities     []string
	Location       *time.Location
	DigestSchedule string
	TelegramToken  string
	TelegramChatID int64
}

// DigestEnabled reports whether a cron schedule for the daily digest is set.
func (c Config) DigestEnabled() bool {
	return c.DigestSchedule != ""
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment. Variables
// that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabasePath:   strings.TrimSpace(os.Getenv("DATABASE_PATH")),
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		Departments:    parseList(os.Getenv("REPORT_DEPARTMENTS"), defaultDepartments),
		Channels:       parseList(os.Getenv("REPORT_CHANNELS"), defaultChannels),
		Priorities:     parseList(os.Getenv("REPORT_PRIORITIES"), defaultPriorities),
		DigestSchedule: strings.TrimSpace(os.Getenv("DIGEST_SCHEDULE")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "task.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if raw := strings.TrimSpace(os.Getenv("REPORT_FIXED_FIELDS")); raw != "" {
		fixed, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("REPORT_FIXED_FIELDS: invalid bool %q", raw)
		}
		cfg.FixedFields = fixed
	}

	loc, err := loadLocation(strings.TrimSpace(os.Getenv("TZ_NAME")))
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: invalid id %q", raw)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME: %w", err)
	}
	return loc, nil
}

func parseList(raw string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
