// ABOUTME: Centralized configuration for the mealstreak CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
	"github.com/harper/mealstreak/internal/storage/sqlite"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Config holds all configuration for mealstreak
type Config struct {
	// Storage settings
	Backend string
	DBPath  string
	UserID  string

	// Charm settings
	CharmHost    string
	CharmDBName  string
	AutoSync     bool
	CharmOffline bool

	// Streak settings
	DayRule      string
	TrailingDays int
	WeekStart    string
	Timezone     string

	// Caller-side retry of failed store calls
	MaxRetries int
	RetryDelay time.Duration

	AuthPoll time.Duration
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Backend:      strings.ToLower(getEnv("MEALSTREAK_BACKEND", BackendSQLite)),
		DBPath:       getEnv("MEALSTREAK_DB", sqlite.DefaultDBPath()),
		UserID:       getEnv("MEALSTREAK_USER", "local"),
		CharmHost:    getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:  getEnv("CHARM_DB", "mealstreak"),
		AutoSync:     getEnvBool("CHARM_AUTO_SYNC", true),
		CharmOffline: getEnvBool("CHARM_OFFLINE", false),
		DayRule:      getEnv("MEALSTREAK_DAY_RULE", string(models.RuleAnyMeal)),
		TrailingDays: getEnvInt("MEALSTREAK_TRAILING_DAYS", 30),
		WeekStart:    getEnv("MEALSTREAK_WEEK_START", "monday"),
		Timezone:     getEnv("MEALSTREAK_TIMEZONE", "Local"),
		MaxRetries:   getEnvInt("MEALSTREAK_MAX_RETRIES", 3),
		RetryDelay:   getEnvDuration("MEALSTREAK_RETRY_DELAY", 500*time.Millisecond),
		AuthPoll:     getEnvDuration("MEALSTREAK_AUTH_POLL", 30*time.Second),
		LogLevel:     getEnv("MEALSTREAK_LOG_LEVEL", "info"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Backend != BackendSQLite && c.Backend != BackendCharm {
		return fmt.Errorf("MEALSTREAK_BACKEND must be %s or %s, got %q", BackendSQLite, BackendCharm, c.Backend)
	}
	if c.Backend == BackendSQLite && strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("MEALSTREAK_USER cannot be empty for the %s backend", BackendSQLite)
	}
	if strings.Contains(c.UserID, storage.UserIDSeparator) {
		return fmt.Errorf("MEALSTREAK_USER cannot contain %q, got %q", storage.UserIDSeparator, c.UserID)
	}
	if _, err := models.ParseDayRule(c.DayRule); err != nil {
		return fmt.Errorf("MEALSTREAK_DAY_RULE: %w", err)
	}
	if c.TrailingDays < 1 || c.TrailingDays > 366 {
		return fmt.Errorf("MEALSTREAK_TRAILING_DAYS must be 1-366, got %d", c.TrailingDays)
	}
	if _, err := ParseWeekday(c.WeekStart); err != nil {
		return fmt.Errorf("MEALSTREAK_WEEK_START: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("MEALSTREAK_TIMEZONE: %w", err)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MEALSTREAK_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("MEALSTREAK_RETRY_DELAY must not be negative, got %v", c.RetryDelay)
	}
	if c.AuthPoll <= 0 {
		return fmt.Errorf("MEALSTREAK_AUTH_POLL must be positive, got %v", c.AuthPoll)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("MEALSTREAK_LOG_LEVEL: %w", err)
	}
	return nil
}

// Rule returns the parsed day rule. Call Validate first.
func (c *Config) Rule() models.DayRule {
	rule, err := models.ParseDayRule(c.DayRule)
	if err != nil {
		return models.RuleAnyMeal
	}
	return rule
}

// FirstWeekday returns the parsed week start. Call Validate first.
func (c *Config) FirstWeekday() time.Weekday {
	day, err := ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Monday
	}
	return day
}

// Location returns the zone used for day boundaries. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ParseWeekday accepts full or three-letter English day names
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
