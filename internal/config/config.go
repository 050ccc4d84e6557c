package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jizhang/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Ledger
	Timezone     string
	WeekAnchor   string
	WeeklyBudget string
	Members      string
	CacheSize    int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/jizhang.db"),

		Timezone:     getEnv("TIMEZONE", "Asia/Taipei"),
		WeekAnchor:   getEnv("WEEK_ANCHOR", "Saturday"),
		WeeklyBudget: getEnv("WEEKLY_BUDGET", ""),
		Members:      getEnv("MEMBERS", ""),
		CacheSize:    getEnvInt("CACHE_SIZE", 1000),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jizhang"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Validate checks the configuration and returns one error listing every
// problem found, so a broken deployment fails with the full picture.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if _, ok := weekdays[strings.ToLower(c.WeekAnchor)]; !ok {
		errors = append(errors, fmt.Sprintf("invalid week anchor '%s': must be a weekday name", c.WeekAnchor))
	}

	// Budget is optional: empty or zero means no budget, so the weekly
	// remainder reports the plain negated total.
	if c.WeeklyBudget != "" {
		if _, err := core.ParseNonNegativeDecimalToCents(c.WeeklyBudget); err != nil {
			errors = append(errors, fmt.Sprintf("invalid weekly budget '%s': %v", c.WeeklyBudget, err))
		}
	}

	if _, err := parseMembers(c.Members); err != nil {
		errors = append(errors, fmt.Sprintf("invalid members '%s': %v", c.Members, err))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleCredentialsFile == "" {
			errors = append(errors, "GOOGLE_CREDENTIALS_FILE is required when a spreadsheet ID is set")
		} else if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location resolves the configured timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Anchor resolves the configured week anchor weekday. Call after Validate.
func (c *Config) Anchor() time.Weekday {
	if d, ok := weekdays[strings.ToLower(c.WeekAnchor)]; ok {
		return d
	}
	return time.Saturday
}

// BudgetCents resolves the weekly budget in cents; zero when no budget
// is configured. Call after Validate.
func (c *Config) BudgetCents() int64 {
	if c.WeeklyBudget == "" {
		return 0
	}
	cents, err := core.ParseNonNegativeDecimalToCents(c.WeeklyBudget)
	if err != nil {
		return 0
	}
	return cents
}

// MemberNames parses MEMBERS ("id=name,id=name") into a lookup map.
// Call after Validate.
func (c *Config) MemberNames() map[string]string {
	m, err := parseMembers(c.Members)
	if err != nil {
		return nil
	}
	return m
}

func parseMembers(s string) (map[string]string, error) {
	m := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, name, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("pair %q: want id=name", pair)
		}
		m[strings.TrimSpace(id)] = strings.TrimSpace(name)
	}
	return m, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
