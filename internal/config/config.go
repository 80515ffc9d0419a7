// Package config centralises configuration parsing for the archive tools.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Precision holds the display rounding applied to derived CSV columns.
type Precision struct {
	DistanceMi int32
	Minutes    int32
	Pace       int32
	SpeedMPH   int32
	ElevFt     int32
}

// Config captures runtime configuration values for the archive tools.
type Config struct {
	ArchiveDir     string
	DerivedCSVPath string
	ReportsDir     string
	TokenPath      string

	StravaClientID     int
	StravaClientSecret string
	StravaAPIURL       string
	StravaOAuthURL     string
	StravaRedirectURI  string
	StravaPerPage      int
	HTTPTimeout        time.Duration

	HTTPAddress     string
	MetricsAddress  string
	KafkaBrokers    []string
	EventsTopic     string
	ConsumerGroupID string
	PostgresURL     string
	JWTSecret       string
	JWTIssuer       string

	Precision Precision
}

// Load reads a .env file when present, then environment variables into
// Config, applying defaults relative to the working directory.
func Load() Config {
	_ = godotenv.Load(".env")

	root := getEnv("PROJECT_ROOT", ".")
	cfg := Config{
		ArchiveDir:     getEnv("ARCHIVE_DIR", filepath.Join(root, "archive", "activities")),
		DerivedCSVPath: getEnv("DERIVED_CSV_PATH", filepath.Join(root, "derived", "activities.csv")),
		ReportsDir:     getEnv("REPORTS_DIR", filepath.Join(root, "reports")),
		TokenPath:      getEnv("TOKEN_PATH", filepath.Join(root, "token.json")),

		StravaClientID:     getIntEnv("STRAVA_CLIENT_ID", 0),
		StravaClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),
		StravaAPIURL:       getEnv("STRAVA_API_URL", "https://www.strava.com/api/v3"),
		StravaOAuthURL:     getEnv("STRAVA_OAUTH_URL", "https://www.strava.com"),
		StravaRedirectURI:  getEnv("STRAVA_REDIRECT_URI", "http://localhost:8765/authorization"),
		StravaPerPage:      getIntEnv("STRAVA_PER_PAGE", 100),
		HTTPTimeout:        getDurationEnv("HTTP_TIMEOUT", 30*time.Second),

		HTTPAddress:     getEnv("HTTP_ADDRESS", ":8080"),
		MetricsAddress:  getEnv("METRICS_ADDRESS", ":9195"),
		KafkaBrokers:    splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:     getEnv("ARCHIVE_EVENTS_TOPIC", "activity_archive"),
		ConsumerGroupID: getEnv("CONSUMER_GROUP_ID", "activity-archive-rebuilder"),
		PostgresURL:     getEnv("POSTGRES_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "activity-archive"),

		Precision: Precision{
			DistanceMi: int32(getIntEnv("DISTANCE_DECIMALS", 2)),
			Minutes:    int32(getIntEnv("MINUTES_DECIMALS", 2)),
			Pace:       int32(getIntEnv("PACE_DECIMALS", 2)),
			SpeedMPH:   int32(getIntEnv("SPEED_DECIMALS", 2)),
			ElevFt:     int32(getIntEnv("ELEVATION_DECIMALS", 0)),
		},
	}
	return cfg
}

// DefaultPrecision is the rounding used when no configuration is supplied.
func DefaultPrecision() Precision {
	return Precision{DistanceMi: 2, Minutes: 2, Pace: 2, SpeedMPH: 2, ElevFt: 0}
}

// RunsLogPath is the month-grouped runs report.
func (c Config) RunsLogPath() string { return filepath.Join(c.ReportsDir, "runs_log.txt") }

// ActivityLogPath is the all-activities report.
func (c Config) ActivityLogPath() string { return filepath.Join(c.ReportsDir, "activity_log.txt") }

// FlatRunsLogPath is the ungrouped runs report.
func (c Config) FlatRunsLogPath() string { return filepath.Join(c.ReportsDir, "runs_flat_log.txt") }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
