package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PROJECT_ROOT", "ARCHIVE_DIR", "KAFKA_BROKERS", "HTTP_TIMEOUT", "DISTANCE_DECIMALS", "STRAVA_CLIENT_ID"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, filepath.Join(".", "archive", "activities"), cfg.ArchiveDir)
	require.Equal(t, filepath.Join(".", "derived", "activities.csv"), cfg.DerivedCSVPath)
	require.Equal(t, filepath.Join("reports", "runs_log.txt"), cfg.RunsLogPath())
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, DefaultPrecision(), cfg.Precision)
	require.Zero(t, cfg.StravaClientID)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROJECT_ROOT", "/data")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,,")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("DISTANCE_DECIMALS", "3")
	t.Setenv("STRAVA_CLIENT_ID", "not-a-number")

	cfg := Load()
	require.Equal(t, "/data/archive/activities", cfg.ArchiveDir)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, int32(3), cfg.Precision.DistanceMi)
	require.Zero(t, cfg.StravaClientID)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"STRAVA_CLIENT_ID", "STRAVA_CLIENT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STRAVA_CLIENT_ID=4242\nSTRAVA_CLIENT_SECRET=secret\n"), 0o600))

	cfg := Load()
	require.Equal(t, 4242, cfg.StravaClientID)
	require.Equal(t, "secret", cfg.StravaClientSecret)
}

func TestLoadLeavesAuthDisabledWithoutSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	require.Empty(t, cfg.JWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	require.Equal(t, "s3cret", Load().JWTSecret)
}
