package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := &Config{AppTimezone: "Europe/Warsaw"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Warsaw", loc.String())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "debug")
	logger.Debug("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "text", "warn")
	logger.Info("dropped")
	assert.Empty(t, buf.String())
}
