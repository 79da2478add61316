package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "app_session_id", cfg.SessionCookie)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://pdv@localhost/pdv")
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, "owner@example.com", cfg.OwnerEmail)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestParseFallsBackOnBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := Parse()
	assert.Error(t, err)
}
