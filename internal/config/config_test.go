package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAIL_PORT", "")

	cfg := Load()
	assert.Equal(t, 30*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 587, cfg.MailPort)
	assert.Equal(t, time.Hour, cfg.NattyPadTokenTTL)
	assert.Contains(t, cfg.DSN(), "dbname=")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/applibry")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "postgres://u:p@db:5432/applibry", cfg.DSN())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("JWT_REFRESH_EXPIRY", "a week")
	t.Setenv("BODY_LIMIT_MB", "-3")

	cfg := Load()
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 4, cfg.BodyLimitMB)
}
