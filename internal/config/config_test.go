package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cutmatch/cutmatch-api/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("SALON_SEARCH_RADIUS_KM", "")
	t.Setenv("JWT_TTL", "")

	cfg := config.New()

	assert.Equal(t, "root:root@tcp(localhost:3306)/cutmatch?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, 20.0, cfg.Salon.SearchRadiusKM)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(200), cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("SALON_SEARCH_RADIUS_KM", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("UPLOAD_PUBLIC_URL", "https://cdn.test/u/")

	cfg := config.New()

	assert.Equal(t, 10.0, cfg.Salon.SearchRadiusKM)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "https://cdn.test/u", cfg.Upload.PublicURL)
	assert.True(t, cfg.IsProduction())
}

func TestNew_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("SALON_SEARCH_RADIUS_KM", "-3")
	t.Setenv("RATE_LIMIT_MAX", "lots")

	cfg := config.New()

	assert.Equal(t, 20.0, cfg.Salon.SearchRadiusKM)
	assert.Equal(t, int64(200), cfg.RateLimit.Max)
}
