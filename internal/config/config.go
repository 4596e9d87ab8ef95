package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV         string
		SeedOnStart bool
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver     string
		DSN        string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SQLitePath string
		LogSQL     bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host           string
		Port           string
		AllowedOrigins []string
		TrustedProxies []string
	}

	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}

	RateLimit struct {
		Max    int64
		Window time.Duration
	}

	Salon struct {
		SearchRadiusKM float64
	}

	Upload struct {
		Backend   string
		Dir       string
		PublicURL string
		MaxBytes  int64
	}

	Mongo struct {
		URI      string
		Database string
	}

	GRPC struct {
		Host string
		Port string
	}
}

// New builds the configuration from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment take precedence.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")
	cfg.App.SeedOnStart = isTruthy(os.Getenv("SEED_ON_START"))

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "http_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "cutmatch.db")
	cfg.DB.LogSQL = isTruthy(os.Getenv("DB_LOG_SQL"))
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "cutmatch")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "5000")
	cfg.HTTP.AllowedOrigins = splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "*"))
	cfg.HTTP.TrustedProxies = splitList(getEnvDefault("TRUSTED_PROXIES", ""))

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "change-me")
	cfg.Auth.TokenTTL = getDurationDefault("JWT_TTL", 30*24*time.Hour)

	// Rate limiting (per client IP, all /api routes)
	cfg.RateLimit.Max = int64(getIntDefault("RATE_LIMIT_MAX", 200))
	cfg.RateLimit.Window = getDurationDefault("RATE_LIMIT_WINDOW", 15*time.Minute)

	// Salons
	cfg.Salon.SearchRadiusKM = getFloatDefault("SALON_SEARCH_RADIUS_KM", 20)

	// Uploads
	cfg.Upload.Backend = strings.ToLower(getEnvDefault("UPLOAD_BACKEND", "disk"))
	cfg.Upload.Dir = getEnvDefault("UPLOAD_DIR", "./public/uploads")
	cfg.Upload.PublicURL = strings.TrimRight(getEnvDefault("UPLOAD_PUBLIC_URL", "/uploads"), "/")
	cfg.Upload.MaxBytes = int64(getIntDefault("UPLOAD_MAX_BYTES", 10<<20))

	// MongoDB (GridFS upload backend)
	cfg.Mongo.URI = getEnvDefault("MONGO_URI", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnvDefault("MONGO_DATABASE", "cutmatch")

	// gRPC ops server
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	return cfg
}

// IsProduction reports whether stack traces and other debug output must be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.ENV, "production")
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getIntDefault(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func getFloatDefault(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func getDurationDefault(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnvDefault(k, "")); err == nil && v > 0 {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
