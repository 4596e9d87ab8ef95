// Package testutil wires in-memory infrastructure for package tests.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/cache"
	"github.com/cutmatch/cutmatch-api/internal/config"
	"github.com/cutmatch/cutmatch-api/internal/db"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

// NewDB spins up a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewRedis starts a miniredis and returns a cache bound to it.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// NewConfig returns test defaults independent of the process environment.
func NewConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = 30 * 24 * time.Hour
	cfg.RateLimit.Max = 200
	cfg.RateLimit.Window = 15 * time.Minute
	cfg.Salon.SearchRadiusKM = 20
	cfg.Upload.Backend = "disk"
	cfg.Upload.PublicURL = "/uploads"
	cfg.Upload.MaxBytes = 1 << 20
	cfg.HTTP.AllowedOrigins = []string{"*"}
	return cfg
}

// NewAppContext wires an isolated DB, Redis and disk upload store.
// Logs are discarded.
func NewAppContext(t *testing.T) *app.AppContext {
	t.Helper()

	cfg := NewConfig()
	cfg.Upload.Dir = t.TempDir()

	store, err := upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.PublicURL)
	require.NoError(t, err)

	rc, _ := NewRedis(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	return app.New(cfg, NewDB(t), rc, log, store)
}

// CreateUser inserts a user with password "password".
func CreateUser(t *testing.T, database *gorm.DB, username, role string) *db.User {
	t.Helper()

	u := &db.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
		Role:     role,
	}
	require.NoError(t, database.Create(u).Error)
	return u
}

// FileHeader builds a *multipart.FileHeader the same way gin does for a request.
func FileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}
