package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/logger"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

// NewRouter builds the gin engine with the shared middleware chain and
// mounts every registrar under /api.
//
// Chain order: request log → error formatter → panic recovery →
// security headers → CORS. /api routes are additionally rate limited.
func NewRouter(appCtx *app.AppContext, health *HealthRegistrar, registrars ...RouteRegistrar) *gin.Engine {
	cfg := appCtx.Config
	production := cfg.IsProduction()

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		appCtx.Logger.Warn("invalid trusted proxies, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestLogger(appCtx.Logger),
		middleware.ErrorHandler(production),
		middleware.PanicRecovery(),
		middleware.SecurityHeaders(production),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})
	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health.Check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	switch store := appCtx.Uploads.(type) {
	case *upload.DiskStore:
		if strings.HasPrefix(store.PublicURL, "/") {
			r.Static(store.PublicURL, store.Dir)
		}
	case upload.Opener:
		r.GET(upload.GridFSURLPrefix+"/:id", serveFile(store))
	}

	api := r.Group("/api", middleware.RateLimit(appCtx.RedisCache, cfg.RateLimit.Max, cfg.RateLimit.Window, appCtx.Logger))
	for _, reg := range registrars {
		reg.RegisterRoutes(api)
	}

	r.NoRoute(middleware.NotFound())
	return r
}

// NewHTTPServer wraps handler in an http.Server bound to HTTP_HOST:HTTP_PORT.
func NewHTTPServer(appCtx *app.AppContext, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", appCtx.Config.HTTP.Host, appCtx.Config.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serveFile(store upload.Opener) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, contentType, err := store.Open(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, upload.ErrFileNotFound) {
				err = svcErr.NotFound("File not found")
			}
			c.Error(err)
			return
		}
		defer rc.Close()

		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, rc); err != nil {
			logger.FromContext(c.Request.Context()).Warn("stream file failed", "err", err)
		}
	}
}
