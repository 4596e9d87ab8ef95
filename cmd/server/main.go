package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/cache"
	"github.com/cutmatch/cutmatch-api/internal/config"
	"github.com/cutmatch/cutmatch-api/internal/db"
	"github.com/cutmatch/cutmatch-api/internal/logger"
	"github.com/cutmatch/cutmatch-api/internal/server"
	"github.com/cutmatch/cutmatch-api/internal/service/comment"
	"github.com/cutmatch/cutmatch-api/internal/service/hairstyle"
	"github.com/cutmatch/cutmatch-api/internal/service/notification"
	"github.com/cutmatch/cutmatch-api/internal/service/post"
	"github.com/cutmatch/cutmatch-api/internal/service/salon"
	"github.com/cutmatch/cutmatch-api/internal/service/user"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}
	if err := db.Migrate(database); err != nil {
		log.Error("failed to migrate db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	// Init upload backend
	var uploads upload.Store
	switch cfg.Upload.Backend {
	case "gridfs":
		store, err := upload.NewGridFSStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Error("failed to init gridfs store", "err", err)
			return
		}
		defer store.Close(context.Background())
		uploads = store
	default:
		store, err := upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.PublicURL)
		if err != nil {
			log.Error("failed to init upload dir", "err", err)
			return
		}
		uploads = store
	}

	appCtx := app.New(cfg, database, redisCache, log, uploads)

	if cfg.App.SeedOnStart && !cfg.IsProduction() {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	notifications := notification.NewService(appCtx)
	routes := []server.RouteRegistrar{
		user.NewRegistrar(appCtx, notifications),
		post.NewRegistrar(appCtx),
		comment.NewRegistrar(appCtx),
		hairstyle.NewRegistrar(appCtx),
		salon.NewRegistrar(appCtx),
		notification.NewRegistrar(appCtx),
	}

	health := server.NewHealthRegistrar(appCtx)
	go health.Watch(ctx, healthInterval)

	// gRPC ops server (health + reflection)
	grpcServer := server.NewGRPCServer(health)
	go func() {
		log.Info("starting gRPC server", "addr", net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port))
		if err := server.StartGRPCServer(cfg, grpcServer); err != nil {
			log.Error("gRPC server stopped", "err", err)
			stop()
		}
	}()

	// HTTP API
	httpServer := server.NewHTTPServer(appCtx, server.NewRouter(appCtx, health, routes...))
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr, "env", cfg.App.ENV)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "err", err)
	}
	grpcServer.GracefulStop()
}
