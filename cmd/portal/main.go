package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/myanedu/portal-api/api/swagger"
	"github.com/myanedu/portal-api/internal/handler"
	"github.com/myanedu/portal-api/internal/middleware"
	"github.com/myanedu/portal-api/internal/repository"
	"github.com/myanedu/portal-api/internal/service"
	"github.com/myanedu/portal-api/internal/session"
	"github.com/myanedu/portal-api/internal/upstream"
	"github.com/myanedu/portal-api/pkg/cache"
	"github.com/myanedu/portal-api/pkg/config"
	"github.com/myanedu/portal-api/pkg/logger"
	corsmiddleware "github.com/myanedu/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/myanedu/portal-api/pkg/middleware/requestid"
	"github.com/myanedu/portal-api/pkg/storage"
)

// @title MyanEdu Portal API
// @version 1.0.0
// @description Student portal backend: sessions, course access, payments, classroom and notifications
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connect failed", "error", err)
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, true)

	backend := upstream.New(cfg.Upstream, logr)
	backend.SetObserver(metrics.ObserveUpstreamCall)
	store := session.NewRedisStore(redisClient, cfg.Session.StoreTTL)

	sessions := service.NewSessionService(store, backend, logr)
	tokens := service.NewTokenService(cfg.Session)
	views := service.NewViewService()
	catalog := service.NewCatalogService(backend, cacheSvc, cfg.Catalog.CacheTTL, logr)
	classroom := service.NewClassroomService(backend, logr)
	payments := service.NewPaymentService(backend, logr)

	receiptStore, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("receipt storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
	receipts := service.NewReceiptService(payments, receiptStore, signer, metrics, service.ReceiptQueueConfig{
		Workers:    cfg.Receipts.WorkerConcurrency,
		MaxRetries: cfg.Receipts.WorkerRetries,
	}, logr)
	receipts.Start(ctx)
	go receipts.CleanupLoop(ctx, cfg.Receipts.CleanupInterval, cfg.Receipts.SignedURLTTL)

	feeds := service.NewFeedService(sessions, classroom, cfg.Feeds, metrics, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, handler.Services{
		Sessions:  sessions,
		Tokens:    tokens,
		Views:     views,
		Catalog:   catalog,
		Classroom: classroom,
		Payments:  payments,
		Receipts:  receipts,
		Feeds:     feeds,
		Metrics:   metrics,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown", "error", err)
	}

	feeds.Shutdown()
	receipts.Stop()
	if err := redisClient.Close(); err != nil {
		logr.Sugar().Warnw("redis close", "error", err)
	}
}
