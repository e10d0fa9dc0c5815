package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/vo-tracker-api/api/swagger"
	"github.com/noah-isme/vo-tracker-api/internal/handler"
	"github.com/noah-isme/vo-tracker-api/internal/middleware"
	"github.com/noah-isme/vo-tracker-api/internal/repository"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	"github.com/noah-isme/vo-tracker-api/pkg/cache"
	"github.com/noah-isme/vo-tracker-api/pkg/config"
	"github.com/noah-isme/vo-tracker-api/pkg/database"
	"github.com/noah-isme/vo-tracker-api/pkg/jobs"
	"github.com/noah-isme/vo-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/vo-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/vo-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/vo-tracker-api/pkg/storage"
)

// @title Variation Order Tracker API
// @version 1.0.0
// @description Tracks construction variation orders, their approval documents and reporting totals.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// statistics fall back to direct aggregation without a cache
		logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, files, closeStore, err := newObjectStore(ctx, cfg.Storage, cfg.APIPrefix)
	if err != nil {
		return err
	}
	defer closeStore()

	validate := validation.New()
	metrics := service.NewMetricsService()

	voRepo := repository.NewVariationOrderRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Statistics.CacheTTL, logr, cfg.Statistics.CacheEnabled && redisClient != nil)
	statsSvc := service.NewStatisticsService(voRepo, cacheSvc, cfg.Statistics.CacheTTL, logr)
	activitySvc := service.NewActivityService(activityRepo, metrics, logr, cfg.Activity.RecentLimit)

	if cfg.Activity.Async {
		queue := jobs.NewQueue("activity", activitySvc.HandleJob, jobs.QueueConfig{
			Workers:    cfg.Activity.Workers,
			MaxRetries: cfg.Activity.Retries,
			RetryDelay: 500 * time.Millisecond,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := queue.Stop(stopCtx); err != nil {
				logr.Warn("activity queue did not drain", zap.Error(err))
			}
		}()
		activitySvc.UseQueue(queue, cfg.Activity.Retries)
	}

	voSvc := service.NewVariationOrderService(voRepo, validate, statsSvc, activitySvc, metrics, logr)
	uploadSvc := service.NewUploadService(voRepo, store, validate, activitySvc, metrics, logr, service.UploadConfig{
		MaxFileSize:  cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Storage.AllowedMIMEs,
	})
	exportSvc := service.NewExportService(voRepo, statsSvc, validate, metrics, logr, cfg.Export.MaxRows)
	authSvc := service.NewAuthService(repository.NewUserRepository(db), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	projectSvc := service.NewProjectService(repository.NewProjectRepository(db), validate, activitySvc, logr)
	paymentSvc := service.NewPaymentService(repository.NewPaymentRepository(db), validate, activitySvc, logr)

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlers := handler.Handlers{
		Auth:            handler.NewAuthHandler(authSvc),
		VariationOrders: handler.NewVariationOrderHandler(voSvc, statsSvc, uploadSvc, exportSvc),
		Activity:        handler.NewActivityHandler(activitySvc),
		Projects:        handler.NewProjectHandler(projectSvc),
		Payments:        handler.NewPaymentHandler(paymentSvc),
		Metrics:         handler.NewMetricsHandler(metrics, checks),
	}
	if files != nil {
		handlers.Files = handler.NewFileHandler(files)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newObjectStore builds the configured document store. The local driver also
// returns itself as the file source for the /files route.
func newObjectStore(ctx context.Context, cfg config.StorageConfig, apiPrefix string) (storage.ObjectStore, *storage.LocalStorage, func(), error) {
	if cfg.Driver == config.StorageDriverGCS {
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init gcs storage: %w", err)
		}
		return gcs, nil, func() { _ = gcs.Close() }, nil
	}
	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(apiPrefix, "/") + "/files"
	}
	local, err := storage.NewLocalStorage(cfg.LocalDir, publicBaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init local storage: %w", err)
	}
	return local, local, func() {}, nil
}
