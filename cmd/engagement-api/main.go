package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/whitfield-edu/engagement-api/internal/handler"
	"github.com/whitfield-edu/engagement-api/internal/middleware"
	"github.com/whitfield-edu/engagement-api/internal/records"
	"github.com/whitfield-edu/engagement-api/internal/repository"
	"github.com/whitfield-edu/engagement-api/internal/service"
	"github.com/whitfield-edu/engagement-api/internal/store"
	"github.com/whitfield-edu/engagement-api/pkg/cache"
	"github.com/whitfield-edu/engagement-api/pkg/config"
	"github.com/whitfield-edu/engagement-api/pkg/database"
	"github.com/whitfield-edu/engagement-api/pkg/export"
	"github.com/whitfield-edu/engagement-api/pkg/logger"
	corsmiddleware "github.com/whitfield-edu/engagement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/whitfield-edu/engagement-api/pkg/middleware/requestid"
)

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

	persister, err := newPersister(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init store backend", "driver", cfg.Store.Driver, "error", err)
	}

	metricsSvc := service.NewMetricsService()
	persister = service.InstrumentStore(persister, metricsSvc)

	recordStore, err := records.Open(context.Background(), persister, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open record store", "error", err)
	}
	recordStore.SetAlertHook(metricsSvc.RecordAlert)

	var cacheSvc *service.CacheService
	if cfg.StatsCache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("statistics cache disabled, redis unavailable", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.StatsCache.TTL, logr, true)
		}
	}

	validate := validator.New()

	authSvc := service.NewAuthService(recordStore, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	wellbeingSvc := service.NewWellbeingService(recordStore, cacheSvc, validate, logr)
	meetingSvc := service.NewMeetingService(recordStore, validate, logr)
	inboxSvc := service.NewInboxService(recordStore, validate, logr)
	statisticsSvc := service.NewStatisticsService(recordStore, cacheSvc, logr)
	reportSvc := service.NewReportService(recordStore, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Wellbeing:  handler.NewWellbeingHandler(wellbeingSvc),
		Meeting:    handler.NewMeetingHandler(meetingSvc),
		Inbox:      handler.NewInboxHandler(inboxSvc),
		Statistics: handler.NewStatisticsHandler(statisticsSvc),
		Report:     handler.NewReportHandler(reportSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}, authSvc, cfg.Reports.Enabled)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newPersister builds the snapshot backend selected by STORE_DRIVER.
func newPersister(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		return store.NewFileStore(cfg.Store.FilePath), nil
	case config.StoreDriverSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store.NewSQLStore(db)
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		return store.NewSQLStore(db)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
