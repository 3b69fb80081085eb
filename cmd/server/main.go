package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	resolutionapp "github.com/salesops/backend/internal/application/resolution"
	"github.com/salesops/backend/internal/domain/resolution"
	"github.com/salesops/backend/internal/infrastructure/cache"
	"github.com/salesops/backend/internal/infrastructure/config"
	"github.com/salesops/backend/internal/infrastructure/logger"
	"github.com/salesops/backend/internal/infrastructure/persistence"
	"github.com/salesops/backend/internal/infrastructure/telemetry"
	"github.com/salesops/backend/internal/interfaces/http/handler"
	"github.com/salesops/backend/internal/interfaces/http/middleware"
	"github.com/salesops/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SalesOps Resolution Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	gormLogLevel := gormlogger.Silent
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterGormTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.TraceDB,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories and the reconciliation writer
	companyRepo := persistence.NewGormCrmCompanyRepository(db.DB)
	customerRepo := persistence.NewGormErpCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderItemRepository(db.DB)
	rosterRepo := persistence.NewGormMarketplaceCustomerRepository(db.DB)
	writer := persistence.NewReconciliationWriter(db.DB, cfg.Matching.WriterBatchSize, log)

	// Initialize the report cache: Redis when configured, in-memory otherwise
	var reportCache resolutionapp.ReportCache
	if cfg.Redis.Host != "" {
		redisCache, err := cache.NewRedisReportCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisCache.Close()
		}()
		reportCache = redisCache
		log.Info("Redis report cache connected")
	} else {
		reportCache = cache.NewInMemoryReportCache()
		log.Info("Using in-memory report cache")
	}

	// Map matching configuration onto the resolution policies
	policy := resolution.MatchPolicy{
		MinAddressKeyLen:     cfg.Matching.MinAddressKeyLen,
		ScoreExactName:       cfg.Matching.ScoreExactName,
		ScoreNameContainment: cfg.Matching.ScoreNameContainment,
		ScoreExactAddress:    cfg.Matching.ScoreExactAddress,
		ScoreZipMatch:        cfg.Matching.ScoreZipMatch,
	}
	rules := resolution.ClassifierRules{
		RetailPrefixes:          cfg.Matching.RetailPrefixes,
		MarketplaceMarker:       cfg.Matching.MarketplaceMarker,
		MarketplaceMarkerMinLen: cfg.Matching.MarketplaceMarkerMinLen,
		MarketplaceCodeMinLen:   cfg.Matching.MarketplaceCodeMinLen,
		DirectMinDigits:         cfg.Matching.DirectMinDigits,
		DirectMaxDigits:         cfg.Matching.DirectMaxDigits,
	}
	filter := resolution.DirectOrderFilter{
		NameTokens:    cfg.Matching.DirectFilterNameTokens,
		RepTokens:     cfg.Matching.DirectFilterRepTokens,
		OrderPrefixes: cfg.Matching.DirectFilterOrderPrefixes,
		OrderTokens:   cfg.Matching.DirectFilterOrderTokens,
	}

	// Initialize application services
	linkService := resolutionapp.NewLinkService(companyRepo, customerRepo, writer, policy, log)
	switcherService := resolutionapp.NewSwitcherService(rosterRepo, customerRepo, orderRepo, writer, reportCache, policy, filter, log)
	switcherService.SetCacheTTL(cfg.Matching.ReportCacheTTL)
	reportService := resolutionapp.NewChannelReportService(orderRepo, reportCache, rules, log)
	reportService.SetCacheTTL(cfg.Matching.ReportCacheTTL)
	rosterService := resolutionapp.NewRosterService(orderRepo, writer, rules, log)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewResolutionHandler(linkService, switcherService, reportService, rosterService)).
		Register(handler.NewSystemHandler())
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
