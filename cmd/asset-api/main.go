package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/asset-tracker-api/api/swagger"
	"github.com/noah-isme/asset-tracker-api/internal/handler"
	"github.com/noah-isme/asset-tracker-api/internal/middleware"
	"github.com/noah-isme/asset-tracker-api/internal/repository"
	"github.com/noah-isme/asset-tracker-api/internal/service"
	"github.com/noah-isme/asset-tracker-api/pkg/cache"
	"github.com/noah-isme/asset-tracker-api/pkg/config"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	"github.com/noah-isme/asset-tracker-api/pkg/events"
	"github.com/noah-isme/asset-tracker-api/pkg/export"
	"github.com/noah-isme/asset-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/asset-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/asset-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/asset-tracker-api/pkg/storage"
)

// @title IT Asset Tracker API
// @version 1.0.0
// @description Tracks IT equipment, the employees holding it and every change made to it.
// @BasePath /api/v1
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && cacheRepo != nil)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nats, err := events.Connect(cfg.Events.NATSURL, "asset-tracker-api")
		if err != nil {
			logr.Warn("nats unavailable, history events will not be published", zap.Error(err))
		} else {
			defer nats.Close() //nolint:errcheck
			publisher = nats
		}
	}
	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{
		SubjectPrefix: cfg.Events.SubjectPrefix,
		Workers:       cfg.Events.Workers,
		Retries:       cfg.Events.Retries,
		Logger:        logr,
	})
	dispatcher.OnPublish(metrics.RecordEventPublish)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	dispatcher.Start(rootCtx)
	defer dispatcher.Stop()

	files, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare document storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	policy := service.UploadPolicy{MaxFileSize: cfg.Documents.MaxFileSizeBytes, AllowedMIMEs: cfg.Documents.AllowedMIMEs}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	typeRepo := repository.NewAssetTypeRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	disposalRepo := repository.NewDisposalRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	repairRepo := repository.NewRepairRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	recorder := service.NewAuditRecorder(historyRepo)
	notifier := service.NewChangeNotifier(cacheSvc, dispatcher, metrics, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	assetSvc := service.NewAssetService(service.AssetServiceParams{
		DB:        db,
		Assets:    assetRepo,
		Types:     typeRepo,
		Employees: employeeRepo,
		History:   historyRepo,
		Recorder:  recorder,
		Notifier:  notifier,
		Validator: validate,
		Logger:    logr,
	})
	typeSvc := service.NewAssetTypeService(typeRepo, validate)
	historySvc := service.NewHistoryService(historyRepo)
	employeeSvc := service.NewEmployeeService(db, employeeRepo, assetRepo, recorder, notifier, validate, logr)
	importSvc := service.NewImportService(service.ImportServiceParams{
		DB:          db,
		Types:       typeRepo,
		Employees:   employeeRepo,
		Assets:      assetRepo,
		Recorder:    recorder,
		Notifier:    notifier,
		Metrics:     metrics,
		MaxFileSize: cfg.Import.MaxFileSizeBytes,
		Logger:      logr,
	})
	exportSvc := service.NewExportService(assetRepo, logr, export.NewCSVExporter(), export.NewXLSXExporter("Assets"), export.NewPDFExporter())
	documentSvc := service.NewDocumentService(documentRepo, assetRepo, files, signer, policy, cfg.APIPrefix, logr)
	repairSvc := service.NewRepairService(repairRepo, assetRepo, validate)
	disposalSvc := service.NewDisposalService(service.DisposalServiceParams{
		DB:        db,
		Disposals: disposalRepo,
		Assets:    assetRepo,
		Recorder:  recorder,
		Notifier:  notifier,
		Files:     files,
		Signer:    signer,
		Policy:    policy,
		APIPrefix: cfg.APIPrefix,
		Validator: validate,
		Logger:    logr,
	})
	dashboardSvc := service.NewDashboardService(dashboardRepo, historyRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	health := handler.NewHealthHandler(metrics, db)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Assets:    handler.NewAssetHandler(assetSvc),
		Transfer:  handler.NewTransferHandler(importSvc, exportSvc),
		Employees: handler.NewEmployeeHandler(employeeSvc),
		Catalog:   handler.NewCatalogHandler(typeSvc, historySvc),
		Lifecycle: handler.NewLifecycleHandler(documentSvc, repairSvc, disposalSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
