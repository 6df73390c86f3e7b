package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	catalogapp "github.com/stitchline/backend/internal/application/catalog"
	companyapp "github.com/stitchline/backend/internal/application/company"
	eventapp "github.com/stitchline/backend/internal/application/event"
	identityapp "github.com/stitchline/backend/internal/application/identity"
	orderapp "github.com/stitchline/backend/internal/application/order"
	reportapp "github.com/stitchline/backend/internal/application/report"
	servicedeskapp "github.com/stitchline/backend/internal/application/servicedesk"
	"github.com/stitchline/backend/internal/infrastructure/auth"
	"github.com/stitchline/backend/internal/infrastructure/cache"
	"github.com/stitchline/backend/internal/infrastructure/config"
	"github.com/stitchline/backend/internal/infrastructure/event"
	"github.com/stitchline/backend/internal/infrastructure/logger"
	"github.com/stitchline/backend/internal/infrastructure/migration"
	"github.com/stitchline/backend/internal/infrastructure/persistence"
	"github.com/stitchline/backend/internal/infrastructure/printing"
	"github.com/stitchline/backend/internal/infrastructure/storage"
	"github.com/stitchline/backend/internal/infrastructure/telemetry"
	"github.com/stitchline/backend/internal/interfaces/http/handler"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
	"github.com/stitchline/backend/internal/interfaces/http/router"
	"github.com/stitchline/backend/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	_ "github.com/stitchline/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// objectStorage serves product images and archives invoices
type objectStorage interface {
	catalogapp.ImageStorage
	printing.Archiver
}

//	@title			Stitchline Backend API
//	@version		1.0
//	@description	Sewing machine shop backend: catalog, cart, orders, service requests and analytics.

//	@contact.name	API Support
//	@contact.email	support@stitchline.example.com

//	@host		localhost:5000
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry: traces, metrics, logs and profiles
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if core := loggerProvider.Core(cfg.Telemetry.ServiceName, zapcore.InfoLevel); core != nil {
		if log, err = logger.New(logCfg, core); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Warn("Profiler unavailable", zap.Error(err))
		profiler = nil
	} else if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting Stitchline Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	if err := telemetry.RegisterPoolMetrics(meterProvider.Meter(), sqlDB); err != nil {
		log.Warn("Pool metrics unavailable", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRequestRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Order events are written to the outbox inside the checkout transaction
	serializer := event.NewOrderEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher.Recorder)

	// The relay forwards committed events to Kafka, or to the in-process bus
	var sink event.Sink
	var kafkaSink *event.KafkaSink
	if cfg.Kafka.Enabled {
		kafkaSink = event.NewKafkaSink(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			ClientID:     cfg.Kafka.ClientID,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		sink = kafkaSink
		log.Info("Relaying order events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	} else {
		bus := event.NewInMemoryEventBus(log)
		eventLogger := event.NewOrderEventLogger(log)
		bus.Subscribe(eventLogger, eventLogger.EventTypes()...)
		sink = event.NewBusSink(serializer, bus)
	}

	processorCfg := event.DefaultOutboxProcessorConfig()
	processorCfg.BatchSize = cfg.Outbox.BatchSize
	processorCfg.PollInterval = cfg.Outbox.PollInterval
	processorCfg.MaxRetries = cfg.Outbox.MaxRetries
	processorCfg.CleanupEnabled = cfg.Outbox.CleanupEnabled
	processorCfg.CleanupRetention = cfg.Outbox.CleanupRetention
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, sink, processorCfg, log)
	if cfg.Outbox.Enabled {
		outboxProcessor.Start(ctx)
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	otpStore, otpCloser := cache.NewOTPStore(cfg.Redis, log)
	defer func() {
		if err := otpCloser.Close(); err != nil {
			log.Error("Error closing OTP store", zap.Error(err))
		}
	}()

	// Object storage for product images and invoice archives
	var objects objectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s3Storage.EnsureBucket(ensureCtx); err != nil {
			log.Warn("Bucket check failed", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		cancel()
		objects = s3Storage
	} else {
		objects = storage.NewMemoryStorage(cfg.Storage.PublicBaseURL)
		log.Info("Object storage disabled, using in-memory storage")
	}

	// Invoice rendering
	var pdf printing.PDFRenderer
	if cfg.Printing.PDFEnabled {
		chromeRenderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      os.Geteuid() == 0,
			Logger:         log,
		})
		defer func() {
			if err := chromeRenderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdf = chromeRenderer
	}
	var archive printing.Archiver
	if cfg.Printing.ArchiveEnabled {
		archive = objects
	}
	invoiceRenderer := printing.NewInvoiceRenderer(pdf, archive, printing.InvoiceRendererConfig{
		Currency: cfg.Printing.Currency,
		Language: language.English,
		Timeout:  cfg.Printing.RenderTimeout,
	}, log)

	orderMetrics, err := telemetry.NewOrderMetrics(meterProvider.Meter())
	if err != nil {
		log.Fatal("Failed to create order metrics", zap.Error(err))
	}

	// Initialize application services
	timeout := cfg.Order.StorageTimeout
	authService := identityapp.NewAuthService(
		userRepo,
		jwtService,
		auth.NewTOTPCodec(cfg.Auth.OTPIssuer),
		otpStore,
		auth.NewLogOTPSender(log),
		identityapp.AuthServiceConfig{OTPRequired: cfg.Auth.OTPRequired, StorageTimeout: timeout},
		log,
	)
	userService := identityapp.NewUserService(userRepo, cartRepo, orderRepo, timeout, log)
	productService := catalogapp.NewProductService(productRepo, objects, catalogapp.ProductServiceConfig{
		StorageTimeout:  timeout,
		UploadURLExpiry: cfg.Storage.PresignExpiration,
	}, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, timeout, log)
	orderService := orderapp.NewOrderService(orderRepo, orderRepo, txScope, orderapp.Config{
		StorageTimeout:  timeout,
		RestockOnCancel: cfg.Order.RestockOnCancel,
	}, log, orderapp.WithMetrics(orderMetrics))
	invoiceService := orderapp.NewInvoiceService(orderRepo, userRepo, companyRepo, invoiceRenderer, timeout, log)
	serviceDesk := servicedeskapp.NewService(serviceRepo, timeout, log)
	analyticsService := reportapp.NewAnalyticsService(analyticsRepo, serviceRepo, timeout, log)
	companyService := companyapp.NewService(companyRepo, timeout, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize handlers
	base := handler.NewBaseHandler(cfg.App.IsProduction())
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(base, authService),
		Products:    handler.NewProductHandler(base, productService),
		Cart:        handler.NewCartHandler(base, cartService),
		Orders:      handler.NewOrderHandler(base, orderService, invoiceService),
		Reports:     handler.NewReportHandler(base, analyticsService, outboxService),
		Users:       handler.NewUserHandler(base, userService),
		ServiceDesk: handler.NewServiceDeskHandler(base, serviceDesk),
		System:      handler.NewSystemHandler(base, companyService, sqlDB, version),
	}
	guards := router.Guards{
		Auth:         middleware.JWTAuth(jwtService, log),
		OptionalAuth: middleware.OptionalJWTAuth(jwtService),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthLimit = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}

	// Setup Gin
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics := middleware.NewHTTPMetrics("stitchline")
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(httpMetrics.Middleware())
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", handlers.System.Health)
	engine.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	router.NewRouter(engine).
		Register(router.ShopGroups(handlers, guards)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := outboxProcessor.Stop(shutdownCtx); err != nil {
		log.Error("Outbox processor did not stop cleanly", zap.Error(err))
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Error("Error closing Kafka writer", zap.Error(err))
		}
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies pending migrations on a dedicated connection,
// since closing the migrator also closes its database handle.
func runMigrations(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}
