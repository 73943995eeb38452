package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"peerlend.backend/internal/config"
	"peerlend.backend/internal/infrastructure/jobs"
	"peerlend.backend/internal/infrastructure/repositories"
	"peerlend.backend/internal/infrastructure/sanctions"
	"peerlend.backend/internal/infrastructure/storage"
	"peerlend.backend/internal/infrastructure/vision"
	"peerlend.backend/internal/interfaces/http/handlers"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/usecases"
	"peerlend.backend/pkg/jwt"
	"peerlend.backend/pkg/logger"
	"peerlend.backend/pkg/metrics"
	"peerlend.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	newExtractor    = func(cfg vision.TesseractConfig) (usecases.TextExtractor, error) {
		return vision.NewTesseractExtractor(cfg)
	}
	newFaceMatcher = func(modelsDir string) (usecases.FaceMatcher, func(), error) {
		m, err := vision.NewDlibMatcher(modelsDir)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	identityRepo := repositories.NewIdentityRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize Session Store
	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Initialize image storage
	imageStore, err := storage.NewImageStore(cfg.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	// Initialize vision components; both are validated up front so a
	// misconfigured OCR language or missing face models fail fast
	extractor, err := newExtractor(vision.TesseractConfig{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize text extractor: %w", err)
	}

	faceMatcher, closeMatcher, err := newFaceMatcher(cfg.Face.ModelsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize face matcher: %w", err)
	}
	defer closeMatcher()

	// Initialize metrics and sanctions checker
	pipelineMetrics := metrics.New()
	sanctionsChecker := sanctions.NewCEISChecker(sanctions.Config{
		URL:      cfg.Sanctions.URL,
		Timeout:  cfg.Sanctions.Timeout,
		CacheTTL: cfg.Sanctions.CacheTTL,
	}, pipelineMetrics)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(identityRepo, jwtService, sessionStore, cfg.Security.SessionTTL)
	kycUsecase := usecases.NewKYCUsecase(identityRepo, imageStore, extractor, faceMatcher, sanctionsChecker, pipelineMetrics)
	loanUsecase := usecases.NewLoanUsecase(loanRepo, identityRepo, usecases.NewRiskScorer(), uow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase, identityRepo)
	kycHandler := handlers.NewKYCHandler(kycUsecase, identityRepo, imageStore)
	loanHandler := handlers.NewLoanHandler(loanUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshJob := jobs.NewSanctionsRefreshJob(sanctionsChecker, cfg.Sanctions.RefreshInterval)
	go refreshJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		kycHandler:     kycHandler,
		loanHandler:    loanHandler,
		authMiddleware: authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		refreshJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 PeerLend Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
