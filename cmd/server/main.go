package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"crisp/interview/internal/audit"
	"crisp/interview/internal/config"
	"crisp/interview/internal/handlers"
	"crisp/interview/internal/jobs"
	"crisp/interview/internal/llm"
	_ "crisp/interview/internal/llm/gemini"
	"crisp/interview/internal/metrics"
	"crisp/interview/internal/models"
	"crisp/interview/internal/monitor"
	"crisp/interview/internal/prompts"
	"crisp/interview/internal/questions"
	mongorepo "crisp/interview/internal/repositories/mongo"
	"crisp/interview/internal/routers"
	"crisp/interview/internal/scoring"
	"crisp/interview/internal/session"
	"crisp/interview/internal/storage"
)

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initAuditDatabase initializes the PostgreSQL connection backing the
// score audit trail.
func initAuditDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.ScoreRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("port", cfg.Port))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider is optional: without it scoring and question
	// generation run on the deterministic fallbacks
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Warn("AI provider unavailable, running with heuristic fallbacks", zap.Error(err))
		aiProvider = nil
	}

	scorer := scoring.NewScorer(aiProvider, promptManager, logger)
	questionSvc := questions.NewService(aiProvider, promptManager, logger)

	// session storage: Redis when configured, in-memory otherwise
	var (
		sessionStore session.Store
		markerStore  session.MarkerStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		sessionStore = storage.NewRedisSessionStore(redisClient, cfg.SessionTTL)
		markerStore = storage.NewRedisMarkerStore(redisClient, cfg.MarkerTTL)
		logger.Info("Using Redis session storage", zap.String("addr", cfg.RedisAddr))
	} else {
		sessionStore = session.NewMemoryStore()
		markerStore = session.NewMemoryMarkerStore(cfg.MarkerTTL)
		logger.Info("Using in-memory session storage")
	}

	// candidate and interview records (optional)
	var (
		candidateRepo *mongorepo.CandidateRepo
		interviewRepo *mongorepo.InterviewRepo
		mongoClient   *mongorepo.Client
	)
	if os.Getenv("MONGO_URI") != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err = mongorepo.NewClient(ctx)
		cancel()
		if err != nil {
			logger.Error("Failed to connect to MongoDB, candidate records disabled", zap.Error(err))
		} else {
			if candidateRepo, err = mongorepo.NewCandidateRepo(mongoClient); err != nil {
				logger.Error("Failed to initialize candidate repository", zap.Error(err))
			}
			if interviewRepo, err = mongorepo.NewInterviewRepo(mongoClient); err != nil {
				logger.Error("Failed to initialize interview repository", zap.Error(err))
			}
		}
	} else {
		logger.Info("MONGO_URI not set, candidate records disabled")
	}

	// score audit trail (optional)
	var auditManager *audit.Manager
	db, err := initAuditDatabase()
	if err != nil {
		logger.Error("Failed to initialize audit database, score audit disabled", zap.Error(err))
	} else {
		cacheTTL, err := time.ParseDuration(getEnv("AUDIT_CACHE_TTL", "15m"))
		if err != nil || cacheTTL <= 0 {
			cacheTTL = 15 * time.Minute
		}
		auditManager = audit.NewManager(db, cacheTTL)
		logger.Info("Score audit trail initialized")
	}

	// monitor hub for live session watchers
	hub := monitor.NewHub()

	// session manager and scoring dispatcher reference each other, so
	// the answer sink goes through a closure
	var dispatcher *scoring.Dispatcher
	manager := session.NewManager(sessionStore, markerStore,
		session.TimerConfig{
			WarningAt:    cfg.TimerWarningAt,
			PersistEvery: cfg.TimerPersistEvery,
		},
		logger,
		session.WithAnswerSink(func(ev session.AnswerEvent) { dispatcher.HandleAnswer(ev) }),
		session.WithEventSink(hub.Publish),
	)

	var candidateStore scoring.CandidateStore
	if candidateRepo != nil {
		candidateStore = candidateRepo
	}
	var auditSink scoring.AuditSink
	if auditManager != nil {
		auditSink = auditManager
	}
	dispatcher = scoring.NewDispatcher(scorer, manager, candidateStore, auditSink, logger)

	resumePolicy := session.NewResumePolicy(manager, markerStore, 0, logger)

	// handlers
	sessionHandler := handlers.NewSessionHandler(manager, resumePolicy, questionSvc, logger)
	aiHandler := handlers.NewAIHandler(scorer, questionSvc, logger)

	var candidateHandler *handlers.CandidateHandler
	if candidateRepo != nil {
		candidateHandler = handlers.NewCandidateHandler(candidateRepo, scorer, logger)
	}
	var interviewHandler *handlers.InterviewHandler
	if interviewRepo != nil {
		interviewHandler = handlers.NewInterviewHandler(interviewRepo, logger)
	}
	var auditHandler *handlers.AuditHandler
	if auditManager != nil {
		auditHandler = handlers.NewAuditHandler(auditManager)
	}

	stores := map[string]handlers.PingFunc{}
	if redisClient != nil {
		stores["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		stores["redis"] = nil
	}
	if mongoClient != nil {
		stores["mongo"] = mongoClient.Ping
	} else {
		stores["mongo"] = nil
	}
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, stores)

	// background jobs
	var exporterJob *jobs.ScoreExporterJob
	if auditManager != nil {
		exporterJob = jobs.NewScoreExporterJob(auditManager, &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
		})
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start score exporter job", zap.Error(err))
		}
	}

	reaperJob := jobs.NewSessionReaperJob(sessionStore, &jobs.ReaperConfig{
		Schedule:         cfg.ReaperSchedule,
		IdleThreshold:    cfg.IdleThreshold,
		CompleteRetained: cfg.CompleteRetained,
		Enabled:          cfg.ReaperEnabled,
	})
	if err := reaperJob.Start(); err != nil {
		logger.Error("Failed to start session reaper job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, sessionHandler, aiHandler)
	routers.RecruiterRoutes(router, cfg.JWTSecret, candidateHandler, interviewHandler, auditHandler)
	router.Get("/ws/monitor", hub.WsHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}
	reaperJob.Stop()
	manager.Timers().Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	// let in-flight scoring runs land before exit
	dispatcher.Wait()

	if mongoClient != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
		disconnectCancel()
	}

	logger.Info("Interview service exited")
}
