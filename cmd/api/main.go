package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-screening-backend/config"
	_ "resume-screening-backend/docs" // Important for Swagger
	v1 "resume-screening-backend/internal/delivery/http/v1"
	"resume-screening-backend/internal/dedupe"
	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/poller"
	"resume-screening-backend/internal/repository/postgres"
	"resume-screening-backend/internal/usecase"
	"resume-screening-backend/pkg/ai"
	"resume-screening-backend/pkg/database"
	"resume-screening-backend/pkg/extract"
	"resume-screening-backend/pkg/gmail"
	"resume-screening-backend/pkg/logger"
	"resume-screening-backend/pkg/redis"
	"resume-screening-backend/pkg/storage"
)

// @title           Resume Screening API
// @version         1.0
// @description     Automated resume intake and candidate screening pipeline.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting resume screening backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	screeningRepo := postgres.NewScreeningRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	auditRepo := postgres.NewAuditRepository(dbPool)
	metricRepo := postgres.NewMetricRepository(dbPool)

	// 5. Setup seen-message cache (Redis when available, in-memory otherwise)
	var seen domain.SeenCache
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory dedup cache", "error", err)
		seen = dedupe.NewMemoryCache()
	} else {
		seen = dedupe.NewRedisCache(redis.Client())
		defer redis.Close()
	}

	// 6. Setup resume storage (S3-compatible bucket or local directory)
	var store domain.ResumeStore
	if cfg.S3Bucket != "" {
		store, err = storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to configure S3 resume storage", "error", err)
			os.Exit(1)
		}
	} else {
		store, err = storage.NewLocalStore(cfg.LocalResumeDir)
		if err != nil {
			logger.Log.Error("Failed to configure local resume storage", "error", err)
			os.Exit(1)
		}
	}

	// 7. Setup Mailbox + Calendar
	var (
		mailbox   domain.Mailbox
		scheduler domain.CalendarScheduler
	)
	gmailClient, err := gmail.NewClient(ctx, gmail.Options{
		TokenJSON:       cfg.GmailTokenJSON,
		TokenPath:       cfg.GmailTokenPath,
		SenderEmail:     cfg.SenderEmail,
		MaxAttachmentMB: cfg.MaxAttachmentMB,
	})
	if err != nil {
		logger.Log.Warn("Gmail unavailable - mailbox operations disabled", "error", err)
	} else {
		mailbox = gmailClient
		if scheduler, err = gmail.NewScheduler(ctx, gmailClient); err != nil {
			logger.Log.Warn("Calendar unavailable - invites fall back to .ics attachments", "error", err)
			scheduler = nil
		}
	}

	// 8. Setup AI + extraction collaborators
	var completer domain.ChatCompleter
	if cfg.OpenRouterAPIKey != "" {
		completer = ai.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL)
	}
	extractor := extract.NewExtractor(extract.NewTesseractOCR(cfg.TesseractLang, cfg.PopplerPath))

	// 9. Setup UseCases
	parser := usecase.NewResumeParser(completer, cfg.ParsingModel)
	screener := usecase.NewScreener(completer, cfg.ScreeningModel)
	positions := usecase.NewPositionMatcher(jobRepo)
	notifier := usecase.NewNotificationUsecase(mailbox, scheduler, candidateRepo, auditRepo, metricRepo, cfg.SenderEmail)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, screeningRepo, auditRepo, metricRepo)
	pipeline := usecase.NewPipelineUsecase(usecase.PipelineDeps{
		Mailbox:       mailbox,
		Seen:          seen,
		Extractor:     extractor,
		Parser:        parser,
		Screener:      screener,
		Positions:     positions,
		Store:         store,
		CandidateRepo: candidateRepo,
		ScreeningRepo: screeningRepo,
		AuditRepo:     auditRepo,
		MetricRepo:    metricRepo,
		Notifier:      notifier,
		MailboxQuery:  cfg.MailboxQuery,
	})

	// 10. Background intake poller
	if cfg.EnableEmailProcessing && mailbox != nil {
		logger.Log.Info("Email processing enabled - starting background poller")
		go poller.New(pipeline, time.Duration(cfg.PollIntervalSeconds)*time.Second).Run(ctx)
	} else {
		logger.Log.Info("Email processing disabled - set ENABLE_EMAIL_PROCESSING=true to enable")
	}

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC:   candidateUC,
		Notifier:      notifier,
		Pipeline:      pipeline,
		Store:         store,
		Seen:          seen,
		MailboxOnline: mailbox != nil,
		Config:        cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
