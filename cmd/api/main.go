package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/case-tracker/backend/internal/config"
	"github.com/case-tracker/backend/internal/db"
	apphttp "github.com/case-tracker/backend/internal/http"
	"github.com/case-tracker/backend/internal/http/handlers"
	"github.com/case-tracker/backend/internal/repositories"
	"github.com/case-tracker/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if _, err := db.RunMigrations(ctx, pool, os.DirFS(cfg.MigrationsDir), log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	caseRepo := repositories.NewCaseRepo(pool)
	observationRepo := repositories.NewObservationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	attachmentRepo := repositories.NewAttachmentRepo(pool)
	txManager := repositories.NewTxManager(pool)

	// Services
	ledger := services.NewObservationLedger(caseRepo, observationRepo, log)
	recorder := services.NewAuditRecorder(caseRepo, auditRepo, log)
	caseService := services.NewCaseService(caseRepo, attachmentRepo, ledger, recorder, txManager, log)
	bulk := services.NewBulkProcessor(caseRepo, recorder, txManager, log)
	timeline := services.NewTimelineAssembler(caseRepo, observationRepo, auditRepo, userRepo, log)
	evidence := services.NewEvidenceService(caseRepo, attachmentRepo, recorder, txManager, log)
	importer := services.NewTabularImporter(caseRepo, ledger, txManager, cfg.ImportMaxRows, log)
	legacy := services.NewLegacyImporter(caseRepo, ledger, txManager, services.LegacyColumns{
		Date:        cfg.LegacyDateColumn,
		Responsible: cfg.LegacyResponsibleColumn,
		Content:     cfg.LegacyContentColumn,
	}, log)
	export := services.NewExportService(caseRepo, observationRepo, log)

	// Handlers
	userHandler := handlers.NewUserHandler(userRepo, log)
	caseHandler := handlers.NewCaseHandler(caseService, timeline, bulk, log)
	evidenceHandler := handlers.NewEvidenceHandler(evidence, cfg.UploadDir, log)
	importHandler := handlers.NewImportHandler(importer, legacy, export, log)

	limiter := db.NewFixedWindowLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.MaxUploadMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, limiter, userHandler, caseHandler, evidenceHandler, importHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
