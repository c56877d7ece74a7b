package http

import (
	"github.com/case-tracker/backend/internal/config"
	"github.com/case-tracker/backend/internal/db"
	"github.com/case-tracker/backend/internal/http/handlers"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	limiter *db.FixedWindowLimiter,
	userHandler *handlers.UserHandler,
	caseHandler *handlers.CaseHandler,
	evidenceHandler *handlers.EvidenceHandler,
	importHandler *handlers.ImportHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(limiter, log))

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/enums", metaHandler.GetEnums)

	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret, log))
	can := middleware.RequirePermission

	// User
	protected.Get("/me", userHandler.GetMe)

	// Cases
	protected.Get("/cases", can(rbac.PermReadCases), caseHandler.ListCases)
	protected.Post("/cases", can(rbac.PermWriteCases), caseHandler.CreateCase)
	protected.Post("/cases/bulk-update", can(rbac.PermBulkUpdate), caseHandler.BulkUpdate)
	protected.Get("/cases/:id", can(rbac.PermReadCases), caseHandler.GetCase)
	protected.Patch("/cases/:id", can(rbac.PermWriteCases), caseHandler.UpdateCase)
	protected.Get("/cases/:id/timeline", can(rbac.PermReadCases), caseHandler.GetTimeline)

	// Observations; authors may edit their own, checked by the ledger
	protected.Post("/cases/:id/observations", can(rbac.PermComment), caseHandler.AddObservation)
	protected.Put("/observations/:id", caseHandler.EditObservation)

	// Evidence
	protected.Get("/cases/:id/attachments", can(rbac.PermReadCases), evidenceHandler.ListAttachments)
	protected.Post("/cases/:id/attachments", can(rbac.PermUploadEvidence), evidenceHandler.UploadAttachment)

	// Import / export
	protected.Get("/cases-io/export", can(rbac.PermExport), importHandler.Export)
	protected.Post("/cases-io/import", can(rbac.PermImport), importHandler.Import)
	protected.Post("/cases-io/import-legacy", can(rbac.PermImport), importHandler.ImportLegacy)
}
