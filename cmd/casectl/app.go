package main

import (
	"context"
	"fmt"

	"github.com/case-tracker/backend/internal/config"
	"github.com/case-tracker/backend/internal/db"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/rbac"
	"github.com/case-tracker/backend/internal/repositories"
	"github.com/case-tracker/backend/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// app is the wiring shared by the subcommands that touch the database.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	pool     *pgxpool.Pool
	users    *repositories.UserRepo
	importer *services.TabularImporter
	legacy   *services.LegacyImporter
	export   *services.ExportService
}

func newApp(ctx context.Context) (*app, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := config.Load()
	cfg.Validate(log)

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	caseRepo := repositories.NewCaseRepo(pool)
	observationRepo := repositories.NewObservationRepo(pool)
	txManager := repositories.NewTxManager(pool)
	ledger := services.NewObservationLedger(caseRepo, observationRepo, log)

	return &app{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		users:    repositories.NewUserRepo(pool),
		importer: services.NewTabularImporter(caseRepo, ledger, txManager, cfg.ImportMaxRows, log),
		legacy: services.NewLegacyImporter(caseRepo, ledger, txManager, services.LegacyColumns{
			Date:        cfg.LegacyDateColumn,
			Responsible: cfg.LegacyResponsibleColumn,
			Content:     cfg.LegacyContentColumn,
		}, log),
		export: services.NewExportService(caseRepo, observationRepo, log),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
	_ = a.log.Sync()
}

// lookupUser accepts a user id or an email address.
func (a *app) lookupUser(ctx context.Context, ref string) (*models.User, error) {
	if ref == "" {
		return nil, fmt.Errorf("--user is required")
	}
	var (
		u   *models.User
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		u, err = a.users.GetByID(ctx, id)
	} else {
		u, err = a.users.GetByEmail(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("user %s is inactive", u.Email)
	}
	return u, nil
}

// editor resolves the acting user and checks that they may import.
func (a *app) editor(ctx context.Context, ref string) (uuid.UUID, error) {
	u, err := a.lookupUser(ctx, ref)
	if err != nil {
		return uuid.Nil, err
	}
	if !rbac.HasPermission(u.Role, rbac.PermImport) {
		return uuid.Nil, fmt.Errorf("user %s: %w", u.Email, models.ErrForbidden)
	}
	return u.ID, nil
}
