package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"vidcore/cmd/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunMigrations applies the embedded goose migrations against the configured
// database. Goose needs database/sql, so a short-lived pgx stdlib connection
// is used alongside the pgxpool the app serves from.
func RunMigrations(ctx context.Context, cfg Config, log Logger) error {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrations: dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err == nil {
		log.Info("db.migrations.ok", "version", version)
	}
	return nil
}
