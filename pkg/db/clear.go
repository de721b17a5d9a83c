// Package db provides directory data clearing.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearDirectory truncates the targets table. Schema is preserved; only
// data is removed.
func ClearDirectory(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing directory tables", clearLogPrefix))

	_, err := pool.Exec(ctx, `TRUNCATE TABLE targets RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Directory cleared", clearLogPrefix))
	return nil
}
