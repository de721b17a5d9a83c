package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoLogPrefix = "db:repository"

const targetColumns = `id, namespace, name, kind, version, description,
	        enabled, applicable, state, possible, created, modified`

// Repository provides database access for directory operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetTarget finds a target by its full identifier. Returns nil when the
// target does not exist.
func (r *Repository) GetTarget(ctx context.Context, id string) (*Target, error) {
	slog.Debug(fmt.Sprintf("%s - GetTarget id=%s", repoLogPrefix, id))

	row := r.pool.QueryRow(ctx,
		`SELECT `+targetColumns+`
		 FROM targets
		 WHERE id = $1
		 LIMIT 1`, id)

	return scanTarget(row)
}

// UpsertTargetParams holds parameters for UpsertTarget.
type UpsertTargetParams struct {
	ID          string
	Namespace   string
	Name        string
	Kind        string
	Version     string
	Description *string
	Enabled     bool
	Applicable  bool
	State       []byte
	Possible    []byte
}

// UpsertTarget creates or updates a target declaration.
func (r *Repository) UpsertTarget(ctx context.Context, params UpsertTargetParams) (*Target, error) {
	slog.Info(fmt.Sprintf("%s - UpsertTarget id=%s", repoLogPrefix, params.ID))

	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO targets (id, namespace, name, kind, version, description,
		                      enabled, applicable, state, possible, created, modified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   kind = $4,
		   version = $5,
		   description = COALESCE($6, targets.description),
		   enabled = $7,
		   applicable = $8,
		   state = COALESCE($9, targets.state),
		   possible = COALESCE($10, targets.possible),
		   modified = $11
		 RETURNING `+targetColumns,
		params.ID, params.Namespace, params.Name, params.Kind, params.Version,
		params.Description, params.Enabled, params.Applicable, params.State,
		params.Possible, now)

	return scanTarget(row)
}

// ListTargetsParams holds filters for ListTargets.
type ListTargetsParams struct {
	// Namespace restricts results to one namespace; empty means all.
	Namespace string
	// NamePrefix restricts results to names starting with the prefix.
	NamePrefix string
	// ExcludeKinds drops targets whose kind is on the list.
	ExcludeKinds []string
}

// ListTargets lists target declarations with optional filters, ordered
// by identifier.
func (r *Repository) ListTargets(ctx context.Context, params ListTargetsParams) ([]Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if params.Namespace != "" {
		query += fmt.Sprintf(` AND namespace = $%d`, argIdx)
		args = append(args, params.Namespace)
		argIdx++
	}
	if params.NamePrefix != "" {
		query += fmt.Sprintf(` AND name LIKE $%d`, argIdx)
		args = append(args, params.NamePrefix+"%")
		argIdx++
	}
	if len(params.ExcludeKinds) > 0 {
		query += fmt.Sprintf(` AND NOT (kind = ANY($%d))`, argIdx)
		args = append(args, params.ExcludeKinds)
		argIdx++
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s - ListTargets query failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		t, err := scanTargetRow(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

func scanTarget(row pgx.Row) (*Target, error) {
	t, err := scanTargetRow(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func scanTargetRow(row pgx.Row) (*Target, error) {
	var t Target
	err := row.Scan(&t.ID, &t.Namespace, &t.Name, &t.Kind, &t.Version,
		&t.Description, &t.Enabled, &t.Applicable, &t.State, &t.Possible,
		&t.Created, &t.Modified)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
