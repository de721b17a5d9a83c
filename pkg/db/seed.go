package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/settings-dispatch/pkg/ref"
)

const seedLogPrefix = "db:seed"

// seedFile mirrors the targets file format the run mode loads; the
// directory additionally records version and description per target.
type seedFile struct {
	Targets []seedEntry `json:"targets"`
}

type seedEntry struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	Version     string                 `json:"version,omitempty"`
	Description string                 `json:"description,omitempty"`
	Values      map[string]interface{} `json:"values,omitempty"`
	Possible    []interface{}          `json:"possibleValues,omitempty"`
	Enabled     *bool                  `json:"enabled,omitempty"`
	Applicable  *bool                  `json:"applicable,omitempty"`
}

// SeedFromTargetsFile upserts every target declared in the targets JSON
// file into the directory.
func SeedFromTargetsFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s - failed to read targets file %s: %w", seedLogPrefix, path, err)
	}

	var file seedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%s - failed to parse targets file %s: %w", seedLogPrefix, path, err)
	}

	repo := NewRepository(pool)
	for _, entry := range file.Targets {
		parsed, err := ref.ParseTargetRef(entry.ID)
		if err != nil {
			return fmt.Errorf("%s - invalid target id %q: %w", seedLogPrefix, entry.ID, err)
		}

		version := entry.Version
		if version == "" {
			version = "1.0.0"
		}
		enabled, applicable := true, true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		if entry.Applicable != nil {
			applicable = *entry.Applicable
		}

		var desc *string
		if entry.Description != "" {
			desc = &entry.Description
		}
		var state, possible []byte
		if entry.Values != nil {
			state, err = json.Marshal(entry.Values)
			if err != nil {
				return fmt.Errorf("%s - encode state for %q: %w", seedLogPrefix, entry.ID, err)
			}
		}
		if entry.Possible != nil {
			possible, err = json.Marshal(entry.Possible)
			if err != nil {
				return fmt.Errorf("%s - encode possible values for %q: %w", seedLogPrefix, entry.ID, err)
			}
		}

		if _, err := repo.UpsertTarget(ctx, UpsertTargetParams{
			ID:          entry.ID,
			Namespace:   parsed.Namespace,
			Name:        parsed.Name,
			Kind:        entry.Kind,
			Version:     version,
			Description: desc,
			Enabled:     enabled,
			Applicable:  applicable,
			State:       state,
			Possible:    possible,
		}); err != nil {
			return fmt.Errorf("%s - upsert %q: %w", seedLogPrefix, entry.ID, err)
		}
	}

	slog.Info(fmt.Sprintf("%s - Seeded %d targets from %s", seedLogPrefix, len(file.Targets), path))
	return nil
}
