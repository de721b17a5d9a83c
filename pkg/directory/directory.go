// Package directory lists and looks up declared targets from the
// database-backed directory.
package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/morezero/settings-dispatch/pkg/db"
	"github.com/morezero/settings-dispatch/pkg/ref"
	"github.com/morezero/settings-dispatch/pkg/setting"
)

const logPrefix = "directory:directory"

// Repo is the subset of db.Repository the directory needs.
type Repo interface {
	GetTarget(ctx context.Context, id string) (*db.Target, error)
	ListTargets(ctx context.Context, params db.ListTargetsParams) ([]db.Target, error)
}

// Directory answers queries over the declared targets table.
type Directory struct {
	repo Repo
}

// New creates a Directory over the given repository.
func New(repo Repo) *Directory {
	return &Directory{repo: repo}
}

// ListParams holds filters for List.
type ListParams struct {
	// Ref optionally restricts results: "system" style namespace-only
	// refs are not supported; use "namespace.prefix" with an optional
	// "@range" suffix (e.g. "system.display@^1.0.0").
	Ref string
	// StandardOnly drops composite and custom kinds from the listing.
	StandardOnly bool
}

// List returns declared targets matching the params, ordered by id.
func (d *Directory) List(ctx context.Context, params ListParams) ([]TargetInfo, error) {
	slog.Debug(fmt.Sprintf("%s - List ref=%q standardOnly=%v", logPrefix, params.Ref, params.StandardOnly))

	dbParams := db.ListTargetsParams{}
	rangeStr := ""

	if params.Ref != "" {
		parsed, err := ref.ParseTargetRef(params.Ref)
		if err != nil {
			return nil, fmt.Errorf("%s - invalid ref %q: %w", logPrefix, params.Ref, err)
		}
		dbParams.Namespace = parsed.Namespace
		dbParams.NamePrefix = parsed.Name
		rangeStr = parsed.Range
	}
	if params.StandardOnly {
		dbParams.ExcludeKinds = []string{setting.KindComposite, setting.KindCustom}
	}

	targets, err := d.repo.ListTargets(ctx, dbParams)
	if err != nil {
		return nil, fmt.Errorf("%s - list targets: %w", logPrefix, err)
	}

	var infos []TargetInfo
	for _, t := range targets {
		if rangeStr != "" && !ref.SatisfiesRange(t.Version, rangeStr) {
			continue
		}
		infos = append(infos, toInfo(&t))
	}
	return infos, nil
}

// Get looks up one target by its full identifier. Returns nil when the
// target is not declared.
func (d *Directory) Get(ctx context.Context, id string) (*TargetInfo, error) {
	t, err := d.repo.GetTarget(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s - get target %q: %w", logPrefix, id, err)
	}
	if t == nil {
		return nil, nil
	}
	info := toInfo(t)
	return &info, nil
}

func toInfo(t *db.Target) TargetInfo {
	return TargetInfo{
		ID:          t.ID,
		Namespace:   t.Namespace,
		Name:        t.Name,
		Kind:        t.Kind,
		Version:     t.Version,
		Description: t.Description,
		Enabled:     t.Enabled,
	}
}
