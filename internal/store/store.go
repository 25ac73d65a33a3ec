// Package store persists run history: one row per rebuild, backfill, or
// audit invocation with its completion report.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/nwcapparel/catalog-sync/internal/model"
)

// ErrRunNotFound is returned when a run ID has no matching row.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   string          `json:"kind,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, kind string, live bool) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, report []byte) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
