// Package store persists the run ledger: one record per suitability
// computation with its datasets, status, result and error.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
)

// ErrRunNotFound is returned when a run id has no ledger record.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	Dataset      string          `json:"dataset,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	CreateRun(ctx context.Context, datasets []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}

// checkPhase accepts the statuses a run passes through between creation and
// CompleteRun or FailRun.
func checkPhase(status model.RunStatus) error {
	switch status {
	case model.RunStatusAligning, model.RunStatusCombining, model.RunStatusEncoding:
		return nil
	}
	return eris.Wrapf(model.ErrInvalidInput, "store: %q is not a run phase", status)
}
