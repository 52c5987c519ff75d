// Package store persists evaluations and catalog snapshots.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lender-qualify/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// EvaluationFilter narrows ListEvaluations.
type EvaluationFilter struct {
	Company string `json:"company,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for qualification history.
type Store interface {
	// Evaluations
	SaveEvaluation(ctx context.Context, e *model.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error)

	// Catalog snapshots
	SaveCatalogSnapshot(ctx context.Context, snap *model.CatalogSnapshot) error
	LatestCatalogSnapshot(ctx context.Context) (*model.CatalogSnapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, databaseURL string, pool *PoolConfig) (Store, error) {
	switch driver {
	case "sqlite":
		dsn := databaseURL
		if dsn == "" {
			dsn = "qualify.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		if databaseURL == "" {
			return nil, eris.New("store: postgres requires database_url")
		}
		return NewPostgres(ctx, databaseURL, pool)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
