package ports

import (
	"context"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// HoldingsStore is the relational store for funds, securities, filings and
// holdings.
//
// Consolidate applies one batch atomically: fund, security and filing
// upserts by natural key, then a full replace of every touched filing's
// holdings (delete all previous rows, insert the batch's rows). Either the
// whole batch commits or none of it does.
type HoldingsStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Truncate removes all rows from all tables.
	Truncate(ctx context.Context) error

	// Consolidate upserts the batch in a single transaction.
	Consolidate(ctx context.Context, batch *entities.ConsolidationBatch) (entities.ConsolidationResult, error)

	// Close closes the database connection.
	Close() error
}
