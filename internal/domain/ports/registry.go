package ports

import (
	"context"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// FilingIndexProvider lists the 13F-HR filings of one quarter. The rows
// double as the filer registry (company name to CIK) and as references for
// holdings extraction.
type FilingIndexProvider interface {
	FilingIndex(ctx context.Context, quarter entities.Quarter) ([]entities.FilingRef, error)
}

// HoldingsExtractor pulls the holdings records out of one filing document.
// Extraction problems inside a document are recovered locally: a filing
// that cannot be parsed yields an empty slice, not an error. Errors are
// reserved for transport-level failures.
type HoldingsExtractor interface {
	Holdings(ctx context.Context, ref entities.FilingRef) ([]entities.ExtractedHolding, error)
}

// FundSource supplies the deduplicated, sorted list of fund names to
// resolve against the registry.
type FundSource interface {
	FundNames(ctx context.Context) ([]string, error)
}
