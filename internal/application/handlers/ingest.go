// Package handlers orchestrates the resolution and consolidation pipeline.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/domain/ports"
	"github.com/fundtrack/fundtrack-core/internal/domain/services"
)

// ErrEmptyRegistry means the quarter's filing index yielded no filers;
// nothing is matched and nothing is written.
var ErrEmptyRegistry = errors.New("filing index is empty for the requested quarter")

// Snapshotter writes and reads quarter snapshots. Implemented by
// parsers.Snapshot; an interface here so tests run without the filesystem.
type Snapshotter interface {
	Write(quarter entities.Quarter, funds []entities.Fund, holdings []entities.ExtractedHolding) error
	Read(quarter entities.Quarter) ([]entities.Fund, []entities.ExtractedHolding, error)
}

// IngestHandler runs the pipeline: discover fund names, resolve them
// against the quarter's filer registry, extract holdings from each
// resolved fund's filing, and consolidate everything into the store.
type IngestHandler struct {
	source       ports.FundSource
	index        ports.FilingIndexProvider
	resolver     *services.Resolver
	extractor    ports.HoldingsExtractor
	consolidator *services.Consolidator
	store        ports.HoldingsStore
	snapshots    Snapshotter
}

// NewIngestHandler creates a new ingest handler. snapshots may be nil to
// disable snapshots entirely; a preloaded run then fails with an error.
func NewIngestHandler(
	source ports.FundSource,
	index ports.FilingIndexProvider,
	resolver *services.Resolver,
	extractor ports.HoldingsExtractor,
	consolidator *services.Consolidator,
	store ports.HoldingsStore,
	snapshots Snapshotter,
) *IngestHandler {
	return &IngestHandler{
		source:       source,
		index:        index,
		resolver:     resolver,
		extractor:    extractor,
		consolidator: consolidator,
		store:        store,
		snapshots:    snapshots,
	}
}

// IngestOptions controls one pipeline run.
type IngestOptions struct {
	Quarter entities.Quarter
	// Refresh truncates all tables before consolidating.
	Refresh bool
	// UsePreloaded replays the quarter's snapshot files instead of
	// resolving and extracting.
	UsePreloaded bool
	// Progress, when set, receives human-readable stage updates.
	Progress func(msg string)
}

// IngestResult reports what one run did at every stage.
type IngestResult struct {
	RunID   string
	Quarter entities.Quarter

	Resolution         services.ResolutionReport
	FilingsProcessed   int
	ExtractionFailures int
	HoldingsExtracted  int

	Consolidation entities.ConsolidationResult
}

// Handle runs the pipeline for one quarter.
func (h *IngestHandler) Handle(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	result := &IngestResult{
		RunID:   uuid.New().String(),
		Quarter: opts.Quarter,
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}

	var (
		funds    []entities.Fund
		filings  []entities.Filing
		holdings []entities.ExtractedHolding
	)

	if opts.UsePreloaded {
		if h.snapshots == nil {
			return nil, errors.New("snapshots are disabled; cannot use preloaded data")
		}
		var err error
		funds, holdings, err = h.snapshots.Read(opts.Quarter)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		filings = services.FilingsFromHoldings(holdings)
		result.Resolution.Matched = len(funds)
		result.FilingsProcessed = len(filings)
		result.HoldingsExtracted = len(holdings)
		progress(fmt.Sprintf("Loaded %d funds and %d holdings from snapshot", len(funds), len(holdings)))
	} else {
		var err error
		funds, filings, holdings, err = h.fetch(ctx, opts.Quarter, result, progress)
		if err != nil {
			return result, err
		}
	}

	if err := h.store.EnsureSchema(ctx); err != nil {
		return result, fmt.Errorf("ensuring schema: %w", err)
	}
	if opts.Refresh {
		progress("Clearing database")
		if err := h.store.Truncate(ctx); err != nil {
			return result, fmt.Errorf("clearing database: %w", err)
		}
	}

	consolidation, err := h.consolidator.Consolidate(ctx, opts.Quarter, funds, filings, holdings)
	if err != nil {
		return result, err
	}
	result.Consolidation = consolidation
	progress(fmt.Sprintf("Consolidated %d funds, %d securities, %d filings, %d holdings",
		consolidation.Funds, consolidation.Securities, consolidation.Filings, consolidation.HoldingsInserted))

	return result, nil
}

// fetch runs discovery, resolution and extraction, and writes the quarter
// snapshot.
func (h *IngestHandler) fetch(ctx context.Context, quarter entities.Quarter, result *IngestResult, progress func(string)) ([]entities.Fund, []entities.Filing, []entities.ExtractedHolding, error) {
	names, err := h.source.FundNames(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing fund names: %w", err)
	}
	progress(fmt.Sprintf("Discovered %d fund names", len(names)))

	refs, err := h.index.FilingIndex(ctx, quarter)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetching filing index: %w", err)
	}
	registry := entities.NewRegistryFromIndex(refs)
	if registry.Len() == 0 {
		return nil, nil, nil, ErrEmptyRegistry
	}
	progress(fmt.Sprintf("Registry has %d filers for %s", registry.Len(), quarter))

	resolution, err := h.resolver.Resolve(ctx, names, registry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving funds: %w", err)
	}
	result.Resolution = resolution.Report
	progress(fmt.Sprintf("Matched %d funds (%d variant failures, %d unmatched, %d duplicate drops)",
		resolution.Report.Matched, resolution.Report.VariantFailures,
		resolution.Report.Unmatched, resolution.Report.DuplicateDrops))

	if len(resolution.Funds) == 0 {
		return nil, nil, nil, services.ErrNoFunds
	}

	resolved := make(map[int64]bool, len(resolution.Funds))
	for _, f := range resolution.Funds {
		resolved[f.CIK] = true
	}

	var (
		filings  []entities.Filing
		holdings []entities.ExtractedHolding
	)
	processed := make(map[int64]bool)
	for _, ref := range refs {
		if !resolved[ref.CIK] || processed[ref.CIK] {
			continue
		}
		processed[ref.CIK] = true

		hs, err := h.extractor.Holdings(ctx, ref)
		if err != nil {
			result.ExtractionFailures++
			progress(fmt.Sprintf("  %s: extraction failed: %v", ref.Company, err))
			continue
		}
		result.FilingsProcessed++
		filings = append(filings, entities.Filing{FundCIK: ref.CIK, FiledOn: ref.FiledOn})
		holdings = append(holdings, hs...)
		progress(fmt.Sprintf("  %s: %d holdings", ref.Company, len(hs)))
	}
	result.HoldingsExtracted = len(holdings)

	if h.snapshots != nil {
		if err := h.snapshots.Write(quarter, resolution.Funds, holdings); err != nil {
			return nil, nil, nil, fmt.Errorf("writing snapshot: %w", err)
		}
		progress(fmt.Sprintf("Snapshot written for %s", quarter))
	}

	return resolution.Funds, filings, holdings, nil
}
