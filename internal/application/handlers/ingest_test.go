package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/domain/mocks"
	"github.com/fundtrack/fundtrack-core/internal/domain/services"
)

var (
	q3    = entities.Quarter{Year: 2024, Q: 3}
	nov14 = time.Date(2024, time.November, 14, 0, 0, 0, 0, time.UTC)
)

// pipeline bundles the handler with its mocks so tests can tweak them.
type pipeline struct {
	handler   *IngestHandler
	source    *mocks.FundSource
	index     *mocks.FilingIndexProvider
	extractor *mocks.HoldingsExtractor
	store     *mocks.HoldingsStore
}

func newPipeline() *pipeline {
	source := &mocks.FundSource{
		Names: []string{"Renaissance Technologies"},
	}
	index := &mocks.FilingIndexProvider{
		Refs: []entities.FilingRef{
			{Company: "Renaissance Technologies LLC", CIK: 1000066160, FiledOn: nov14, Path: "edgar/data/1000066160/rentec.txt"},
		},
	}
	extractor := &mocks.HoldingsExtractor{
		HoldingsByPath: map[string][]entities.ExtractedHolding{
			"edgar/data/1000066160/rentec.txt": {
				{Cusip: "0378331005", Name: "APPLE INC", Shares: 10000, Value: 5000000},
				{Cusip: "594918104", Name: "MICROSOFT CORP", Shares: 2000, Value: 800000},
			},
		},
		ErrFor: map[string]error{},
	}
	variator := &mocks.NameVariator{
		Variants: map[string][]string{
			"Renaissance Technologies": {"Renaissance Technologies LLC"},
		},
	}
	store := mocks.NewHoldingsStore()

	resolver := services.NewResolver(variator, services.NewMatcher(95), 4, time.Second)
	handler := NewIngestHandler(source, index, resolver, extractor,
		services.NewConsolidator(store), store, nil)

	return &pipeline{
		handler:   handler,
		source:    source,
		index:     index,
		extractor: extractor,
		store:     store,
	}
}

func TestIngestHandler_Handle(t *testing.T) {
	p := newPipeline()

	result, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Resolution.Discovered)
	assert.Equal(t, 1, result.Resolution.Matched)
	assert.Equal(t, 1, result.FilingsProcessed)
	assert.Equal(t, 2, result.HoldingsExtracted)
	assert.Equal(t, 2, result.Consolidation.HoldingsInserted)

	rows := p.store.HoldingsFor(1000066160, q3)
	require.Len(t, rows, 2)
}

func TestIngestHandler_Handle_IsIdempotent(t *testing.T) {
	p := newPipeline()

	first, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)
	second, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)

	assert.Equal(t, first.Consolidation, second.Consolidation)
	assert.Len(t, p.store.Funds, 1)
	assert.Len(t, p.store.Securities, 2)
	assert.Len(t, p.store.Filings, 1)
	assert.Len(t, p.store.HoldingsFor(1000066160, q3), 2)
}

func TestIngestHandler_Handle_ReIngestFullyReplacesHoldings(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)
	require.Len(t, p.store.HoldingsFor(1000066160, q3), 2)

	// Second ingestion of the same quarter reports only one security; the
	// other must be gone afterwards, not merged.
	p.extractor.HoldingsByPath["edgar/data/1000066160/rentec.txt"] = []entities.ExtractedHolding{
		{Cusip: "0378331005", Name: "APPLE INC", Shares: 9000, Value: 4500000},
	}
	_, err = p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)

	rows := p.store.HoldingsFor(1000066160, q3)
	require.Len(t, rows, 1)
	assert.Equal(t, "0378331005", rows[0].Cusip)
	assert.Equal(t, int64(9000), rows[0].Shares)
}

func TestIngestHandler_Handle_EmptyReIngestDeletesAllHoldings(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)
	require.Len(t, p.store.HoldingsFor(1000066160, q3), 2)

	p.extractor.HoldingsByPath["edgar/data/1000066160/rentec.txt"] = nil
	_, err = p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)

	assert.Empty(t, p.store.HoldingsFor(1000066160, q3), "delete-then-insert with an empty set is a delete-all")
	assert.Len(t, p.store.Filings, 1, "the filing row itself survives")
}

func TestIngestHandler_Handle_ValueFilter(t *testing.T) {
	p := newPipeline()
	p.extractor.HoldingsByPath["edgar/data/1000066160/rentec.txt"] = []entities.ExtractedHolding{
		{Cusip: "0378331005", Name: "APPLE INC", Shares: 10000, Value: 0},  // dropped
		{Cusip: "594918104", Name: "MICROSOFT CORP", Shares: 0, Value: 75}, // kept
	}

	result, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Consolidation.HoldingsInserted)

	rows := p.store.HoldingsFor(1000066160, q3)
	require.Len(t, rows, 1)
	assert.Equal(t, "594918104", rows[0].Cusip)
	assert.Equal(t, int64(0), rows[0].Shares)
}

func TestIngestHandler_Handle_EmptyRegistryAborts(t *testing.T) {
	p := newPipeline()
	p.index.Refs = nil

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	assert.ErrorIs(t, err, ErrEmptyRegistry)
	assert.Equal(t, 0, p.store.Consolidated)
}

func TestIngestHandler_Handle_NoFundsMatchedAborts(t *testing.T) {
	p := newPipeline()
	p.source.Names = []string{"Totally Unknown Partners"}

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	assert.ErrorIs(t, err, services.ErrNoFunds)
	assert.Equal(t, 0, p.store.Consolidated)
}

func TestIngestHandler_Handle_ExtractionFailureContinues(t *testing.T) {
	p := newPipeline()
	p.source.Names = []string{"Renaissance Technologies", "Bridgewater"}
	p.index.Refs = append(p.index.Refs, entities.FilingRef{
		Company: "Bridgewater Associates, LP", CIK: 1350694, FiledOn: nov14, Path: "edgar/data/1350694/bw.txt",
	})
	p.extractor.ErrFor["edgar/data/1350694/bw.txt"] = assert.AnError

	// Bridgewater needs a variant that matches its registry row.
	variator := &mocks.NameVariator{
		Variants: map[string][]string{
			"Renaissance Technologies": {"Renaissance Technologies LLC"},
			"Bridgewater":              {"Bridgewater Associates, LP"},
		},
	}
	resolver := services.NewResolver(variator, services.NewMatcher(95), 4, time.Second)
	handler := NewIngestHandler(p.source, p.index, resolver, p.extractor,
		services.NewConsolidator(p.store), p.store, nil)

	result, err := handler.Handle(context.Background(), IngestOptions{Quarter: q3})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Resolution.Matched)
	assert.Equal(t, 1, result.ExtractionFailures)
	assert.Equal(t, 1, result.FilingsProcessed)
	assert.Len(t, p.store.HoldingsFor(1000066160, q3), 2)
	assert.Empty(t, p.store.HoldingsFor(1350694, q3))
}

func TestIngestHandler_Handle_PreloadedWithoutSnapshotsFails(t *testing.T) {
	p := newPipeline() // wired with a nil Snapshotter

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3, UsePreloaded: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshots are disabled")
	assert.Equal(t, 0, p.store.Consolidated)
}

func TestIngestHandler_Handle_RefreshTruncates(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), IngestOptions{Quarter: q3, Refresh: true})
	require.NoError(t, err)
	assert.True(t, p.store.Truncated)
}
