package mocks

import (
	"context"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// FilingIndexProvider is a mock implementation of ports.FilingIndexProvider.
type FilingIndexProvider struct {
	Refs []entities.FilingRef
	Err  error
}

// FilingIndex returns the configured refs or error.
func (m *FilingIndexProvider) FilingIndex(ctx context.Context, quarter entities.Quarter) ([]entities.FilingRef, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Refs, nil
}

// HoldingsExtractor is a mock implementation of ports.HoldingsExtractor.
type HoldingsExtractor struct {
	// HoldingsByPath maps filing path to extracted holdings.
	HoldingsByPath map[string][]entities.ExtractedHolding
	// ErrFor lists filing paths whose extraction fails.
	ErrFor map[string]error
}

// Holdings returns the configured holdings for the ref's path, stamped
// with the ref's CIK and filing date like the real extractor.
func (m *HoldingsExtractor) Holdings(ctx context.Context, ref entities.FilingRef) ([]entities.ExtractedHolding, error) {
	if err := m.ErrFor[ref.Path]; err != nil {
		return nil, err
	}
	hs := m.HoldingsByPath[ref.Path]
	out := make([]entities.ExtractedHolding, len(hs))
	copy(out, hs)
	for i := range out {
		out[i].CIK = ref.CIK
		out[i].FiledOn = ref.FiledOn
	}
	return out, nil
}

// FundSource is a mock implementation of ports.FundSource.
type FundSource struct {
	Names []string
	Err   error
}

// FundNames returns the configured names or error.
func (m *FundSource) FundNames(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Names, nil
}
