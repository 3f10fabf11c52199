package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/domain/ports"
)

var (
	// ErrNoFunds means consolidation was asked to run with zero resolved
	// funds; nothing is written.
	ErrNoFunds = errors.New("no resolved funds to consolidate")
	// ErrNoFilings means no filing in the batch belongs to a resolved
	// fund; nothing is written.
	ErrNoFilings = errors.New("no filings to consolidate")
)

// Consolidator merges extracted holdings into the store with idempotent
// upsert semantics: re-running the same batch leaves the same rows behind.
type Consolidator struct {
	store ports.HoldingsStore
}

// NewConsolidator creates a Consolidator backed by the given store.
func NewConsolidator(store ports.HoldingsStore) *Consolidator {
	return &Consolidator{store: store}
}

// Consolidate builds the batch for one quarter and applies it in a single
// store transaction. It returns ErrNoFunds / ErrNoFilings before touching
// the store when the prerequisites are missing.
func (c *Consolidator) Consolidate(ctx context.Context, quarter entities.Quarter, funds []entities.Fund, filings []entities.Filing, extracted []entities.ExtractedHolding) (entities.ConsolidationResult, error) {
	batch, err := BuildBatch(quarter, funds, filings, extracted)
	if err != nil {
		return entities.ConsolidationResult{}, err
	}

	result, err := c.store.Consolidate(ctx, batch)
	if err != nil {
		return entities.ConsolidationResult{}, fmt.Errorf("consolidating batch for %s: %w", quarter, err)
	}
	return result, nil
}

// BuildBatch normalizes one quarter's extraction output into a
// consolidation batch:
//
//   - filings are restricted to resolved funds, one per fund (first wins);
//   - the distinct security set is derived from the holdings by CUSIP,
//     merging so a known ticker is never lost;
//   - a holding row is kept only when its filing is in the batch, its
//     security is identifiable (non-empty CUSIP) and its value is positive.
//     Zero shares is legitimate and not filtered.
func BuildBatch(quarter entities.Quarter, funds []entities.Fund, filings []entities.Filing, extracted []entities.ExtractedHolding) (*entities.ConsolidationBatch, error) {
	if len(funds) == 0 {
		return nil, ErrNoFunds
	}

	resolved := make(map[int64]bool, len(funds))
	for _, f := range funds {
		resolved[f.CIK] = true
	}

	batch := &entities.ConsolidationBatch{
		Quarter: quarter,
		Funds:   funds,
	}

	filed := make(map[int64]bool, len(filings))
	for _, f := range filings {
		if !resolved[f.FundCIK] || filed[f.FundCIK] {
			continue
		}
		filed[f.FundCIK] = true
		batch.Filings = append(batch.Filings, f)
	}
	if len(batch.Filings) == 0 {
		return nil, ErrNoFilings
	}

	securities := make(map[string]entities.Security)
	var order []string
	for _, h := range extracted {
		if h.Cusip == "" {
			continue
		}
		incoming := entities.Security{Cusip: h.Cusip, Name: h.Name, Ticker: h.Ticker}
		if incoming.Name == "" {
			incoming.Name = "Unknown"
		}
		if old, ok := securities[h.Cusip]; ok {
			securities[h.Cusip] = entities.MergeSecurity(old, incoming)
			continue
		}
		securities[h.Cusip] = incoming
		order = append(order, h.Cusip)
	}
	for _, cusip := range order {
		batch.Securities = append(batch.Securities, securities[cusip])
	}

	for _, h := range extracted {
		if h.Cusip == "" || h.Value <= 0 || !filed[h.CIK] {
			continue
		}
		batch.Holdings = append(batch.Holdings, entities.HoldingRow{
			FundCIK: h.CIK,
			Cusip:   h.Cusip,
			Shares:  h.Shares,
			Value:   h.Value,
		})
	}

	return batch, nil
}

// FilingsFromHoldings derives one filing per fund from a holdings batch,
// using each fund's first holding's filing date. Used by the snapshot
// import path, where filings are not recorded separately.
func FilingsFromHoldings(extracted []entities.ExtractedHolding) []entities.Filing {
	seen := make(map[int64]bool)
	var filings []entities.Filing
	for _, h := range extracted {
		if h.CIK == 0 || seen[h.CIK] {
			continue
		}
		seen[h.CIK] = true
		filings = append(filings, entities.Filing{FundCIK: h.CIK, FiledOn: h.FiledOn})
	}
	return filings
}
