package mocks

import (
	"context"
	"sync"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

type filingKey struct {
	CIK     int64
	Quarter string
}

// HoldingsStore is an in-memory implementation of ports.HoldingsStore with
// the same natural-key upsert semantics as the Postgres repository, so
// idempotence and full-replace behavior can be asserted without a database.
type HoldingsStore struct {
	mu sync.Mutex

	// ConsolidateErr, when set, fails the whole batch before any write.
	ConsolidateErr error

	Funds      map[int64]entities.Fund            // by CIK
	Securities map[string]entities.Security       // by CUSIP
	Filings    map[filingKey]entities.Filing      // by (CIK, quarter)
	Holdings   map[filingKey][]entities.HoldingRow // owned by filing

	Truncated    bool
	Consolidated int // number of Consolidate calls
}

// NewHoldingsStore returns an empty in-memory store.
func NewHoldingsStore() *HoldingsStore {
	return &HoldingsStore{
		Funds:      make(map[int64]entities.Fund),
		Securities: make(map[string]entities.Security),
		Filings:    make(map[filingKey]entities.Filing),
		Holdings:   make(map[filingKey][]entities.HoldingRow),
	}
}

// EnsureSchema is a no-op.
func (m *HoldingsStore) EnsureSchema(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *HoldingsStore) Close() error { return nil }

// Truncate clears all tables.
func (m *HoldingsStore) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Funds = make(map[int64]entities.Fund)
	m.Securities = make(map[string]entities.Security)
	m.Filings = make(map[filingKey]entities.Filing)
	m.Holdings = make(map[filingKey][]entities.HoldingRow)
	m.Truncated = true
	return nil
}

// Consolidate applies the batch with upsert-by-natural-key semantics and a
// full replace of every touched filing's holdings. The whole batch either
// applies or (on ConsolidateErr) none of it does.
func (m *HoldingsStore) Consolidate(ctx context.Context, batch *entities.ConsolidationBatch) (entities.ConsolidationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Consolidated++
	if m.ConsolidateErr != nil {
		return entities.ConsolidationResult{}, m.ConsolidateErr
	}

	for _, f := range batch.Funds {
		existing, ok := m.Funds[f.CIK]
		if ok {
			existing.Name = f.Name
			m.Funds[f.CIK] = existing
			continue
		}
		m.Funds[f.CIK] = f
	}

	for _, s := range batch.Securities {
		existing, ok := m.Securities[s.Cusip]
		if ok {
			existing.Name = s.Name
			if s.Ticker != "" {
				existing.Ticker = s.Ticker
			}
			m.Securities[s.Cusip] = existing
			continue
		}
		m.Securities[s.Cusip] = s
	}

	inserted := 0
	for _, f := range batch.Filings {
		key := filingKey{CIK: f.FundCIK, Quarter: batch.Quarter.String()}
		m.Filings[key] = f

		// Full replace: previous rows go away even if the batch holds
		// nothing new for this filing.
		m.Holdings[key] = nil
	}
	for _, h := range batch.Holdings {
		if _, ok := m.Securities[h.Cusip]; !ok {
			continue
		}
		key := filingKey{CIK: h.FundCIK, Quarter: batch.Quarter.String()}
		if _, ok := m.Filings[key]; !ok {
			continue
		}
		m.Holdings[key] = append(m.Holdings[key], h)
		inserted++
	}

	return entities.ConsolidationResult{
		Funds:            len(batch.Funds),
		Securities:       len(batch.Securities),
		Filings:          len(batch.Filings),
		HoldingsInserted: inserted,
	}, nil
}

// HoldingsFor returns the stored holding rows for one filing.
func (m *HoldingsStore) HoldingsFor(cik int64, quarter entities.Quarter) []entities.HoldingRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Holdings[filingKey{CIK: cik, Quarter: quarter.String()}]
}
