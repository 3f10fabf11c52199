// Package postgres provides a Postgres implementation of the HoldingsStore
// interface.
package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/config"
)

// Repository implements ports.HoldingsStore using Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects to the database and verifies the connection.
func NewRepository(ctx context.Context, cfg config.DatabaseConfig) (*Repository, error) {
	pool, err := pgxpool.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates the tables if they don't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS hedge_funds (
		id SERIAL PRIMARY KEY,
		cik TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS securities (
		id SERIAL PRIMARY KEY,
		cusip TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		ticker TEXT
	);

	CREATE TABLE IF NOT EXISTS filings (
		id SERIAL PRIMARY KEY,
		hedge_fund_id INTEGER NOT NULL REFERENCES hedge_funds(id),
		filing_date DATE,
		quarter TEXT NOT NULL,
		UNIQUE (hedge_fund_id, quarter)
	);
	CREATE INDEX IF NOT EXISTS idx_filings_quarter ON filings(quarter);

	CREATE TABLE IF NOT EXISTS holdings (
		id SERIAL PRIMARY KEY,
		filing_id INTEGER NOT NULL REFERENCES filings(id) ON DELETE CASCADE,
		security_id INTEGER NOT NULL REFERENCES securities(id),
		shares BIGINT NOT NULL DEFAULT 0,
		value BIGINT NOT NULL,
		CHECK (shares >= 0),
		CHECK (value > 0)
	);
	CREATE INDEX IF NOT EXISTS idx_holdings_filing ON holdings(filing_id);
	CREATE INDEX IF NOT EXISTS idx_holdings_security ON holdings(security_id);
	`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Truncate removes all rows from all tables.
func (r *Repository) Truncate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE holdings, filings, securities, hedge_funds RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}
	return nil
}

// Consolidate applies one batch in a single transaction: upsert funds by
// CIK, securities by CUSIP (ticker preserved unless the batch provides
// one), filings by (fund, quarter), then full-replace every touched
// filing's holdings. A failure anywhere rolls the whole batch back.
func (r *Repository) Consolidate(ctx context.Context, batch *entities.ConsolidationBatch) (result entities.ConsolidationResult, err error) {
	trx, err := r.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := trx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				log.WithFields(log.Fields{
					"Error": rbErr,
				}).Error("rollback failed")
			}
		}
	}()

	fundIDs, err := r.upsertFunds(ctx, trx, batch.Funds)
	if err != nil {
		return result, err
	}

	securityIDs, err := r.upsertSecurities(ctx, trx, batch.Securities)
	if err != nil {
		return result, err
	}

	filingIDs, err := r.upsertFilings(ctx, trx, batch.Quarter, batch.Filings, fundIDs)
	if err != nil {
		return result, err
	}

	inserted, err := r.replaceHoldings(ctx, trx, batch.Holdings, filingIDs, securityIDs)
	if err != nil {
		return result, err
	}

	if err = trx.Commit(ctx); err != nil {
		return result, fmt.Errorf("committing consolidation: %w", err)
	}

	result = entities.ConsolidationResult{
		Funds:            len(fundIDs),
		Securities:       len(securityIDs),
		Filings:          len(filingIDs),
		HoldingsInserted: inserted,
	}
	return result, nil
}

// upsertFunds inserts or updates funds by CIK and returns CIK -> row id.
func (r *Repository) upsertFunds(ctx context.Context, trx pgx.Tx, funds []entities.Fund) (map[int64]int32, error) {
	ciks := make([]string, 0, len(funds))
	for _, f := range funds {
		cik := strconv.FormatInt(f.CIK, 10)
		_, err := trx.Exec(ctx, `
			INSERT INTO hedge_funds (cik, name) VALUES ($1, $2)
			ON CONFLICT (cik) DO UPDATE SET name = EXCLUDED.name`,
			cik, f.Name)
		if err != nil {
			return nil, fmt.Errorf("upserting fund cik=%s: %w", cik, err)
		}
		ciks = append(ciks, cik)
	}

	ids := make(map[int64]int32, len(funds))
	rows, err := trx.Query(ctx, "SELECT cik, id FROM hedge_funds WHERE cik = ANY($1)", ciks)
	if err != nil {
		return nil, fmt.Errorf("fetching fund ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cik string
		var id int32
		if err := rows.Scan(&cik, &id); err != nil {
			return nil, fmt.Errorf("scanning fund id: %w", err)
		}
		n, err := strconv.ParseInt(cik, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected cik %q in hedge_funds: %w", cik, err)
		}
		ids[n] = id
	}
	return ids, rows.Err()
}

// upsertSecurities inserts or updates securities by CUSIP and returns
// CUSIP -> row id. An empty incoming ticker never overwrites a known one.
func (r *Repository) upsertSecurities(ctx context.Context, trx pgx.Tx, securities []entities.Security) (map[string]int32, error) {
	cusips := make([]string, 0, len(securities))
	for _, s := range securities {
		_, err := trx.Exec(ctx, `
			INSERT INTO securities (cusip, name, ticker) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (cusip) DO UPDATE SET
				name = EXCLUDED.name,
				ticker = COALESCE(EXCLUDED.ticker, securities.ticker)`,
			s.Cusip, s.Name, s.Ticker)
		if err != nil {
			return nil, fmt.Errorf("upserting security cusip=%s: %w", s.Cusip, err)
		}
		cusips = append(cusips, s.Cusip)
	}

	ids := make(map[string]int32, len(securities))
	rows, err := trx.Query(ctx, "SELECT cusip, id FROM securities WHERE cusip = ANY($1)", cusips)
	if err != nil {
		return nil, fmt.Errorf("fetching security ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cusip string
		var id int32
		if err := rows.Scan(&cusip, &id); err != nil {
			return nil, fmt.Errorf("scanning security id: %w", err)
		}
		ids[cusip] = id
	}
	return ids, rows.Err()
}

// upsertFilings inserts or updates one filing per (fund, quarter) and
// returns fund CIK -> filing row id. Re-ingesting a quarter overwrites the
// filing date rather than adding a row.
func (r *Repository) upsertFilings(ctx context.Context, trx pgx.Tx, quarter entities.Quarter, filings []entities.Filing, fundIDs map[int64]int32) (map[int64]int32, error) {
	ids := make(map[int64]int32, len(filings))
	for _, f := range filings {
		fundID, ok := fundIDs[f.FundCIK]
		if !ok {
			continue
		}
		var id int32
		err := trx.QueryRow(ctx, `
			INSERT INTO filings (hedge_fund_id, filing_date, quarter) VALUES ($1, $2, $3)
			ON CONFLICT (hedge_fund_id, quarter) DO UPDATE SET filing_date = EXCLUDED.filing_date
			RETURNING id`,
			fundID, f.FiledOn, quarter.String()).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("upserting filing cik=%d quarter=%s: %w", f.FundCIK, quarter, err)
		}
		ids[f.FundCIK] = id
	}
	return ids, nil
}

// replaceHoldings deletes every touched filing's previous holdings and bulk
// inserts the new set. An empty new set is a valid delete-all.
func (r *Repository) replaceHoldings(ctx context.Context, trx pgx.Tx, holdings []entities.HoldingRow, filingIDs map[int64]int32, securityIDs map[string]int32) (int, error) {
	touched := make([]int32, 0, len(filingIDs))
	for _, id := range filingIDs {
		touched = append(touched, id)
	}
	if len(touched) == 0 {
		return 0, nil
	}

	if _, err := trx.Exec(ctx, "DELETE FROM holdings WHERE filing_id = ANY($1)", touched); err != nil {
		return 0, fmt.Errorf("deleting previous holdings: %w", err)
	}

	rows := make([][]interface{}, 0, len(holdings))
	for _, h := range holdings {
		filingID, ok := filingIDs[h.FundCIK]
		if !ok {
			continue
		}
		securityID, ok := securityIDs[h.Cusip]
		if !ok {
			continue
		}
		rows = append(rows, []interface{}{filingID, securityID, h.Shares, h.Value})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	inserted, err := trx.CopyFrom(ctx,
		pgx.Identifier{"holdings"},
		[]string{"filing_id", "security_id", "shares", "value"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("inserting holdings: %w", err)
	}
	return int(inserted), nil
}
