package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

const dateLayout = "2006-01-02"

// HoldingsCSV reads and writes holdings snapshot files, one row per
// extracted holding.
type HoldingsCSV struct{}

var holdingColumns = []string{"cusip", "name", "ticker", "class_title", "shares", "value", "cik", "filing_date"}

// Write writes the holdings as CSV with a header row.
func (HoldingsCSV) Write(w io.Writer, holdings []entities.ExtractedHolding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(holdingColumns); err != nil {
		return fmt.Errorf("writing holdings header: %w", err)
	}
	for _, h := range holdings {
		filedOn := ""
		if !h.FiledOn.IsZero() {
			filedOn = h.FiledOn.Format(dateLayout)
		}
		record := []string{
			h.Cusip,
			h.Name,
			h.Ticker,
			h.ClassTitle,
			strconv.FormatInt(h.Shares, 10),
			strconv.FormatInt(h.Value, 10),
			strconv.FormatInt(h.CIK, 10),
			filedOn,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing holding row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Parse reads a holdings snapshot back.
func (HoldingsCSV) Parse(r io.Reader) ([]entities.ExtractedHolding, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, []string{"cusip", "shares", "value", "cik"})
	if err != nil {
		return nil, err
	}

	var holdings []entities.ExtractedHolding
	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		h := entities.ExtractedHolding{
			Cusip:      getColumn(record, colIndex, "cusip"),
			Name:       getColumn(record, colIndex, "name"),
			Ticker:     getColumn(record, colIndex, "ticker"),
			ClassTitle: getColumn(record, colIndex, "class_title"),
		}
		if h.Shares, err = parseIntColumn(record, colIndex, "shares", lineNum); err != nil {
			return nil, err
		}
		if h.Value, err = parseIntColumn(record, colIndex, "value", lineNum); err != nil {
			return nil, err
		}
		if h.CIK, err = parseIntColumn(record, colIndex, "cik", lineNum); err != nil {
			return nil, err
		}
		if s := getColumn(record, colIndex, "filing_date"); s != "" {
			filedOn, err := time.Parse(dateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid filing_date: %w", lineNum, err)
			}
			h.FiledOn = filedOn
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

func parseIntColumn(record []string, colIndex map[string]int, name string, lineNum int) (int64, error) {
	s := getColumn(record, colIndex, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s: %w", lineNum, name, err)
	}
	return n, nil
}
