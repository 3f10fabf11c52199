// Package parsers reads and writes the flat-file formats used for
// snapshots and fund name lists.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// FundsCSV reads and writes fund snapshot files, one row per resolved
// fund.
type FundsCSV struct{}

var fundColumns = []string{"cik", "name", "matched_name", "score"}

// Write writes the funds as CSV with a header row.
func (FundsCSV) Write(w io.Writer, funds []entities.Fund) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fundColumns); err != nil {
		return fmt.Errorf("writing funds header: %w", err)
	}
	for _, f := range funds {
		record := []string{
			strconv.FormatInt(f.CIK, 10),
			f.Name,
			f.MatchedName,
			strconv.FormatFloat(f.Score, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing fund row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Parse reads a funds snapshot back.
func (FundsCSV) Parse(r io.Reader) ([]entities.Fund, error) {
	reader := csv.NewReader(r)

	colIndex, err := readHeader(reader, []string{"cik", "name"})
	if err != nil {
		return nil, err
	}

	var funds []entities.Fund
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

		cik, err := strconv.ParseInt(getColumn(record, colIndex, "cik"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid cik: %w", lineNum, err)
		}

		fund := entities.Fund{
			CIK:         cik,
			Name:        getColumn(record, colIndex, "name"),
			MatchedName: getColumn(record, colIndex, "matched_name"),
		}
		if s := getColumn(record, colIndex, "score"); s != "" {
			score, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid score: %w", lineNum, err)
			}
			fund.Score = score
		}
		funds = append(funds, fund)
	}
	return funds, nil
}

// readHeader reads the header row and verifies required columns.
func readHeader(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return colIndex, nil
}

// getColumn safely extracts a column value from a record.
func getColumn(record []string, colIndex map[string]int, name string) string {
	idx, ok := colIndex[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
