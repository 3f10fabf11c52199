package parsers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// Snapshot writes and reads one quarter's resolved funds and extracted
// holdings as CSV files, so a run can be replayed without re-resolution.
type Snapshot struct {
	DataDir string
}

// FundsPath returns the funds snapshot path for a quarter.
func (s *Snapshot) FundsPath(quarter entities.Quarter) string {
	return filepath.Join(s.DataDir, fmt.Sprintf("funds_%s.csv", quarter))
}

// HoldingsPath returns the holdings snapshot path for a quarter.
func (s *Snapshot) HoldingsPath(quarter entities.Quarter) string {
	return filepath.Join(s.DataDir, fmt.Sprintf("holdings_%s.csv", quarter))
}

// Write writes both snapshot files for the quarter.
func (s *Snapshot) Write(quarter entities.Quarter, funds []entities.Fund, holdings []entities.ExtractedHolding) error {
	if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	if err := writeFile(s.FundsPath(quarter), func(f *os.File) error {
		return FundsCSV{}.Write(f, funds)
	}); err != nil {
		return err
	}
	return writeFile(s.HoldingsPath(quarter), func(f *os.File) error {
		return HoldingsCSV{}.Write(f, holdings)
	})
}

// Read reads both snapshot files for the quarter.
func (s *Snapshot) Read(quarter entities.Quarter) ([]entities.Fund, []entities.ExtractedHolding, error) {
	ff, err := os.Open(s.FundsPath(quarter))
	if err != nil {
		return nil, nil, fmt.Errorf("opening funds snapshot (run init without --use-preloaded first): %w", err)
	}
	defer ff.Close()

	funds, err := FundsCSV{}.Parse(ff)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing funds snapshot: %w", err)
	}

	hf, err := os.Open(s.HoldingsPath(quarter))
	if err != nil {
		return nil, nil, fmt.Errorf("opening holdings snapshot: %w", err)
	}
	defer hf.Close()

	holdings, err := HoldingsCSV{}.Parse(hf)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing holdings snapshot: %w", err)
	}

	return funds, holdings, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
