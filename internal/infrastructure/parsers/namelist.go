package parsers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FileFundSource implements ports.FundSource over a plain text file with
// one fund name per line. Blank lines and lines starting with '#' are
// skipped; names are deduplicated and returned sorted, matching the
// contract of the reference name source.
type FileFundSource struct {
	Path string
}

// FundNames reads, dedupes and sorts the fund names.
func (s *FileFundSource) FundNames(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening fund list: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		seen[name] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fund list: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
