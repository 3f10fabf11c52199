// Package services contains the name-resolution and consolidation logic.
package services

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// DefaultThreshold is the minimum similarity score (0-100) for a registry
// match to be accepted.
const DefaultThreshold = 95

// Match is one accepted registry match.
type Match struct {
	Name  string
	CIK   int64
	Score float64
}

// Matcher finds the best registry entry for a query name using weighted
// fuzzy string similarity.
type Matcher struct {
	threshold int
}

// NewMatcher creates a Matcher with the given score cutoff. A non-positive
// threshold falls back to DefaultThreshold.
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured score cutoff.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Best returns the registry entry most similar to query, or ok=false when
// no entry scores at or above the threshold. Comparison is case-insensitive
// on both sides. When several entries tie at the maximal score the first
// one in registry order wins; registry entries are sorted by name, so the
// result is stable for a fixed registry.
func (m *Matcher) Best(query string, registry *entities.Registry) (Match, bool) {
	queryUpper := strings.ToUpper(query)

	var best Match
	found := false
	for _, entry := range registry.Entries {
		score := fuzzy.WRatio(queryUpper, entry.NameUpper)
		if score < m.threshold {
			continue
		}
		if !found || float64(score) > best.Score {
			best = Match{Name: entry.Name, CIK: entry.CIK, Score: float64(score)}
			found = true
		}
	}
	return best, found
}
