package entities

import (
	"sort"
	"strings"
	"time"
)

// FilingRef points at one 13F-HR filing in the quarterly EDGAR form index.
type FilingRef struct {
	Company string
	CIK     int64
	FiledOn time.Time
	Path    string
}

// RegistryEntry is one filer in the registry. NameUpper is precomputed so
// the matcher does not re-uppercase candidates on every query.
type RegistryEntry struct {
	Name      string
	NameUpper string
	CIK       int64
}

// Registry is the read-only filer name to CIK mapping for one quarter.
// Entries are sorted by name so matching (and therefore score tie-breaks)
// is deterministic across runs.
type Registry struct {
	Entries []RegistryEntry
}

// NewRegistry builds a Registry from a name to CIK mapping.
func NewRegistry(byName map[string]int64) *Registry {
	entries := make([]RegistryEntry, 0, len(byName))
	for name, cik := range byName {
		entries = append(entries, RegistryEntry{
			Name:      name,
			NameUpper: strings.ToUpper(name),
			CIK:       cik,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &Registry{Entries: entries}
}

// NewRegistryFromIndex builds a Registry from filing index rows. When the
// same company name appears more than once the last row wins, mirroring a
// plain map build.
func NewRegistryFromIndex(refs []FilingRef) *Registry {
	byName := make(map[string]int64, len(refs))
	for _, ref := range refs {
		byName[ref.Company] = ref.CIK
	}
	return NewRegistry(byName)
}

// Len returns the number of filers in the registry.
func (r *Registry) Len() int {
	return len(r.Entries)
}
