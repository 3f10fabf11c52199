// Package entities contains core domain data structures.
package entities

// VariantCount is the number of alternate renderings the name-variation
// service must return for every fund name.
const VariantCount = 10

// NameVariants holds one fund's original name plus the generated alternate
// renderings used to search the filer registry. It is ephemeral: consumed by
// the resolver and never persisted.
type NameVariants struct {
	Name       string   `json:"name"`
	Variations []string `json:"name_variations"`
}

// Candidates returns the original name followed by all variations, the order
// in which the resolver tries them against the registry.
func (v *NameVariants) Candidates() []string {
	out := make([]string, 0, len(v.Variations)+1)
	out = append(out, v.Name)
	out = append(out, v.Variations...)
	return out
}

// Fund is a holder organization resolved to one stable registry CIK.
// Name is the name as discovered from the reference source, MatchedName is
// the registry's own spelling for that CIK, and Score is the similarity
// score at which the match was accepted.
type Fund struct {
	Name        string  `json:"name"`
	CIK         int64   `json:"cik"`
	MatchedName string  `json:"matched_name"`
	Score       float64 `json:"score"`
}
