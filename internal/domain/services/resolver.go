package services

import (
	"context"
	"sync"
	"time"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/domain/ports"
)

const (
	// DefaultVariantWorkers bounds the concurrent name-variation calls.
	DefaultVariantWorkers = 8
	// DefaultVariantTimeout is the per-call deadline for one variation
	// request. A timed-out call is treated like a failed one: that fund is
	// dropped from the batch and the rest continue.
	DefaultVariantTimeout = 60 * time.Second
)

// ResolutionReport carries the per-stage counts of one resolution run so a
// partial or empty result is diagnosable.
type ResolutionReport struct {
	Discovered      int
	VariantFailures int
	Unmatched       int
	DuplicateDrops  int
	Matched         int

	// VariantFailed lists fund names whose variation call failed or timed
	// out. DuplicateLosers lists funds whose best match CIK was already
	// claimed by an earlier fund.
	VariantFailed   []string
	DuplicateLosers []string
}

// Resolution is the outcome of resolving a batch of fund names.
type Resolution struct {
	Funds  []entities.Fund
	Report ResolutionReport
}

// Resolver turns loosely specified fund names into funds with unique
// registry CIKs: it fans out variant generation, fuzzy-matches every
// variant against the registry, and enforces one fund per CIK.
type Resolver struct {
	variator ports.NameVariator
	matcher  *Matcher
	workers  int
	timeout  time.Duration
}

// NewResolver creates a Resolver. Non-positive workers or timeout fall back
// to the defaults.
func NewResolver(variator ports.NameVariator, matcher *Matcher, workers int, timeout time.Duration) *Resolver {
	if workers <= 0 {
		workers = DefaultVariantWorkers
	}
	if timeout <= 0 {
		timeout = DefaultVariantTimeout
	}
	return &Resolver{
		variator: variator,
		matcher:  matcher,
		workers:  workers,
		timeout:  timeout,
	}
}

// Resolve resolves names against the registry.
//
// For each fund the original name and all its variants are matched; the
// qualifying match with the highest score wins, ties going to the earliest
// variant. CIK uniqueness is enforced in input order: a later fund whose
// best CIK is already claimed is dropped entirely, it is never reassigned
// to a second-best candidate. Output order is input order minus drops.
//
// An empty registry or a batch where nothing matches yields an empty fund
// list, not an error.
func (r *Resolver) Resolve(ctx context.Context, names []string, registry *entities.Registry) (*Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Resolution{
		Report: ResolutionReport{Discovered: len(names)},
	}

	variants := r.generateVariants(ctx, names)

	claimed := make(map[int64]bool)
	for i, v := range variants {
		if v == nil {
			res.Report.VariantFailures++
			res.Report.VariantFailed = append(res.Report.VariantFailed, names[i])
			continue
		}

		best, found := r.bestVariantMatch(v, registry)
		if !found {
			res.Report.Unmatched++
			continue
		}

		if claimed[best.CIK] {
			res.Report.DuplicateDrops++
			res.Report.DuplicateLosers = append(res.Report.DuplicateLosers, v.Name)
			continue
		}
		claimed[best.CIK] = true

		res.Funds = append(res.Funds, entities.Fund{
			Name:        v.Name,
			CIK:         best.CIK,
			MatchedName: best.Name,
			Score:       best.Score,
		})
	}

	res.Report.Matched = len(res.Funds)
	return res, nil
}

// bestVariantMatch tries every candidate name and keeps the qualifying
// match with the strictly highest score, so an earlier variant wins ties.
func (r *Resolver) bestVariantMatch(v *entities.NameVariants, registry *entities.Registry) (Match, bool) {
	var best Match
	found := false
	for _, candidate := range v.Candidates() {
		m, ok := r.matcher.Best(candidate, registry)
		if !ok {
			continue
		}
		if !found || m.Score > best.Score {
			best = m
			found = true
		}
	}
	return best, found
}

// generateVariants fans out one variation call per name over a bounded
// worker pool and collects results indexed by input position, so downstream
// tie-breaks never depend on completion order. A failed or timed-out call
// leaves a nil slot; it does not cancel the others.
func (r *Resolver) generateVariants(ctx context.Context, names []string) []*entities.NameVariants {
	results := make([]*entities.NameVariants, len(names))
	sem := make(chan struct{}, r.workers)

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			v, err := r.variator.Variations(callCtx, name)
			if err != nil || v == nil {
				return
			}
			// The original name is the canonical reference regardless of
			// what the service echoed back.
			v.Name = name
			results[i] = v
		}(i, name)
	}
	wg.Wait()

	return results
}
