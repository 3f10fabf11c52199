package handlers

import (
	"context"
	"fmt"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/domain/ports"
	"github.com/fundtrack/fundtrack-core/internal/domain/services"
)

// ResolveHandler runs name resolution only, without touching the store.
// Used to audit matching behavior before an ingest.
type ResolveHandler struct {
	source   ports.FundSource
	index    ports.FilingIndexProvider
	resolver *services.Resolver
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(source ports.FundSource, index ports.FilingIndexProvider, resolver *services.Resolver) *ResolveHandler {
	return &ResolveHandler{
		source:   source,
		index:    index,
		resolver: resolver,
	}
}

// Handle resolves the discovered fund names against the quarter's registry.
func (h *ResolveHandler) Handle(ctx context.Context, quarter entities.Quarter) (*services.Resolution, error) {
	names, err := h.source.FundNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fund names: %w", err)
	}

	refs, err := h.index.FilingIndex(ctx, quarter)
	if err != nil {
		return nil, fmt.Errorf("fetching filing index: %w", err)
	}
	registry := entities.NewRegistryFromIndex(refs)
	if registry.Len() == 0 {
		return nil, ErrEmptyRegistry
	}

	resolution, err := h.resolver.Resolve(ctx, names, registry)
	if err != nil {
		return nil, fmt.Errorf("resolving funds: %w", err)
	}
	return resolution, nil
}
