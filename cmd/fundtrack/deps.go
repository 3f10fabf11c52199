package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fundtrack/fundtrack-core/internal/application/handlers"
	"github.com/fundtrack/fundtrack-core/internal/domain/services"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/config"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/edgar"
	llm "github.com/fundtrack/fundtrack-core/internal/infrastructure/llm/openai"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/parsers"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/relationaldb/postgres"
)

// deps holds the wired-up dependencies for commands.
type deps struct {
	Config         *config.Config
	IngestHandler  *handlers.IngestHandler
	ResolveHandler *handlers.ResolveHandler
}

// withDeps loads config, builds dependencies, calls fn, and cleans up.
// fundsFile is the path to the fund name list.
func withDeps(ctx context.Context, fundsFile string, needStore bool, fn func(*deps) error) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	variator, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		return fmt.Errorf("creating name-variation client: %w", err)
	}

	matcher := services.NewMatcher(cfg.Matching.Threshold)
	resolver := services.NewResolver(
		variator,
		matcher,
		cfg.Matching.VariantWorkers,
		time.Duration(cfg.Matching.VariantTimeoutSeconds)*time.Second,
	)

	source := &parsers.FileFundSource{Path: fundsFile}
	edgarClient := edgar.NewClient(cfg.Identity)
	snapshots := &parsers.Snapshot{DataDir: cfg.DataDir}

	d := &deps{
		Config:         cfg,
		ResolveHandler: handlers.NewResolveHandler(source, edgarClient, resolver),
	}

	if needStore {
		store, err := postgres.NewRepository(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database (is Postgres running?): %w", err)
		}
		defer store.Close()

		d.IngestHandler = handlers.NewIngestHandler(
			source,
			edgarClient,
			resolver,
			edgarClient,
			services.NewConsolidator(store),
			store,
			snapshots,
		)
	}

	return fn(d)
}
