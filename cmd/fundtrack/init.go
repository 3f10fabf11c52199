package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fundtrack/fundtrack-core/internal/application/handlers"
	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

func newInitCmd() *cobra.Command {
	var (
		fundsFile    string
		quarterStr   string
		refresh      bool
		usePreloaded bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Populate the database with 13F holdings for a quarter",
		Long: `Resolves the fund list against the quarter's 13F-HR filers, extracts
holdings from each matched fund's filing, and consolidates everything into
the database. A CSV snapshot is written so the run can be replayed with
--use-preloaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			quarter, err := resolveQuarter(quarterStr)
			if err != nil {
				return err
			}

			return withDeps(ctx, fundsFile, true, func(d *deps) error {
				fmt.Printf("Quarter: %s\n", quarter)

				result, err := d.IngestHandler.Handle(ctx, handlers.IngestOptions{
					Quarter:      quarter,
					Refresh:      refresh,
					UsePreloaded: usePreloaded,
					Progress:     func(msg string) { fmt.Println(msg) },
				})
				if err != nil {
					return err
				}

				fmt.Println()
				fmt.Printf("Done (run %s)\n", result.RunID)
				fmt.Printf("  - %d funds\n", result.Consolidation.Funds)
				fmt.Printf("  - %d securities\n", result.Consolidation.Securities)
				fmt.Printf("  - %d filings\n", result.Consolidation.Filings)
				fmt.Printf("  - %d holdings\n", result.Consolidation.HoldingsInserted)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&fundsFile, "funds-file", "f", "funds.txt", "Path to fund name list (one per line)")
	cmd.Flags().StringVarP(&quarterStr, "quarter", "q", "", "Quarter to ingest (YYYY_Qn, default: latest available)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Clear all tables before inserting")
	cmd.Flags().BoolVar(&usePreloaded, "use-preloaded", false, "Replay the quarter's CSV snapshot instead of fetching")

	return cmd
}

func resolveQuarter(s string) (entities.Quarter, error) {
	if s == "" {
		return entities.LatestQuarter(time.Now()), nil
	}
	return entities.ParseQuarter(s)
}
