package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var (
		fundsFile  string
		quarterStr string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the fund list against a quarter's 13F filers",
		Long: `Runs name-variant generation and fuzzy matching without writing to the
database, printing every match and every drop for audit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			quarter, err := resolveQuarter(quarterStr)
			if err != nil {
				return err
			}

			return withDeps(ctx, fundsFile, false, func(d *deps) error {
				resolution, err := d.ResolveHandler.Handle(ctx, quarter)
				if err != nil {
					return err
				}

				for _, f := range resolution.Funds {
					fmt.Printf("%-40s -> %-40s cik=%-10d score=%.0f\n", f.Name, f.MatchedName, f.CIK, f.Score)
				}

				report := resolution.Report
				fmt.Println()
				fmt.Printf("Discovered:       %d\n", report.Discovered)
				fmt.Printf("Matched:          %d\n", report.Matched)
				fmt.Printf("Variant failures: %d\n", report.VariantFailures)
				fmt.Printf("Unmatched:        %d\n", report.Unmatched)
				fmt.Printf("Duplicate drops:  %d\n", report.DuplicateDrops)
				for _, name := range report.DuplicateLosers {
					fmt.Printf("  dropped (CIK already claimed): %s\n", name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&fundsFile, "funds-file", "f", "funds.txt", "Path to fund name list (one per line)")
	cmd.Flags().StringVarP(&quarterStr, "quarter", "q", "", "Quarter to resolve against (YYYY_Qn, default: latest available)")

	return cmd
}
