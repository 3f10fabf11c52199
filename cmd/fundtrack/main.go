// Package main provides the entry point for the fundtrack CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalConfig string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "fundtrack",
		Short:   "Track institutional equity holdings from 13F filings",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfig, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(
		newInitCmd(),
		newResolveCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
