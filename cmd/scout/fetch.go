package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfuentes/insider-scout/internal/cli"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape recent insider purchase filings",
		Long: `Downloads the insider purchase screener for the lookback window,
normalizes each row, and persists the new filings. Invalid rows and
duplicates are counted, never fatal.`,
		RunE: runFetch,
	}

	cmd.Flags().IntP("days", "d", 30, "Lookback window in days")
	_ = viper.BindPFlag("pipeline.lookback_days", cmd.Flags().Lookup("days"))

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info(cli.FormatTitle("Fetching insider filings..."))

	result, err := eng.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Fetched %d rows: %d saved, %d duplicates, %d invalid",
		result.RawRows, result.Saved, result.Duplicates, result.Invalid)))

	return nil
}
