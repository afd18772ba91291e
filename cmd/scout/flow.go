package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfuentes/insider-scout/internal/cli"
	"github.com/mfuentes/insider-scout/internal/engine"
)

func flowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Run the full pipeline: fetch, analyze, research",
		Long: `Runs the complete cycle in one shot: scrape fresh filings, detect and
score opportunities, enrich with live market data, and write the research
report and CSV downloads.`,
		RunE: runFlow,
	}
}

func runFlow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	writer, err := newExportWriter()
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Running full pipeline..."))

	fetched, err := eng.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Fetched %d new filings", fetched.Saved)))

	analyzed, err := eng.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Detected %d clusters, %d whales", len(analyzed.Clusters), len(analyzed.Whales))))

	if err := writer.WriteOpportunities(analyzed.Opportunities); err != nil {
		return err
	}

	rpt, err := eng.Research(ctx, engine.ResearchOptions{Progress: enrichmentBar()})
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}
	if err := writer.WriteResearchReport(&rpt); err != nil {
		return err
	}
	if err := writer.WriteResearchCSV(&rpt); err != nil {
		return err
	}

	printReport(&rpt)
	return nil
}
