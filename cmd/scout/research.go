package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfuentes/insider-scout/internal/cli"
	"github.com/mfuentes/insider-scout/internal/engine"
	"github.com/mfuentes/insider-scout/internal/model"
)

func researchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Enrich opportunities with market data and build the report",
		Long: `Looks up live quotes for the top opportunities from the latest run,
classifies each by price momentum since the insider bought, and writes the
research report plus CSV downloads to the data directory.`,
		RunE: runResearch,
	}

	cmd.Flags().Int("top", 10, "How many tickers to enrich with live quotes")
	_ = viper.BindPFlag("pipeline.enrich_top", cmd.Flags().Lookup("top"))

	return cmd
}

func runResearch(cmd *cobra.Command, _ []string) error {
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

	slog.Info(cli.FormatTitle("Researching opportunities..."))

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

// enrichmentBar renders a progress bar over the per-ticker quote lookups.
// The bar is created lazily on the first callback, once the total is known.
func enrichmentBar() func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Fetching market data...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		_ = bar.Set(done)
	}
}

func printReport(rpt *model.Report) {
	summary := rpt.Summary
	content := fmt.Sprintf(`Opportunities:  %d (%d clusters, %d whales)
Enriched:       %d (%d without market data)
Avg momentum:   %+.1f%%
Insider value:  $%.0f`,
		summary.TotalOpportunities, summary.ClusterCount, summary.WhaleCount,
		summary.EnrichedCount, summary.UnavailableCount,
		summary.AvgMomentumPct, summary.TotalInsiderValueUSD)

	slog.Info(cli.RenderBox(cli.ChartIcon+" Research Report", content))

	printBucket("Early entries", rpt.Early)
	printBucket("Confirmed moves", rpt.Confirmed)
	printBucket("Late (avoid)", rpt.Late)
}

func printBucket(name string, opportunities []model.EnrichedOpportunity) {
	if len(opportunities) == 0 {
		return
	}
	slog.Info(cli.FormatInfo(name))
	for _, opp := range opportunities {
		slog.Info(fmt.Sprintf("  %-6s %s  %s/%s",
			opp.Ticker(),
			cli.FormatMomentum(opp.MomentumPct),
			opp.Strategy.Action,
			opp.Strategy.PositionSize))
	}
}
