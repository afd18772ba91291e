package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfuentes/insider-scout/internal/cli"
	"github.com/mfuentes/insider-scout/internal/engine"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect cluster buys and whale purchases",
		Long: `Runs both detectors over the stored filings from the lookback window
and persists the scored opportunity set under a new run.`,
		RunE: runAnalyze,
	}

	cmd.Flags().Int("min-cluster-score", 0, "Minimum cluster score to keep (default from config)")
	_ = viper.BindPFlag("detect.min_cluster_score", cmd.Flags().Lookup("min-cluster-score"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info(cli.FormatTitle("Analyzing stored filings..."))

	result, err := eng.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printAnalysis(result)
	return nil
}

func printAnalysis(result engine.AnalyzeResult) {
	content := fmt.Sprintf(`Filings analyzed: %d
Cluster buys:     %d
Whale purchases:  %d`,
		result.FilingCount, len(result.Clusters), len(result.Whales))

	slog.Info(cli.RenderBox(cli.ChartIcon+" Detection Results", content))

	for _, cluster := range result.Clusters {
		slog.Info("Cluster buy",
			"ticker", cluster.Ticker,
			"insiders", cluster.InsiderCount,
			"total_value", fmt.Sprintf("$%.0f", cluster.TotalValue),
			"score", cluster.Score,
			"freshness", cluster.Freshness)
	}
	for _, whale := range result.Whales {
		slog.Info(cli.WhaleIcon+" Whale purchase",
			"ticker", whale.Ticker,
			"insider", whale.InsiderName,
			"value", fmt.Sprintf("$%.0f", whale.PurchaseValue),
			"score", whale.WhaleScore,
			"confidence", whale.Confidence)
	}
}
