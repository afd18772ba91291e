package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfuentes/insider-scout/internal/engine"
	"github.com/mfuentes/insider-scout/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Long: `Serves the dashboard API: run status, pipeline triggering, and the
opportunity and research data endpoints. The pipeline can be triggered
remotely with POST /api/run-pipeline; only one run is in flight at a time.`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 5000, "Port to listen on")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	pipeline := func(ctx context.Context) error {
		if _, err := eng.Fetch(ctx); err != nil {
			return err
		}
		analyzed, err := eng.Analyze(ctx)
		if err != nil {
			return err
		}
		if err := writer.WriteOpportunities(analyzed.Opportunities); err != nil {
			return err
		}
		rpt, err := eng.Research(ctx, engine.ResearchOptions{})
		if err != nil {
			return err
		}
		if err := writer.WriteResearchReport(&rpt); err != nil {
			return err
		}
		return writer.WriteResearchCSV(&rpt)
	}

	handler := server.NewHandler(store, writer, pipeline, slog.Default())
	srv := server.NewServer(server.Config{Port: viper.GetInt("server.port")}, handler, slog.Default())

	// Shut down when the command context is cancelled.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
