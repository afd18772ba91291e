package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mfuentes/insider-scout/internal/config"
	"github.com/mfuentes/insider-scout/internal/engine"
	"github.com/mfuentes/insider-scout/internal/export"
	"github.com/mfuentes/insider-scout/internal/finnhub"
	"github.com/mfuentes/insider-scout/internal/openinsider"
	"github.com/mfuentes/insider-scout/internal/service"
	"github.com/mfuentes/insider-scout/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/scout/scout.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// engineConfig materializes thresholds from configuration. Anything unset
// falls back to the production defaults.
func engineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if v := viper.GetFloat64("detect.min_purchase_value"); v > 0 {
		cfg.Detect.MinPurchaseValue = v
	}
	if v := viper.GetFloat64("detect.whale_threshold"); v > 0 {
		cfg.Detect.WhaleThreshold = v
	}
	if v := viper.GetInt("detect.min_cluster_score"); v > 0 {
		cfg.Detect.MinClusterScore = v
	}
	if v := viper.GetFloat64("stage.early_max_pct"); v > 0 {
		cfg.Stage.EarlyMaxPct = v
	}
	if v := viper.GetFloat64("stage.confirmed_max_pct"); v > 0 {
		cfg.Stage.ConfirmedMaxPct = v
	}
	if v := viper.GetInt("pipeline.lookback_days"); v > 0 {
		cfg.LookbackDays = v
	}
	if v := viper.GetInt("pipeline.enrich_top"); v > 0 {
		cfg.EnrichTop = v
	}

	return cfg
}

// newMarketData builds the finnhub adapter from configuration.
func newMarketData() (service.MarketData, error) {
	token := viper.GetString("finnhub.token")
	if token == "" {
		return nil, fmt.Errorf("finnhub token not configured (set finnhub.token or SCOUT_FINNHUB_TOKEN)")
	}
	return finnhub.NewClient(token)
}

// newEngine wires storage, the screener source, and market data together.
func newEngine(ctx context.Context) (*engine.Engine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	market, err := newMarketData()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	eng := engine.New(store, openinsider.NewClient(), market, engineConfig())
	return eng, store, nil
}

// newExportWriter builds the artifact writer for the data directory.
func newExportWriter() (*export.Writer, error) {
	dataDir := viper.GetString("data.dir")
	if dataDir == "" {
		dataDir = "$HOME/.local/share/scout/data"
	}
	return export.NewWriter(config.ExpandPath(dataDir))
}
