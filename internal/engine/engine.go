// Package engine orchestrates the insider-scout pipeline: fetch, detect,
// enrich, report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/detect"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/normalize"
	"github.com/mfuentes/insider-scout/internal/report"
	"github.com/mfuentes/insider-scout/internal/service"
	"github.com/mfuentes/insider-scout/internal/stage"
)

// Config holds the engine's tunables. Detection and staging thresholds are
// immutable values handed to each call, never shared mutable state.
type Config struct {
	Detect       detect.Config
	Stage        stage.Thresholds
	Limits       report.Limits
	LookbackDays int
	// EnrichTop caps how many tickers get live market lookups per run; the
	// market API's free tier cannot take much more.
	EnrichTop int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Detect:       detect.DefaultConfig(),
		Stage:        stage.DefaultThresholds(),
		Limits:       report.DefaultLimits(),
		LookbackDays: 30,
		EnrichTop:    10,
	}
}

// Validate checks every threshold before a run starts. A structurally invalid
// configuration is fatal: no partial results are produced.
func (c Config) Validate() error {
	if err := c.Detect.Validate(); err != nil {
		return err
	}
	if err := c.Stage.Validate(); err != nil {
		return err
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("%w: lookback days must be positive, got %d", common.ErrInvalidConfig, c.LookbackDays)
	}
	if c.EnrichTop <= 0 {
		return fmt.Errorf("%w: enrich top must be positive, got %d", common.ErrInvalidConfig, c.EnrichTop)
	}
	return nil
}

// Engine wires the pipeline stages together.
type Engine struct {
	storage service.Storage
	source  service.FilingSource
	market  service.MarketData
	config  Config
}

// New creates an engine with the given dependencies.
func New(storage service.Storage, source service.FilingSource, market service.MarketData, config Config) *Engine {
	return &Engine{
		storage: storage,
		source:  source,
		market:  market,
		config:  config,
	}
}

// FetchResult summarizes one fetch.
type FetchResult struct {
	RawRows    int
	Invalid    int
	Duplicates int
	Saved      int
}

// Fetch pulls raw filings from the source, normalizes them, and persists the
// survivors. Per-row failures are counted, never fatal.
func (e *Engine) Fetch(ctx context.Context) (FetchResult, error) {
	if err := e.config.Validate(); err != nil {
		return FetchResult{}, err
	}

	raws, err := e.source.FetchFilings(ctx, e.config.LookbackDays)
	if err != nil {
		return FetchResult{}, fmt.Errorf("failed to fetch filings: %w", err)
	}

	normalizer := normalize.New(time.Now())
	filings, invalid, duplicates := normalizer.NormalizeAll(raws)

	result := FetchResult{
		RawRows:    len(raws),
		Invalid:    invalid,
		Duplicates: duplicates,
	}

	if len(filings) == 0 {
		slog.Info("No usable filings in feed", "raw_rows", len(raws), "invalid", invalid)
		return result, nil
	}

	saved, err := e.storage.SaveFilings(ctx, filings)
	if err != nil {
		return result, fmt.Errorf("failed to save filings: %w", err)
	}
	result.Saved = saved

	slog.Info("Fetched filings",
		"raw_rows", len(raws),
		"invalid", invalid,
		"duplicates", duplicates,
		"saved", saved)

	return result, nil
}

// AnalyzeResult carries one detection run's output.
type AnalyzeResult struct {
	RunID         string
	Clusters      []model.ClusterOpportunity
	Whales        []model.WhaleOpportunity
	Opportunities []model.Opportunity
	FilingCount   int
}

// Analyze runs both detectors over the stored filings from the lookback
// window and persists the unified opportunity set under a new run. Finding
// nothing is a legitimate outcome, not an error.
func (e *Engine) Analyze(ctx context.Context) (AnalyzeResult, error) {
	if err := e.config.Validate(); err != nil {
		return AnalyzeResult{}, err
	}

	since := time.Now().AddDate(0, 0, -e.config.LookbackDays)
	filings, err := e.storage.GetFilings(ctx, service.FilingFilter{Since: &since})
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("failed to load filings: %w", err)
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Status:    model.RunRunning,
	}
	if err := e.storage.CreateRun(ctx, run); err != nil {
		return AnalyzeResult{}, fmt.Errorf("failed to create run: %w", err)
	}

	result := AnalyzeResult{RunID: run.ID, FilingCount: len(filings)}

	result.Clusters, err = detect.DetectClusters(filings, e.config.Detect)
	if err != nil {
		return result, e.failRun(ctx, run.ID, err)
	}
	result.Whales, err = detect.DetectWhales(filings, e.config.Detect)
	if err != nil {
		return result, e.failRun(ctx, run.ID, err)
	}

	result.Opportunities = make([]model.Opportunity, 0, len(result.Clusters)+len(result.Whales))
	for i := range result.Clusters {
		result.Opportunities = append(result.Opportunities, model.NewClusterOpportunity(&result.Clusters[i]))
	}
	for i := range result.Whales {
		result.Opportunities = append(result.Opportunities, model.NewWhaleOpportunity(&result.Whales[i]))
	}

	if len(result.Opportunities) > 0 {
		if err := e.storage.SaveOpportunities(ctx, run.ID, result.Opportunities); err != nil {
			return result, e.failRun(ctx, run.ID, err)
		}
	}

	stats := model.RunStats{
		FilingsSaved:     len(filings),
		ClustersDetected: len(result.Clusters),
		WhalesDetected:   len(result.Whales),
	}
	if err := e.storage.FinishRun(ctx, run.ID, model.RunCompleted, stats); err != nil {
		return result, fmt.Errorf("failed to finish run: %w", err)
	}

	slog.Info("Analysis complete",
		"run_id", run.ID,
		"filings", len(filings),
		"clusters", len(result.Clusters),
		"whales", len(result.Whales))

	return result, nil
}

func (e *Engine) failRun(ctx context.Context, runID string, cause error) error {
	if err := e.storage.FinishRun(ctx, runID, model.RunFailed, model.RunStats{}); err != nil {
		slog.Error("Failed to mark run as failed", "run_id", runID, "error", err)
	}
	return cause
}

// ResearchOptions tweaks one research pass.
type ResearchOptions struct {
	// Progress, when set, is called after each ticker lookup with
	// (completed, total).
	Progress func(done, total int)
}

// Research enriches the latest run's opportunities with live market data,
// classifies each by momentum, and builds the report. A failed lookup for one
// ticker excludes that opportunity and moves on; it never aborts the batch.
func (e *Engine) Research(ctx context.Context, opts ResearchOptions) (model.Report, error) {
	if err := e.config.Validate(); err != nil {
		return model.Report{}, err
	}

	opportunities, err := e.storage.GetLatestOpportunities(ctx)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to load opportunities: %w", err)
	}

	enriched, unavailable := e.enrich(ctx, opportunities, opts)

	rpt := report.Build(enriched, unavailable, e.config.Limits, time.Now())

	slog.Info("Research complete",
		"opportunities", len(opportunities),
		"enriched", len(enriched),
		"unavailable", unavailable,
		"avg_momentum_pct", rpt.Summary.AvgMomentumPct)

	return rpt, nil
}

// enrich looks up market data for the top opportunities (by raw score, the
// order storage returns them in) and classifies each. Quotes are fetched once
// per distinct ticker.
func (e *Engine) enrich(ctx context.Context, opportunities []model.Opportunity, opts ResearchOptions) ([]model.EnrichedOpportunity, int) {
	limit := e.config.EnrichTop
	if limit > len(opportunities) {
		limit = len(opportunities)
	}
	candidates := opportunities[:limit]
	unavailable := len(opportunities) - limit

	quotes := make(map[string]*model.Quote, limit)
	enriched := make([]model.EnrichedOpportunity, 0, limit)

	for i, opp := range candidates {
		ticker := opp.Ticker()

		quote, seen := quotes[ticker]
		if !seen {
			q, err := e.market.GetQuote(ctx, ticker)
			switch {
			case err == nil:
				quote = &q
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// Give up on the rest of the batch only for cancellation.
				return enriched, unavailable + len(candidates) - i
			default:
				slog.Warn("No market data for ticker", "ticker", ticker, "error", err)
				quote = nil
			}
			quotes[ticker] = quote
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(candidates))
		}

		if quote == nil {
			unavailable++
			continue
		}

		result, err := stage.Classify(opp, *quote, e.config.Stage)
		if err != nil {
			// Data gap (no price, bad reference price): omit, don't fail.
			unavailable++
			continue
		}
		enriched = append(enriched, result)
	}

	return enriched, unavailable
}
