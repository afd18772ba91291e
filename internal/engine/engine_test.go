package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

func rawPurchase(ticker, insider, title, value string) model.RawFiling {
	return model.RawFiling{
		TradeDate:        time.Now().AddDate(0, 0, -3).Format("2006-01-02"),
		Ticker:           ticker,
		CompanyName:      ticker + " Inc",
		InsiderName:      insider,
		Title:            title,
		TransactionType:  "P - Purchase",
		Price:            "$10.00",
		Quantity:         "100,000",
		TransactionValue: value,
	}
}

func TestEngineFetchNormalizesAndPersists(t *testing.T) {
	store := newMockStorage()
	source := &mockSource{raws: []model.RawFiling{
		rawPurchase("GOOD", "Alpha", "CEO", "$2,000,000"),
		rawPurchase("GOOD", "Alpha", "CEO", "$2,000,000"), // duplicate
		{Ticker: "", TransactionValue: "$5"},              // invalid
	}}

	e := New(store, source, newMockMarket(), DefaultConfig())

	result, err := e.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.RawRows)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Saved)
	assert.Len(t, store.filings, 1)
}

func TestEngineFetchSourceFailure(t *testing.T) {
	source := &mockSource{err: common.ErrScrapeFailed}
	e := New(newMockStorage(), source, newMockMarket(), DefaultConfig())

	_, err := e.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrScrapeFailed))
}

func TestEngineAnalyzeDetectsAndPersistsRun(t *testing.T) {
	store := newMockStorage()
	source := &mockSource{raws: []model.RawFiling{
		rawPurchase("CLST", "Alpha", "CEO", "$2,000,000"),
		rawPurchase("CLST", "Bravo", "CFO", "$1,500,000"),
		rawPurchase("CLST", "Charlie", "President", "$1,000,000"),
		rawPurchase("WHAL", "Delta", "Founder", "$120,000,000"),
	}}
	e := New(store, source, newMockMarket(), DefaultConfig())

	_, err := e.Fetch(context.Background())
	require.NoError(t, err)

	result, err := e.Analyze(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Clusters, 1)
	assert.Len(t, result.Whales, 1)
	assert.Len(t, result.Opportunities, 2)
	assert.Equal(t, 4, result.FilingCount)

	run, err := store.GetLatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Equal(t, 1, run.Stats.ClustersDetected)
	assert.Equal(t, 1, run.Stats.WhalesDetected)
}

func TestEngineAnalyzeEmptyIsNotAnError(t *testing.T) {
	store := newMockStorage()
	e := New(store, &mockSource{}, newMockMarket(), DefaultConfig())

	result, err := e.Analyze(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)

	run, err := store.GetLatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
}

func TestEngineAnalyzeInvalidConfigIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detect.MinPurchaseValue = -1
	e := New(newMockStorage(), &mockSource{}, newMockMarket(), cfg)

	_, err := e.Analyze(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestEngineResearchEnrichesAndReports(t *testing.T) {
	store := newMockStorage()
	source := &mockSource{raws: []model.RawFiling{
		rawPurchase("CLST", "Alpha", "CEO", "$2,000,000"),
		rawPurchase("CLST", "Bravo", "CFO", "$1,500,000"),
		rawPurchase("NODA", "Echo", "CEO", "$3,000,000"),
		rawPurchase("WHAL", "Delta", "Founder", "$120,000,000"),
	}}
	market := newMockMarket()
	market.quotes["CLST"] = model.Quote{Ticker: "CLST", CurrentPrice: 11.00, MarketCap: 3_000}
	market.quotes["WHAL"] = model.Quote{Ticker: "WHAL", CurrentPrice: 9.00, MarketCap: 90_000}
	// NODA has no quote: excluded, not fatal.

	e := New(store, source, market, DefaultConfig())
	_, err := e.Fetch(context.Background())
	require.NoError(t, err)
	_, err = e.Analyze(context.Background())
	require.NoError(t, err)

	var progressCalls int
	rpt, err := e.Research(context.Background(), ResearchOptions{
		Progress: func(_, _ int) { progressCalls++ },
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rpt.Summary.EnrichedCount)
	assert.Equal(t, 1, rpt.Summary.UnavailableCount)
	assert.Equal(t, 3, rpt.Summary.TotalOpportunities)
	assert.Equal(t, 3, progressCalls)

	// Purchases at $10: CLST at $11 is +10% confirmed, WHAL at $9 is -10%
	// early negative.
	require.Len(t, rpt.Confirmed, 1)
	assert.Equal(t, "CLST", rpt.Confirmed[0].Ticker())
	require.Len(t, rpt.Early, 1)
	assert.Equal(t, "WHAL", rpt.Early[0].Ticker())
	assert.Equal(t, model.StageEarlyNegative, rpt.Early[0].Stage)
}

func TestEngineResearchQuoteFetchedOncePerTicker(t *testing.T) {
	store := newMockStorage()
	source := &mockSource{raws: []model.RawFiling{
		rawPurchase("BOTH", "Alpha", "CEO", "$2,000,000"),
		rawPurchase("BOTH", "Bravo", "CFO", "$1,500,000"),
		rawPurchase("BOTH", "Delta", "Founder", "$120,000,000"),
	}}
	market := newMockMarket()
	market.quotes["BOTH"] = model.Quote{Ticker: "BOTH", CurrentPrice: 10.50}

	e := New(store, source, market, DefaultConfig())
	_, err := e.Fetch(context.Background())
	require.NoError(t, err)
	_, err = e.Analyze(context.Background())
	require.NoError(t, err)

	// The ticker has both a cluster and a whale; the quote is shared.
	rpt, err := e.Research(context.Background(), ResearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rpt.Summary.EnrichedCount)
	assert.Len(t, market.lookups, 1)
}

func TestEngineResearchEnrichTopCap(t *testing.T) {
	store := newMockStorage()
	var raws []model.RawFiling
	tickers := []string{"AAAA", "BBBB", "CCCC", "DDDD"}
	for _, ticker := range tickers {
		raws = append(raws,
			rawPurchase(ticker, "Alpha "+ticker, "CEO", "$3,000,000"),
			rawPurchase(ticker, "Bravo "+ticker, "CFO", "$3,000,000"),
		)
	}
	source := &mockSource{raws: raws}
	market := newMockMarket()
	for _, ticker := range tickers {
		market.quotes[ticker] = model.Quote{Ticker: ticker, CurrentPrice: 10.20}
	}

	cfg := DefaultConfig()
	cfg.EnrichTop = 2
	e := New(store, source, market, cfg)
	_, err := e.Fetch(context.Background())
	require.NoError(t, err)
	_, err = e.Analyze(context.Background())
	require.NoError(t, err)

	rpt, err := e.Research(context.Background(), ResearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, rpt.Summary.EnrichedCount)
	assert.Equal(t, 2, rpt.Summary.UnavailableCount)
	assert.Len(t, market.lookups, 2)
}

func TestEngineResearchNoOpportunities(t *testing.T) {
	e := New(newMockStorage(), &mockSource{}, newMockMarket(), DefaultConfig())

	rpt, err := e.Research(context.Background(), ResearchOptions{})
	require.NoError(t, err)
	assert.Zero(t, rpt.Summary.TotalOpportunities)
	assert.Zero(t, rpt.Summary.AvgMomentumPct)
}
