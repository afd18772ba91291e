package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

// mockStorage is an in-memory service.Storage for engine tests.
type mockStorage struct {
	mu            sync.Mutex
	filings       []model.NormalizedFiling
	opportunities map[string][]model.Opportunity
	runs          []*model.Run
	saveErr       error
}

func newMockStorage() *mockStorage {
	return &mockStorage{opportunities: make(map[string][]model.Opportunity)}
}

func (m *mockStorage) SaveFilings(_ context.Context, filings []model.NormalizedFiling) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.filings = append(m.filings, filings...)
	return len(filings), nil
}

func (m *mockStorage) GetFilings(_ context.Context, _ service.FilingFilter) ([]model.NormalizedFiling, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NormalizedFiling(nil), m.filings...), nil
}

func (m *mockStorage) SaveOpportunities(_ context.Context, runID string, opportunities []model.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opportunities[runID] = opportunities
	return nil
}

func (m *mockStorage) GetOpportunitiesByRun(_ context.Context, runID string) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opportunities[runID], nil
}

func (m *mockStorage) GetLatestOpportunities(_ context.Context) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, nil
	}
	latest := m.runs[len(m.runs)-1]
	return m.opportunities[latest.ID], nil
}

func (m *mockStorage) CreateRun(_ context.Context, run *model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockStorage) FinishRun(_ context.Context, runID string, status model.RunStatus, stats model.RunStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, run := range m.runs {
		if run.ID == runID {
			run.Status = status
			run.Stats = stats
			run.FinishedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
}

func (m *mockStorage) GetLatestRun(_ context.Context) (*model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, common.ErrNotFound
	}
	return m.runs[len(m.runs)-1], nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }
func (m *mockStorage) Close() error                    { return nil }

// mockSource returns a fixed set of raw rows.
type mockSource struct {
	raws []model.RawFiling
	err  error
}

func (m *mockSource) FetchFilings(_ context.Context, _ int) ([]model.RawFiling, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.raws, nil
}

// mockMarket serves canned quotes and records lookup order.
type mockMarket struct {
	mu      sync.Mutex
	quotes  map[string]model.Quote
	lookups []string
}

func newMockMarket() *mockMarket {
	return &mockMarket{quotes: make(map[string]model.Quote)}
}

func (m *mockMarket) GetQuote(_ context.Context, ticker string) (model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, ticker)
	quote, ok := m.quotes[ticker]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s", common.ErrDataUnavailable, ticker)
	}
	return quote, nil
}
