// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mfuentes/insider-scout/internal/model"
)

// FilingFilter defines filtering options for filing queries.
type FilingFilter struct {
	Since  *time.Time
	Ticker string
	Limit  int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Filing operations
	SaveFilings(ctx context.Context, filings []model.NormalizedFiling) (int, error)
	GetFilings(ctx context.Context, filter FilingFilter) ([]model.NormalizedFiling, error)

	// Opportunity operations
	SaveOpportunities(ctx context.Context, runID string, opportunities []model.Opportunity) error
	GetOpportunitiesByRun(ctx context.Context, runID string) ([]model.Opportunity, error)
	GetLatestOpportunities(ctx context.Context) ([]model.Opportunity, error)

	// Run tracking
	CreateRun(ctx context.Context, run *model.Run) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error
	GetLatestRun(ctx context.Context) (*model.Run, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// FilingSource fetches raw filing rows from an external feed.
type FilingSource interface {
	FetchFilings(ctx context.Context, lookbackDays int) ([]model.RawFiling, error)
}

// MarketData supplies live quotes and company metadata per ticker. A lookup
// with no usable data returns common.ErrDataUnavailable; callers treat that
// as a gap, not a failure.
type MarketData interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
