// Package finnhub adapts the Finnhub REST API to the MarketData interface.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

const (
	defaultBaseURL = "https://finnhub.io/api/v1"
	defaultTimeout = 10 * time.Second
)

// The free tier allows 60 calls/minute; each quote costs two calls, so one
// lookup per 1.2s keeps a full enrichment pass under the limit.
var defaultLimit = rate.Every(1200 * time.Millisecond)

// Client fetches quotes and company profiles from Finnhub.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
	retry      service.RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLimiter overrides the request pacing.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// NewClient creates a Finnhub client. The token is required.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: finnhub API token", common.ErrMissingConfig)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(defaultLimit, 1),
		baseURL:    defaultBaseURL,
		token:      token,
		retry:      service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// quoteResponse mirrors /quote. Finnhub reports all zeros for unknown symbols
// rather than an error status.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

// profileResponse mirrors the subset of /stock/profile2 we use. MarketCap is
// reported in millions.
type profileResponse struct {
	Industry  string  `json:"finnhubIndustry"`
	MarketCap float64 `json:"marketCapitalization"`
	PERatio   float64 `json:"peNWA"`
}

// GetQuote fetches the current quote and company profile for a ticker. A
// symbol Finnhub knows nothing about yields ErrDataUnavailable; a missing
// profile alone does not, the price is what enrichment needs.
func (c *Client) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	if ticker == "" {
		return model.Quote{}, fmt.Errorf("%w: ticker", common.ErrMissingConfig)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return model.Quote{}, err
	}

	var quote quoteResponse
	if err := c.get(ctx, "/quote", ticker, &quote); err != nil {
		return model.Quote{}, err
	}
	if quote.Current <= 0 {
		return model.Quote{}, fmt.Errorf("%s: %w", ticker, common.ErrDataUnavailable)
	}

	result := model.Quote{
		Ticker:       ticker,
		CurrentPrice: quote.Current,
		PriorClose:   quote.PrevClose,
		DayChangePct: quote.ChangePercent,
		YearHigh:     quote.High,
		YearLow:      quote.Low,
		Industry:     "Unknown",
	}

	// Profile gaps are tolerated; valuation signals just stay empty.
	var profile profileResponse
	if err := c.get(ctx, "/stock/profile2", ticker, &profile); err == nil {
		result.MarketCap = profile.MarketCap
		result.PERatio = profile.PERatio
		if profile.Industry != "" {
			result.Industry = profile.Industry
		}
	}

	return result, nil
}

func (c *Client) get(ctx context.Context, path, ticker string, out any) error {
	endpoint := fmt.Sprintf("%s%s?symbol=%s&token=%s",
		c.baseURL, path, url.QueryEscape(ticker), url.QueryEscape(c.token))

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return common.NewRetryableError(fmt.Errorf("failed to build request: %w", err), false)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("finnhub %s: %w", path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("finnhub %s: %w", path, common.ErrRateLimit)
		case resp.StatusCode >= 500:
			return fmt.Errorf("finnhub %s: status %d", path, resp.StatusCode)
		default:
			return common.NewRetryableError(
				fmt.Errorf("finnhub %s: status %d", path, resp.StatusCode), false)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("finnhub %s: failed to read response: %w", path, err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return common.NewRetryableError(
				fmt.Errorf("finnhub %s: failed to decode response: %w", path, err), false)
		}
		return nil
	}, c.retry)
}
