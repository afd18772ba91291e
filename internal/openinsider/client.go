// Package openinsider fetches insider purchase filings from the OpenInsider
// screener. Rows come back as raw strings; the normalizer owns all cleaning.
package openinsider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

const (
	defaultBaseURL = "http://openinsider.com"
	defaultTimeout = 45 * time.Second
	maxRows        = 2000
	userAgent      = "insider-scout/1.0"
)

// screener cells per row: index 1 filing date through index 12 value. Rows
// with fewer cells are separators or ads.
const minCells = 13

// Client scrapes the OpenInsider purchase screener.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      service.RetryOptions
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the screener host, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithClock overrides the time source for the date window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates an OpenInsider screener client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		retry:      service.RetryOptions{MaxAttempts: 3, InitialDelay: 2 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchFilings downloads and parses the screener page covering the last
// lookbackDays days of purchase filings.
func (c *Client) FetchFilings(ctx context.Context, lookbackDays int) ([]model.RawFiling, error) {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	screenerURL := c.screenerURL(lookbackDays)
	slog.Debug("Fetching screener page", "lookback_days", lookbackDays)

	var filings []model.RawFiling
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		filings, fetchErr = c.fetchOnce(ctx, screenerURL)
		return fetchErr
	}, c.retry)
	if err != nil {
		return nil, err
	}

	slog.Info("Screener fetch complete", "rows", len(filings))
	return filings, nil
}

func (c *Client) fetchOnce(ctx context.Context, screenerURL string) ([]model.RawFiling, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, screenerURL, nil)
	if err != nil {
		return nil, common.NewRetryableError(fmt.Errorf("failed to build request: %w", err), false)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrScrapeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", common.ErrScrapeFailed, resp.StatusCode)
	default:
		return nil, common.NewRetryableError(
			fmt.Errorf("%w: status %d", common.ErrScrapeFailed, resp.StatusCode), false)
	}

	filings, err := parseScreener(resp.Body)
	if err != nil {
		return nil, common.NewRetryableError(err, false)
	}
	return filings, nil
}

// screenerURL builds the purchase screener query for a date window ending
// today. xp=1 excludes option exercises, xs=1 excludes small trades.
func (c *Client) screenerURL(lookbackDays int) string {
	end := c.now()
	start := end.AddDate(0, 0, -lookbackDays)
	window := fmt.Sprintf("%s - %s", start.Format("01/02/2006"), end.Format("01/02/2006"))

	params := url.Values{}
	params.Set("fd", "-1")
	params.Set("fdr", window)
	params.Set("td", "0")
	params.Set("xp", "1")
	params.Set("xs", "1")
	params.Set("sic1", "-1")
	params.Set("sicl", "100")
	params.Set("sich", "9999")
	params.Set("grp", "0")
	params.Set("sortcol", "0")
	params.Set("cnt", fmt.Sprintf("%d", maxRows))
	params.Set("page", "1")

	return c.baseURL + "/screener?" + params.Encode()
}

// parseScreener extracts raw filing rows from the screener HTML.
func parseScreener(r io.Reader) ([]model.RawFiling, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", common.ErrScrapeFailed, err)
	}

	table := doc.Find("table.tinytable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: results table not found", common.ErrScrapeFailed)
	}

	var filings []model.RawFiling
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			return
		}
		filings = append(filings, model.RawFiling{
			FilingDate:       cellText(cells.Eq(1)),
			TradeDate:        cellText(cells.Eq(2)),
			Ticker:           strings.ToUpper(cellText(cells.Eq(3))),
			CompanyName:      cellText(cells.Eq(4)),
			InsiderName:      cellText(cells.Eq(5)),
			Title:            cellText(cells.Eq(6)),
			TransactionType:  cellText(cells.Eq(7)),
			Price:            cellText(cells.Eq(8)),
			Quantity:         cellText(cells.Eq(9)),
			SharesOwned:      cellText(cells.Eq(10)),
			OwnershipChange:  cellText(cells.Eq(11)),
			TransactionValue: cellText(cells.Eq(12)),
		})
	})

	return filings, nil
}

// cellText prefers the anchor text when a cell wraps its value in a link.
func cellText(cell *goquery.Selection) string {
	if link := cell.Find("a").First(); link.Length() > 0 {
		return strings.TrimSpace(link.Text())
	}
	return strings.TrimSpace(cell.Text())
}
