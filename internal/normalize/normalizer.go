package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

// tradeDateFormats are tried in order. The screener renders ISO dates; older
// exports use the US display format.
var tradeDateFormats = []string{"2006-01-02", "01/02/2006"}

// Normalizer validates and coerces raw filing rows. The zero value is not
// usable; construct with New.
type Normalizer struct {
	now time.Time
}

// New creates a normalizer that derives filing ages from the given time.
func New(now time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts one raw row into a NormalizedFiling. It returns an error
// wrapping common.ErrInvalidRecord when the row cannot identify a usable
// transaction; callers drop the row and continue.
func (n *Normalizer) Normalize(raw model.RawFiling) (model.NormalizedFiling, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw.Ticker))
	if len(ticker) < 1 || len(ticker) > 5 {
		return model.NormalizedFiling{}, fmt.Errorf("%w: ticker %q outside 1-5 characters", common.ErrInvalidRecord, raw.Ticker)
	}

	value := CleanNumeric(raw.TransactionValue)
	if value == 0 {
		return model.NormalizedFiling{}, fmt.Errorf("%w: zero transaction value for %s", common.ErrInvalidRecord, ticker)
	}

	qty := CleanNumeric(raw.Quantity)
	if qty == 0 {
		return model.NormalizedFiling{}, fmt.Errorf("%w: zero quantity for %s", common.ErrInvalidRecord, ticker)
	}

	filing := model.NormalizedFiling{
		Ticker:           ticker,
		CompanyName:      strings.TrimSpace(raw.CompanyName),
		InsiderName:      strings.TrimSpace(raw.InsiderName),
		Title:            strings.TrimSpace(raw.Title),
		TransactionType:  strings.TrimSpace(raw.TransactionType),
		Price:            CleanNumeric(raw.Price),
		Quantity:         qty,
		SharesOwned:      CleanNumeric(raw.SharesOwned),
		OwnershipChange:  CleanPercent(raw.OwnershipChange),
		TransactionValue: value,
	}

	filing.TradeDate, filing.DaysSinceTrade = n.parseTradeDate(raw.TradeDate)
	if filingDate, ok := parseDate(raw.FilingDate); ok {
		filing.FilingDate = filingDate
	}

	return filing, nil
}

// NormalizeAll processes a batch, dropping invalid rows and exact duplicates.
// It returns the surviving filings plus counts of what was dropped.
func (n *Normalizer) NormalizeAll(raws []model.RawFiling) ([]model.NormalizedFiling, int, int) {
	filings := make([]model.NormalizedFiling, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	invalid := 0
	duplicates := 0

	for _, raw := range raws {
		filing, err := n.Normalize(raw)
		if err != nil {
			invalid++
			continue
		}
		hash := filing.Hash()
		if seen[hash] {
			duplicates++
			continue
		}
		seen[hash] = true
		filings = append(filings, filing)
	}

	return filings, invalid, duplicates
}

// parseTradeDate returns the parsed date and the filing's age in days. An
// unparseable date maps to the stale sentinel so it sorts last and fails
// every freshness check.
func (n *Normalizer) parseTradeDate(text string) (time.Time, int) {
	date, ok := parseDate(text)
	if !ok {
		return time.Time{}, model.StaleDaysSentinel
	}

	days := int(n.now.Sub(date).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return date, days
}

func parseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	// Filing-date cells carry a timestamp; keep the date portion.
	if idx := strings.IndexByte(text, ' '); idx > 0 {
		text = text[:idx]
	}
	for _, format := range tradeDateFormats {
		if date, err := time.Parse(format, text); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
