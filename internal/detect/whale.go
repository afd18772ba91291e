package detect

import (
	"sort"

	"github.com/mfuentes/insider-scout/internal/model"
)

// whaleBaseScore reflects being a whale at all. Freshness and confidence are
// additive on top, so a stale mega-trade cannot outscore a fresh smaller one
// on confidence alone, while every whale still clears the cluster acceptance
// floor.
const whaleBaseScore = 40

// DetectWhales flags individually oversized purchases. Eligibility: an
// open-market purchase, absolute value at or above the whale threshold, a
// title on the restrictive allowlist (chief executives, founders, 10%
// owners), and a positive price. Results are sorted by score descending,
// stable for ties.
func DetectWhales(filings []model.NormalizedFiling, cfg Config) ([]model.WhaleOpportunity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var whales []model.WhaleOpportunity
	for _, f := range filings {
		if !whaleEligible(f, cfg) {
			continue
		}
		whales = append(whales, buildWhale(f))
	}

	sort.SliceStable(whales, func(i, j int) bool {
		return whales[i].WhaleScore > whales[j].WhaleScore
	})

	return whales, nil
}

func whaleEligible(f model.NormalizedFiling, cfg Config) bool {
	return f.IsPurchase() &&
		f.AbsValue() >= cfg.WhaleThreshold &&
		isWhaleRole(f.Title) &&
		f.Price > 0
}

func buildWhale(f model.NormalizedFiling) model.WhaleOpportunity {
	confidence, confidenceScore := whaleConfidence(f.Title)

	score := whaleBaseScore + whaleFreshnessScore(f.DaysSinceTrade) + confidenceScore
	if score > 100 {
		score = 100
	}

	return model.WhaleOpportunity{
		Ticker:         f.Ticker,
		CompanyName:    f.CompanyName,
		InsiderName:    f.InsiderName,
		Title:          f.Title,
		PurchaseValue:  f.AbsValue(),
		PurchasePrice:  f.Price,
		PurchaseDate:   f.TradeDate,
		Quantity:       f.Quantity,
		DaysSinceTrade: f.DaysSinceTrade,
		Freshness:      classifyFreshness(f.DaysSinceTrade),
		Confidence:     confidence,
		WhaleScore:     score,
	}
}
