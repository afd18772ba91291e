// Package stage classifies opportunities by price momentum and derives
// strategy recommendations.
package stage

import (
	"fmt"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

// Thresholds partition momentum into lifecycle stages. Passed by value so
// concurrent runs with different thresholds cannot interfere.
type Thresholds struct {
	// EarlyMaxPct is the upper bound (inclusive) of the early stages.
	EarlyMaxPct float64
	// ConfirmedMaxPct is the upper bound (inclusive) of the confirmed stage.
	ConfirmedMaxPct float64
}

// DefaultThresholds returns the production stage boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{EarlyMaxPct: 5, ConfirmedMaxPct: 15}
}

// Validate reports a configuration error for inverted boundaries.
func (t Thresholds) Validate() error {
	if t.ConfirmedMaxPct <= t.EarlyMaxPct {
		return fmt.Errorf("%w: confirmed bound %f must exceed early bound %f", common.ErrInvalidConfig, t.ConfirmedMaxPct, t.EarlyMaxPct)
	}
	return nil
}

// Classify computes momentum from the opportunity's reference price to the
// quote's current price and assigns a stage, risk level, strategy, and
// research signals. It is a pure function per opportunity, so callers may
// parallelize across tickers freely.
//
// An opportunity with no usable current price or a non-positive reference
// price returns common.ErrDataUnavailable: a data gap, not a failure. The
// caller omits it from the staged output and carries on.
func Classify(opp model.Opportunity, quote model.Quote, thresholds Thresholds) (model.EnrichedOpportunity, error) {
	if err := thresholds.Validate(); err != nil {
		return model.EnrichedOpportunity{}, err
	}

	reference := opp.ReferencePrice()
	if !quote.HasPrice() || reference <= 0 {
		return model.EnrichedOpportunity{}, fmt.Errorf("%w: %s", common.ErrDataUnavailable, opp.Ticker())
	}

	momentum := (quote.CurrentPrice - reference) / reference * 100
	stage, risk := classifyMomentum(momentum, thresholds)

	enriched := model.EnrichedOpportunity{
		Opportunity:           opp,
		Quote:                 quote,
		CurrentPrice:          quote.CurrentPrice,
		InsiderReferencePrice: reference,
		MomentumPct:           momentum,
		Stage:                 stage,
		Risk:                  risk,
		Strategy:              strategyFor(stage, opp.Type),
		ResearchSignals:       researchSignals(quote),
	}

	if quote.YearHigh > 0 {
		enriched.PctFrom52WeekHigh = (quote.CurrentPrice - quote.YearHigh) / quote.YearHigh * 100
	}
	if quote.YearLow > 0 {
		enriched.PctFrom52WeekLow = (quote.CurrentPrice - quote.YearLow) / quote.YearLow * 100
	}

	return enriched, nil
}

// classifyMomentum maps momentum onto exactly one stage. The comparison order
// matters: anything at or below the early bound is split by sign, so deeply
// negative momentum still classifies as early_negative.
func classifyMomentum(momentum float64, t Thresholds) (model.Stage, model.RiskLevel) {
	switch {
	case momentum <= t.EarlyMaxPct && momentum >= 0:
		return model.StageEarlyPositive, model.RiskMedium
	case momentum < 0:
		return model.StageEarlyNegative, model.RiskHigh
	case momentum <= t.ConfirmedMaxPct:
		return model.StageConfirmed, model.RiskMediumLow
	default:
		return model.StageLate, model.RiskHigh
	}
}

// researchSignals derives the manual-research hints from company metadata.
// Missing fields simply contribute no signal.
func researchSignals(q model.Quote) []string {
	var signals []string

	if q.PERatio > 0 && q.PERatio < 15 {
		signals = append(signals, "Low PE")
	} else if q.PERatio > 30 {
		signals = append(signals, "High PE - Caution")
	}

	if q.YearHigh > 0 {
		fromHigh := (q.CurrentPrice - q.YearHigh) / q.YearHigh * 100
		if fromHigh > -20 {
			signals = append(signals, "Near 52W High")
		} else if fromHigh < -50 {
			signals = append(signals, "Deep Value Territory")
		}
	}

	switch {
	case q.MarketCap > 50_000:
		signals = append(signals, "Large Cap")
	case q.MarketCap > 2_000:
		signals = append(signals, "Mid Cap")
	case q.MarketCap > 0:
		signals = append(signals, "Small Cap")
	}

	return signals
}
