// Package report aggregates classified opportunities into the research report.
package report

import (
	"sort"
	"time"

	"github.com/mfuentes/insider-scout/internal/model"
)

// Limits caps each report bucket. Zero values are replaced by defaults.
type Limits struct {
	Early       int
	Confirmed   int
	Late        int
	Whales      int
	Clusters    int
	CombinedTop int
}

// DefaultLimits returns the bucket caps used in production reports.
func DefaultLimits() Limits {
	return Limits{
		Early:       10,
		Confirmed:   10,
		Late:        5,
		Whales:      5,
		Clusters:    10,
		CombinedTop: 15,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Early <= 0 {
		l.Early = d.Early
	}
	if l.Confirmed <= 0 {
		l.Confirmed = d.Confirmed
	}
	if l.Late <= 0 {
		l.Late = d.Late
	}
	if l.Whales <= 0 {
		l.Whales = d.Whales
	}
	if l.Clusters <= 0 {
		l.Clusters = d.Clusters
	}
	if l.CombinedTop <= 0 {
		l.CombinedTop = d.CombinedTop
	}
	return l
}

// Build partitions the enriched set into bounded, deterministically ordered
// buckets and computes the summary statistics. An empty input produces an
// empty but valid report: "no opportunities found" is a legitimate outcome.
//
// unavailable counts opportunities that were detected but could not be
// enriched for lack of market data.
func Build(enriched []model.EnrichedOpportunity, unavailable int, limits Limits, now time.Time) model.Report {
	limits = limits.withDefaults()

	rpt := model.Report{
		GeneratedAt: now,
		QuickStats: model.QuickStats{
			Sectors: make(map[string]int),
		},
	}

	var momentumSum float64
	for _, e := range enriched {
		momentumSum += e.MomentumPct
		rpt.Summary.TotalInsiderValueUSD += insiderValue(e)

		if e.Type == model.TypeWhale {
			rpt.Summary.WhaleCount++
		} else {
			rpt.Summary.ClusterCount++
		}

		switch e.Stage {
		case model.StageEarlyPositive, model.StageEarlyNegative:
			rpt.Early = append(rpt.Early, e)
		case model.StageConfirmed:
			rpt.Confirmed = append(rpt.Confirmed, e)
		case model.StageLate:
			rpt.Late = append(rpt.Late, e)
		}

		if e.Type == model.TypeWhale {
			rpt.TopWhales = append(rpt.TopWhales, e)
		} else {
			rpt.TopClusters = append(rpt.TopClusters, e)
		}

		addQuickStats(&rpt.QuickStats, e.Quote)
	}

	rpt.Summary.EnrichedCount = len(enriched)
	rpt.Summary.UnavailableCount = unavailable
	rpt.Summary.TotalOpportunities = len(enriched) + unavailable
	if len(enriched) > 0 {
		rpt.Summary.AvgMomentumPct = momentumSum / float64(len(enriched))
	}

	// Stage and type buckets order by momentum.
	sortByMomentum(rpt.Early)
	sortByMomentum(rpt.Confirmed)
	sortByMomentum(rpt.Late)
	sortByMomentum(rpt.TopWhales)
	sortByMomentum(rpt.TopClusters)

	rpt.Early = truncate(rpt.Early, limits.Early)
	rpt.Confirmed = truncate(rpt.Confirmed, limits.Confirmed)
	rpt.Late = truncate(rpt.Late, limits.Late)
	rpt.TopWhales = truncate(rpt.TopWhales, limits.Whales)
	rpt.TopClusters = truncate(rpt.TopClusters, limits.Clusters)

	// The combined list ranks by the type-appropriate raw score.
	combined := make([]model.EnrichedOpportunity, len(enriched))
	copy(combined, enriched)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score() > combined[j].Score()
	})
	rpt.CombinedTop = truncate(combined, limits.CombinedTop)

	return rpt
}

func insiderValue(e model.EnrichedOpportunity) float64 {
	if e.Type == model.TypeWhale {
		return e.Whale.PurchaseValue
	}
	return e.Cluster.TotalValue
}

func sortByMomentum(opportunities []model.EnrichedOpportunity) {
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].MomentumPct > opportunities[j].MomentumPct
	})
}

func truncate(opportunities []model.EnrichedOpportunity, limit int) []model.EnrichedOpportunity {
	if len(opportunities) > limit {
		return opportunities[:limit]
	}
	return opportunities
}

func addQuickStats(stats *model.QuickStats, q model.Quote) {
	industry := q.Industry
	if industry == "" {
		industry = "Unknown"
	}
	stats.Sectors[industry]++

	switch {
	case q.MarketCap > 50_000:
		stats.MarketCaps.Large++
	case q.MarketCap > 2_000:
		stats.MarketCaps.Mid++
	default:
		stats.MarketCaps.Small++
	}

	switch {
	case q.PERatio > 0 && q.PERatio < 15:
		stats.Valuation.Cheap++
	case q.PERatio > 25:
		stats.Valuation.Expensive++
	default:
		stats.Valuation.Fair++
	}
}
