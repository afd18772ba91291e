package detect

import "github.com/mfuentes/insider-scout/internal/model"

// classifyFreshness buckets a filing age in days. The stale-date sentinel
// (999) lands in "old" like any other stale trade.
func classifyFreshness(days int) model.Freshness {
	switch {
	case days <= 7:
		return model.FreshnessFresh
	case days <= 21:
		return model.FreshnessRecent
	default:
		return model.FreshnessOld
	}
}

// whaleFreshnessScore is the freshness contribution to a whale score.
func whaleFreshnessScore(days int) int {
	switch {
	case days <= 7:
		return 30
	case days <= 21:
		return 20
	default:
		return 10
	}
}

// clusterFreshnessBonus is the freshness component of a cluster score. It has
// a finer gradient than the label because cluster scores reward very recent
// consensus.
func clusterFreshnessBonus(days int) int {
	switch {
	case days <= 7:
		return 25
	case days <= 14:
		return 20
	case days <= 21:
		return 15
	case days <= 30:
		return 10
	default:
		return 5
	}
}
