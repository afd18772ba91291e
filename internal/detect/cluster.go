package detect

import (
	"sort"

	"github.com/mfuentes/insider-scout/internal/model"
)

// DetectClusters groups cluster-eligible filings by ticker and scores each
// group. Clusters below the acceptance floor are discarded; survivors come
// back sorted by score descending, stable for ties.
//
// Eligibility: an open-market purchase, absolute value in
// [MinPurchaseValue, WhaleThreshold), a title on the broad insider allowlist,
// and a positive price. Whale-range filings are excluded here so the two
// detectors never count the same filing twice.
func DetectClusters(filings []model.NormalizedFiling, cfg Config) ([]model.ClusterOpportunity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string][]model.NormalizedFiling)
	var order []string

	for _, f := range filings {
		if !clusterEligible(f, cfg) {
			continue
		}
		if _, ok := groups[f.Ticker]; !ok {
			order = append(order, f.Ticker)
		}
		groups[f.Ticker] = append(groups[f.Ticker], f)
	}

	clusters := make([]model.ClusterOpportunity, 0, len(order))
	for _, ticker := range order {
		cluster := buildCluster(ticker, groups[ticker])
		if cluster.Score < cfg.MinClusterScore {
			continue
		}
		clusters = append(clusters, cluster)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Score > clusters[j].Score
	})

	return clusters, nil
}

func clusterEligible(f model.NormalizedFiling, cfg Config) bool {
	return f.IsPurchase() &&
		f.AbsValue() >= cfg.MinPurchaseValue &&
		f.AbsValue() < cfg.WhaleThreshold &&
		isClusterRole(f.Title) &&
		f.Price > 0
}

func buildCluster(ticker string, members []model.NormalizedFiling) model.ClusterOpportunity {
	cluster := model.ClusterOpportunity{
		Ticker:          ticker,
		Filings:         members,
		DaysSinceLatest: model.StaleDaysSentinel,
	}

	insiders := make(map[string]bool, len(members))
	var weightedSum float64

	for _, f := range members {
		value := f.AbsValue()
		cluster.TotalValue += value
		weightedSum += f.Price * value
		insiders[f.InsiderName] = true

		// The freshest member drives recency, even when others are stale.
		if f.DaysSinceTrade < cluster.DaysSinceLatest {
			cluster.DaysSinceLatest = f.DaysSinceTrade
		}
		if f.TradeDate.After(cluster.LatestPurchaseDate) {
			cluster.LatestPurchaseDate = f.TradeDate
		}
	}

	cluster.InsiderCount = len(insiders)
	cluster.AvgValue = cluster.TotalValue / float64(len(members))
	cluster.WeightedAvgPrice = weightedSum / cluster.TotalValue
	cluster.Freshness = classifyFreshness(cluster.DaysSinceLatest)
	cluster.Score = scoreCluster(cluster)

	return cluster
}

// scoreCluster applies the four-component additive rubric: total value,
// cluster effect, best insider quality, and freshness. The result is clamped
// to [0,100].
func scoreCluster(c model.ClusterOpportunity) int {
	score := 0

	switch {
	case c.TotalValue >= 5_000_000:
		score += 25
	case c.TotalValue >= 2_000_000:
		score += 20
	case c.TotalValue >= 1_000_000:
		score += 15
	case c.TotalValue >= 500_000:
		score += 10
	}

	switch {
	case c.InsiderCount >= 3:
		score += 25
	case c.InsiderCount >= 2:
		score += 20
	default:
		score += 10
	}

	best := 0
	for _, f := range c.Filings {
		if q := insiderQualityScore(f.Title); q > best {
			best = q
		}
	}
	score += best

	score += clusterFreshnessBonus(c.DaysSinceLatest)

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
