package model

import "time"

// ReportSummary carries the portfolio-level statistics for one run.
type ReportSummary struct {
	TotalOpportunities   int
	ClusterCount         int
	WhaleCount           int
	EnrichedCount        int
	UnavailableCount     int // opportunities skipped for lack of market data
	AvgMomentumPct       float64
	TotalInsiderValueUSD float64
}

// QuickStats are coarse research buckets over the enriched set, kept from the
// weekly research report.
type QuickStats struct {
	Sectors    map[string]int
	MarketCaps MarketCapBuckets
	Valuation  ValuationBuckets
}

// MarketCapBuckets counts enriched opportunities by company size.
type MarketCapBuckets struct {
	Large int // > $50B
	Mid   int // > $2B
	Small int
}

// ValuationBuckets counts enriched opportunities by P/E band.
type ValuationBuckets struct {
	Cheap     int // PE < 15
	Fair      int
	Expensive int // PE > 25
}

// Report is the final aggregate of one research run. Built fresh each run,
// never merged incrementally.
type Report struct {
	GeneratedAt time.Time
	Summary     ReportSummary
	QuickStats  QuickStats

	// Stage buckets, ordered by momentum descending.
	Early     []EnrichedOpportunity // both early stages
	Confirmed []EnrichedOpportunity
	Late      []EnrichedOpportunity

	// Type buckets, ordered by momentum descending.
	TopWhales   []EnrichedOpportunity
	TopClusters []EnrichedOpportunity

	// Combined ranking by type-appropriate raw score.
	CombinedTop []EnrichedOpportunity
}
