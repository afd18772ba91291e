package model

import "time"

// Freshness buckets the age of the most relevant purchase.
type Freshness string

// Freshness values.
const (
	FreshnessFresh  Freshness = "fresh"  // traded within the last 7 days
	FreshnessRecent Freshness = "recent" // within 21 days
	FreshnessOld    Freshness = "old"
)

// Confidence grades a whale's insider role.
type Confidence string

// Confidence values.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// OpportunityType discriminates the two detector outputs.
type OpportunityType string

// Opportunity types.
const (
	TypeCluster OpportunityType = "cluster"
	TypeWhale   OpportunityType = "whale"
)

// ClusterOpportunity aggregates one or more filings sharing a ticker.
// Immutable once built; the next analysis run supersedes it wholesale.
type ClusterOpportunity struct {
	LatestPurchaseDate time.Time
	Ticker             string
	Filings            []NormalizedFiling
	InsiderCount       int
	TotalValue         float64
	AvgValue           float64
	WeightedAvgPrice   float64
	DaysSinceLatest    int
	Freshness          Freshness
	Score              int
}

// WhaleOpportunity is a single filing whose absolute value clears the whale
// threshold.
type WhaleOpportunity struct {
	PurchaseDate   time.Time
	Ticker         string
	CompanyName    string
	InsiderName    string
	Title          string
	PurchaseValue  float64
	PurchasePrice  float64
	Quantity       float64
	DaysSinceTrade int
	Freshness      Freshness
	Confidence     Confidence
	WhaleScore     int
}

// Opportunity is the tagged union over the two detector outputs. Exactly one
// of Cluster or Whale is set, matching Type.
type Opportunity struct {
	Cluster *ClusterOpportunity
	Whale   *WhaleOpportunity
	Type    OpportunityType
}

// NewClusterOpportunity wraps a cluster in the union type.
func NewClusterOpportunity(c *ClusterOpportunity) Opportunity {
	return Opportunity{Type: TypeCluster, Cluster: c}
}

// NewWhaleOpportunity wraps a whale in the union type.
func NewWhaleOpportunity(w *WhaleOpportunity) Opportunity {
	return Opportunity{Type: TypeWhale, Whale: w}
}

// Ticker returns the instrument symbol regardless of opportunity type.
func (o Opportunity) Ticker() string {
	if o.Type == TypeWhale {
		return o.Whale.Ticker
	}
	return o.Cluster.Ticker
}

// Score returns the type-appropriate raw score: cluster score for clusters,
// whale score for whales.
func (o Opportunity) Score() int {
	if o.Type == TypeWhale {
		return o.Whale.WhaleScore
	}
	return o.Cluster.Score
}

// ReferencePrice is the insider price momentum is measured against: the
// value-weighted average for clusters, the purchase price for whales.
func (o Opportunity) ReferencePrice() float64 {
	if o.Type == TypeWhale {
		return o.Whale.PurchasePrice
	}
	return o.Cluster.WeightedAvgPrice
}

// Freshness returns the type-appropriate freshness label.
func (o Opportunity) Freshness() Freshness {
	if o.Type == TypeWhale {
		return o.Whale.Freshness
	}
	return o.Cluster.Freshness
}
