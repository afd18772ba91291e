package model

// Stage is the lifecycle classification derived from momentum.
type Stage string

// Stage values.
const (
	StageEarlyPositive Stage = "early_positive"
	StageEarlyNegative Stage = "early_negative"
	StageConfirmed     Stage = "confirmed"
	StageLate          Stage = "late"
)

// RiskLevel accompanies a stage.
type RiskLevel string

// Risk levels.
const (
	RiskMedium    RiskLevel = "medium"
	RiskMediumLow RiskLevel = "medium-low"
	RiskHigh      RiskLevel = "high"
)

// Strategy is the recommendation derived from (stage, opportunity type).
// StopLossPct and TargetPct are zero for stages with no entry.
type Strategy struct {
	Action       string
	PositionSize string
	Rationale    string
	StopLossPct  float64
	TargetPct    float64
}

// EnrichedOpportunity is an opportunity plus live market state and its
// momentum classification.
type EnrichedOpportunity struct {
	Opportunity

	Quote                 Quote
	ResearchSignals       []string
	CurrentPrice          float64
	InsiderReferencePrice float64
	MomentumPct           float64
	PctFrom52WeekHigh     float64
	PctFrom52WeekLow      float64
	Stage                 Stage
	Risk                  RiskLevel
	Strategy              Strategy
}
