package detect

import (
	"strings"

	"github.com/mfuentes/insider-scout/internal/model"
)

// Insider titles are free text, so role classification is substring matching
// against ordered keyword lists. Rule order is part of the contract:
// reordering changes scoring outcomes because evaluation is first-match-wins.

// whaleRoles is the restrictive allowlist for whale eligibility.
var whaleRoles = []string{
	"ceo", "chief executive", "founder", "co-founder", "10%",
}

// clusterRoles is the broader allowlist for cluster eligibility.
var clusterRoles = []string{
	"ceo", "chief executive", "founder", "co-founder",
	"cfo", "chief financial", "president", "chairman", "chair", "10%",
}

// qualityRule maps a keyword group to the insider-quality score it earns.
type qualityRule struct {
	keywords []string
	score    int
}

// qualityRules are evaluated top to bottom; the first matching rule wins.
var qualityRules = []qualityRule{
	{keywords: []string{"ceo", "chief executive", "founder", "co-founder"}, score: 25},
	{keywords: []string{"cfo", "chief financial"}, score: 20},
	{keywords: []string{"10%"}, score: 20},
	{keywords: []string{"president", "chairman", "chair"}, score: 15},
}

// otherQualifyingScore is earned by any title that passed the allowlist but
// matched no quality rule.
const otherQualifyingScore = 8

func titleMatchesAny(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// isWhaleRole reports whether the title passes the whale allowlist.
func isWhaleRole(title string) bool {
	return titleMatchesAny(title, whaleRoles)
}

// isClusterRole reports whether the title passes the cluster allowlist.
func isClusterRole(title string) bool {
	return titleMatchesAny(title, clusterRoles)
}

// insiderQualityScore returns the quality component for one title.
func insiderQualityScore(title string) int {
	for _, rule := range qualityRules {
		if titleMatchesAny(title, rule.keywords) {
			return rule.score
		}
	}
	return otherQualifyingScore
}

// whaleConfidence classifies a whale's title. CEO-class and founder-class
// titles earn high confidence worth 30 points; 10% owners earn high
// confidence worth 25; everything else on the allowlist is medium worth 15.
func whaleConfidence(title string) (model.Confidence, int) {
	if titleMatchesAny(title, []string{"ceo", "chief executive", "founder", "co-founder"}) {
		return model.ConfidenceHigh, 30
	}
	if strings.Contains(strings.ToLower(title), "10%") {
		return model.ConfidenceHigh, 25
	}
	return model.ConfidenceMedium, 15
}
