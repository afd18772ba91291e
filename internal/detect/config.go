// Package detect implements the cluster and whale opportunity detectors.
//
// The two detectors partition the value axis: filings at or above the whale
// threshold belong to the whale detector, everything from the minimum
// purchase value up to (but excluding) the threshold belongs to the cluster
// detector. A single filing can never be counted by both, though one ticker
// may legitimately surface in both outputs when different filings straddle
// the threshold.
package detect

import (
	"fmt"

	"github.com/mfuentes/insider-scout/internal/common"
)

// Config holds the detection thresholds. Values are passed by value into each
// call; nothing in this package reads shared state, so concurrent runs with
// different thresholds do not interfere.
type Config struct {
	// MinPurchaseValue is the smallest absolute transaction value a filing
	// needs to be cluster-eligible.
	MinPurchaseValue float64
	// WhaleThreshold is the absolute transaction value at which a single
	// filing becomes a whale instead of a cluster member.
	WhaleThreshold float64
	// MinClusterScore is the acceptance floor; clusters scoring below it are
	// discarded.
	MinClusterScore int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinPurchaseValue: 500_000,
		WhaleThreshold:   99_000_000,
		MinClusterScore:  50,
	}
}

// Validate reports a configuration error for structurally invalid thresholds.
// A failed validation is fatal to the run; no partial results are produced.
func (c Config) Validate() error {
	if c.MinPurchaseValue <= 0 {
		return fmt.Errorf("%w: min purchase value must be positive, got %f", common.ErrInvalidConfig, c.MinPurchaseValue)
	}
	if c.WhaleThreshold <= c.MinPurchaseValue {
		return fmt.Errorf("%w: whale threshold %f must exceed min purchase value %f", common.ErrInvalidConfig, c.WhaleThreshold, c.MinPurchaseValue)
	}
	if c.MinClusterScore < 0 || c.MinClusterScore > 100 {
		return fmt.Errorf("%w: min cluster score must be in [0,100], got %d", common.ErrInvalidConfig, c.MinClusterScore)
	}
	return nil
}
