// Package model defines the core types shared across the insider-scout pipeline.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// StaleDaysSentinel is assigned to DaysSinceTrade when the trade date cannot
// be parsed. It sorts unparseable filings last and fails every freshness check.
const StaleDaysSentinel = 999

// RawFiling is one screener row before any cleaning. All fields are strings
// exactly as the source rendered them; the normalizer owns interpretation.
type RawFiling struct {
	FilingDate       string
	TradeDate        string
	Ticker           string
	CompanyName      string
	InsiderName      string
	Title            string
	TransactionType  string
	Price            string
	Quantity         string
	SharesOwned      string
	OwnershipChange  string
	TransactionValue string
}

// NormalizedFiling is one validated insider transaction.
type NormalizedFiling struct {
	TradeDate        time.Time
	FilingDate       time.Time
	Ticker           string
	CompanyName      string
	InsiderName      string
	Title            string
	TransactionType  string
	Price            float64
	Quantity         float64
	SharesOwned      float64
	OwnershipChange  float64
	TransactionValue float64
	DaysSinceTrade   int
}

// Hash produces a stable identity for duplicate detection. Two rows reporting
// the same insider buying the same ticker on the same date for the same value
// are the same filing, whichever page they were scraped from.
func (f *NormalizedFiling) Hash() string {
	data := fmt.Sprintf("%s:%s:%s:%.2f",
		f.Ticker,
		f.InsiderName,
		f.TradeDate.Format("2006-01-02"),
		f.TransactionValue)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsPurchase reports whether the transaction type indicates an open-market
// purchase. The screener encodes purchases as "P - Purchase".
func (f *NormalizedFiling) IsPurchase() bool {
	return containsFold(f.TransactionType, "p - purchase")
}

// AbsValue returns the absolute transaction value used by every threshold check.
func (f *NormalizedFiling) AbsValue() float64 {
	if f.TransactionValue < 0 {
		return -f.TransactionValue
	}
	return f.TransactionValue
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
