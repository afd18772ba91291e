// Package normalize converts raw screener rows into validated filings.
//
// The source feed is inconsistently formatted per field: currency symbols,
// thousands separators, explicit plus signs, and "N/A"/"New" placeholders all
// appear. Cleaning is deliberately forgiving: a malformed cell degrades to
// zero rather than failing the row, and a row is only rejected when its
// identity fields (ticker, value, quantity) end up unusable.
package normalize

import (
	"strconv"
	"strings"
)

// naTokens normalize to zero instead of failing. "New" marks a new position
// in the ownership-change column.
var naTokens = map[string]bool{
	"n/a": true,
	"new": true,
	"":    true,
}

// CleanNumeric parses a currency or share-count cell. It strips dollar signs,
// commas, whitespace, and a leading plus; a leading minus keeps its sign.
// Unparseable text yields 0.
func CleanNumeric(text string) float64 {
	return cleanValue(text, "$")
}

// CleanPercent parses a percentage cell, additionally stripping the trailing
// percent sign.
func CleanPercent(text string) float64 {
	return cleanValue(text, "%")
}

func cleanValue(text, symbol string) float64 {
	text = strings.TrimSpace(text)
	if naTokens[strings.ToLower(text)] {
		return 0
	}

	clean := strings.NewReplacer(symbol, "", ",", "", " ", "", "\t", "").Replace(text)

	negative := strings.HasPrefix(clean, "-")
	if negative {
		clean = clean[1:]
	} else if strings.HasPrefix(clean, "+") {
		clean = clean[1:]
	}

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -value
	}
	return value
}
