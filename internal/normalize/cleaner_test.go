package normalize

import (
	"testing"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "plain integer", text: "1500", want: 1500},
		{name: "currency with separators", text: "$1,234,567", want: 1234567},
		{name: "explicit plus", text: "+$120,000,000", want: 120000000},
		{name: "negative value", text: "-$2,500,000", want: -2500000},
		{name: "decimal price", text: "$10.73", want: 10.73},
		{name: "surrounding whitespace", text: "  $500,000  ", want: 500000},
		{name: "internal whitespace", text: "1 500 000", want: 1500000},
		{name: "n/a token", text: "N/A", want: 0},
		{name: "new position token", text: "New", want: 0},
		{name: "lowercase n/a", text: "n/a", want: 0},
		{name: "empty cell", text: "", want: 0},
		{name: "garbage degrades to zero", text: "??", want: 0},
		{name: "double sign degrades to zero", text: "+-100", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNumeric(tt.text); got != tt.want {
				t.Errorf("CleanNumeric(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCleanPercent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "positive percent", text: "+12%", want: 12},
		{name: "negative percent", text: "-3.5%", want: -3.5},
		{name: "no sign", text: "8%", want: 8},
		{name: "new position", text: "New", want: 0},
		{name: "n/a", text: "N/A", want: 0},
		{name: "thousands separator", text: "+1,025%", want: 1025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPercent(tt.text); got != tt.want {
				t.Errorf("CleanPercent(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
