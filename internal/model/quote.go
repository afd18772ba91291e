package model

// Quote is the market snapshot supplied by the enrichment adapter for one
// ticker. Partial records are normal; zero values mean "not reported", and
// only CurrentPrice is required for staging.
type Quote struct {
	Ticker       string
	Industry     string
	CurrentPrice float64
	PriorClose   float64
	DayChangePct float64
	MarketCap    float64 // millions, as Finnhub reports it
	PERatio      float64
	YearHigh     float64
	YearLow      float64
}

// HasPrice reports whether the quote carries a usable current price.
func (q Quote) HasPrice() bool {
	return q.CurrentPrice > 0
}
