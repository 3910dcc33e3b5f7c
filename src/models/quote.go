package models

import "time"

// MQuote is one canonical normalized price: metric + unit + local calendar date.
// Produced fresh on every fetch cycle; it has no identity beyond that triple.
type MQuote struct {
	Metric        string  `json:"metric"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Date          string  `json:"date"`
}

// -----------------------------------------------------------------------------

// MSpotQuote is the raw USD-denominated global spot reading for both metals.
type MSpotQuote struct {
	GoldUSD             float64 `json:"gold_usd"`
	GoldChange          float64 `json:"gold_change"`
	GoldChangePercent   float64 `json:"gold_change_percent"`
	SilverUSD           float64 `json:"silver_usd"`
	SilverChange        float64 `json:"silver_change"`
	SilverChangePercent float64 `json:"silver_change_percent"`
	Timestamp           int64   `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MCurrencyRate is one row of the official exchange-rate table.
type MCurrencyRate struct {
	ISO3 string  `json:"iso3"`
	Name string  `json:"name"`
	Unit int     `json:"unit"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// MExchangeRates is the resolved exchange-rate table plus its provenance.
// Source is "nrb", "fallback-api" or "static".
type MExchangeRates struct {
	Base      string                   `json:"base"`
	Rates     map[string]MCurrencyRate `json:"rates"`
	Source    string                   `json:"source"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// MHistoryPoint is one day in a metal's daily price series.
type MHistoryPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// MLocalMarket is everything the Nepal-market provider returns in one call set.
type MLocalMarket struct {
	Quotes        []MQuote        `json:"quotes"`
	GoldHistory   []MHistoryPoint `json:"gold_history"`
	SilverHistory []MHistoryPoint `json:"silver_history"`
}

// -----------------------------------------------------------------------------

// MMarketSnapshot is the joined output of one aggregation cycle.
type MMarketSnapshot struct {
	Quotes        []MQuote        `json:"quotes"`
	Spot          MSpotQuote      `json:"spot"`
	Rates         MExchangeRates  `json:"exchange_rates"`
	GoldHistory   []MHistoryPoint `json:"gold_history"`
	SilverHistory []MHistoryPoint `json:"silver_history"`
	FetchedAt     time.Time       `json:"fetched_at"`
}
