package models

import "time"

// MDailyRateRecord is one persisted row of the daily rate ledger.
// At most one current row exists per (metric, unit, date); the date is the
// local calendar date in "2006-01-02" form, never a UTC instant.
type MDailyRateRecord struct {
	ID            int64     `json:"id"`
	Metric        string    `json:"metric"`
	Unit          string    `json:"unit"`
	Date          string    `json:"date"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	CreatedAt     time.Time `json:"created_at"`
}

// -----------------------------------------------------------------------------

// MPriceSnapshot is the last-known-good notified price pair, kept in the store
// as the cross-cycle baseline when no prior history row exists. LastUpdate is
// the data date it was notified for.
type MPriceSnapshot struct {
	Gold       float64 `json:"gold"`
	Silver     float64 `json:"silver"`
	LastUpdate string  `json:"lastUpdate"`
}
