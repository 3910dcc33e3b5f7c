package models

import "time"

// Recipient outcome statuses.
const (
	StatusSent          = "sent"
	StatusSentPriceOnly = "sent_price_only"
	StatusFailed        = "failed"
	StatusError         = "error"
)

// -----------------------------------------------------------------------------

// MNotificationLogEntry records what was actually communicated to subscribers
// for one data date. Date is the data date, not the send time; a later entry
// for the same date means a correction was sent.
type MNotificationLogEntry struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	GoldPrice     float64   `json:"gold_price"`
	SilverPrice   float64   `json:"silver_price"`
	GoldChange    float64   `json:"gold_change"`
	SilverChange  float64   `json:"silver_change"`
	UsersNotified int       `json:"users_notified"`
	SentAt        time.Time `json:"sent_at"`
}

// -----------------------------------------------------------------------------

// MPricePayload is the per-dispatch price data every recipient receives.
type MPricePayload struct {
	Date                string  `json:"date"`
	GoldPrice           float64 `json:"goldPrice"`
	SilverPrice         float64 `json:"silverPrice"`
	GoldChange          float64 `json:"goldChange"`
	SilverChange        float64 `json:"silverChange"`
	GoldChangePercent   float64 `json:"goldChangePercent"`
	SilverChangePercent float64 `json:"silverChangePercent"`
}

// -----------------------------------------------------------------------------

// MRecipientResult is one per-recipient dispatch outcome.
type MRecipientResult struct {
	Email     string `json:"email"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MDispatchResult is the aggregate outcome of one bulk dispatch.
type MDispatchResult struct {
	Success        bool               `json:"success"`
	TotalUsers     int                `json:"totalUsers"`
	SuccessCount   int                `json:"successCount"`
	PriceOnlyCount int                `json:"priceOnlyCount"`
	FailCount      int                `json:"failCount"`
	Results        []MRecipientResult `json:"results"`
}
