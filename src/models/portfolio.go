package models

// Transaction kinds and metals. These records are owned by the user-management
// collaborator and only read here.
const (
	TxBuy  = "buy"
	TxSell = "sell"

	MetalGold   = "gold"
	MetalSilver = "silver"

	TxUnitTola = "tola"
	TxUnitGram = "gram"
)

// -----------------------------------------------------------------------------

// MSubscriber is a notification recipient.
type MSubscriber struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// -----------------------------------------------------------------------------

// MPortfolioTransaction is one buy/sell of a metal.
// Price is the total paid or received; Rate is the per-unit rate at the time.
type MPortfolioTransaction struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Type     string  `json:"type"`
	Metal    string  `json:"metal"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Rate     float64 `json:"rate"`
	Date     string  `json:"date"`
}

// -----------------------------------------------------------------------------

// MPortfolioSummary is the valuation computed for one subscriber's holdings.
// Quantities are in tola after normalization.
type MPortfolioSummary struct {
	NetGoldQty             float64 `json:"net_gold_qty"`
	NetSilverQty           float64 `json:"net_silver_qty"`
	NetCost                float64 `json:"net_cost"`
	CurrentValue           float64 `json:"current_value"`
	TotalProfitLoss        float64 `json:"total_profit_loss"`
	TotalProfitLossPercent float64 `json:"total_profit_loss_percent"`
	TodayProfitLoss        float64 `json:"today_profit_loss"`
	TodayProfitLossPercent float64 `json:"today_profit_loss_percent"`
}
