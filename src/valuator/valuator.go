package valuator

import (
	"github.com/shopspring/decimal"

	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// -----------------------------------------------------------------------------
// Portfolio Valuator
//
// Pure function over (transactions, current prices, changes). Prices arrive
// as float64 from the JSON sources; accumulation happens in decimals so a
// long transaction list cannot drift, results leave as float64 payloads.
// -----------------------------------------------------------------------------

var hundred = decimal.NewFromInt(100)

// -----------------------------------------------------------------------------

// Evaluate computes the portfolio summary for one subscriber. Quantities are
// normalized to tola; buys add quantity and cost, sells subtract both.
// Callers with zero transactions should skip the valuator entirely and use a
// price-only payload.
func Evaluate(
	txs []models.MPortfolioTransaction,
	goldPrice, silverPrice, goldChange, silverChange float64,
) *models.MPortfolioSummary {
	gramsPerTola := decimal.NewFromFloat(utils.TolaGrams)

	netGoldQty := decimal.Zero
	netSilverQty := decimal.Zero
	netCost := decimal.Zero

	for _, tx := range txs {
		qty := decimal.NewFromFloat(tx.Quantity)
		if tx.Unit == models.TxUnitGram {
			qty = qty.Div(gramsPerTola)
		}

		cost := decimal.NewFromFloat(tx.Price)
		if tx.Type == models.TxSell {
			qty = qty.Neg()
			cost = cost.Neg()
		}

		switch tx.Metal {
		case models.MetalSilver:
			netSilverQty = netSilverQty.Add(qty)
		default:
			netGoldQty = netGoldQty.Add(qty)
		}
		netCost = netCost.Add(cost)
	}

	gold := decimal.NewFromFloat(goldPrice)
	silver := decimal.NewFromFloat(silverPrice)

	currentValue := netGoldQty.Mul(gold).Add(netSilverQty.Mul(silver))
	totalPL := currentValue.Sub(netCost)

	totalPLPercent := decimal.Zero
	if netCost.IsPositive() {
		totalPLPercent = totalPL.Div(netCost).Mul(hundred)
	}

	// Yesterday's value reuses today's holdings at (price - change).
	yGold := gold.Sub(decimal.NewFromFloat(goldChange))
	ySilver := silver.Sub(decimal.NewFromFloat(silverChange))
	yesterdayValue := netGoldQty.Mul(yGold).Add(netSilverQty.Mul(ySilver))

	todayPL := currentValue.Sub(yesterdayValue)
	todayPLPercent := decimal.Zero
	if yesterdayValue.IsPositive() {
		todayPLPercent = todayPL.Div(yesterdayValue).Mul(hundred)
	}

	return &models.MPortfolioSummary{
		NetGoldQty:             netGoldQty.InexactFloat64(),
		NetSilverQty:           netSilverQty.InexactFloat64(),
		NetCost:                netCost.InexactFloat64(),
		CurrentValue:           currentValue.InexactFloat64(),
		TotalProfitLoss:        totalPL.InexactFloat64(),
		TotalProfitLossPercent: totalPLPercent.InexactFloat64(),
		TodayProfitLoss:        todayPL.InexactFloat64(),
		TodayProfitLossPercent: todayPLPercent.InexactFloat64(),
	}
}
