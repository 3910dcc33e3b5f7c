package forex

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// ForexSource
//
// Resolves the USD->NPR conversion table. Three tiers:
//   1. the central bank's published rate table,
//   2. a public exchange-rate API,
//   3. a hard-coded static table.
// Fetch never fails; the table's Source field records which tier produced it.
// -----------------------------------------------------------------------------

type ForexSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewForexSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *ForexSource {
	return &ForexSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "ForexSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *ForexSource) Name() string {
	return "forex"
}

// -----------------------------------------------------------------------------

// nrbResponse matches the central bank rate API. Buy/sell arrive as strings.
type nrbResponse struct {
	Data struct {
		Payload []struct {
			Date  string `json:"date"`
			Rates []struct {
				Currency struct {
					ISO3 string `json:"iso3"`
					Name string `json:"name"`
					Unit int    `json:"unit"`
				} `json:"currency"`
				Buy  string `json:"buy"`
				Sell string `json:"sell"`
			} `json:"rates"`
		} `json:"payload"`
	} `json:"data"`
}

// fallbackResponse matches the open.er-api.com shape.
type fallbackResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// -----------------------------------------------------------------------------

// Fetch resolves the exchange-rate table, degrading through the tiers.
func (s *ForexSource) Fetch(ctx context.Context) *models.MExchangeRates {
	if ctx.Err() == nil {
		if table := s.fetchOfficial(); table != nil {
			return table
		}
		if table := s.fetchFallbackAPI(); table != nil {
			return table
		}
	}

	s.Logger.Warning("All forex providers failed, using static table")
	return s.staticTable()
}

// -----------------------------------------------------------------------------

func (s *ForexSource) fetchOfficial() *models.MExchangeRates {
	today := time.Now().Format("2006-01-02")
	params := map[string]string{
		"page":     "1",
		"per_page": "25",
		"from":     today,
		"to":       today,
	}

	respBytes, err := s.Network.Get(s.Config.Sources.ForexURL, params)
	if err != nil {
		s.Logger.Warning("Official forex fetch failed: %v", err)
		return nil
	}

	var resp nrbResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		s.Logger.Warning("Official forex parse failed: %v", err)
		return nil
	}

	if len(resp.Data.Payload) == 0 || len(resp.Data.Payload[0].Rates) == 0 {
		s.Logger.Warning("Official forex response was empty")
		return nil
	}

	table := &models.MExchangeRates{
		Base:      "NPR",
		Rates:     make(map[string]models.MCurrencyRate),
		Source:    "nrb",
		FetchedAt: time.Now(),
	}

	for _, r := range resp.Data.Payload[0].Rates {
		buy, errB := strconv.ParseFloat(r.Buy, 64)
		sell, errS := strconv.ParseFloat(r.Sell, 64)
		if errB != nil || errS != nil {
			continue
		}
		unit := r.Currency.Unit
		if unit <= 0 {
			unit = 1
		}
		table.Rates[r.Currency.ISO3] = models.MCurrencyRate{
			ISO3: r.Currency.ISO3,
			Name: r.Currency.Name,
			Unit: unit,
			Buy:  buy,
			Sell: sell,
		}
	}

	if _, ok := table.Rates["USD"]; !ok {
		s.Logger.Warning("Official forex table had no USD row")
		return nil
	}

	s.Logger.Info("Fetched official forex table: %d currencies", len(table.Rates))
	return table
}

// -----------------------------------------------------------------------------

func (s *ForexSource) fetchFallbackAPI() *models.MExchangeRates {
	if s.Config.Sources.ForexFallbackURL == "" {
		return nil
	}

	respBytes, err := s.Network.Get(s.Config.Sources.ForexFallbackURL, nil)
	if err != nil {
		s.Logger.Warning("Fallback forex fetch failed: %v", err)
		return nil
	}

	var resp fallbackResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		s.Logger.Warning("Fallback forex parse failed: %v", err)
		return nil
	}

	npr, ok := resp.Rates["NPR"]
	if resp.Result != "success" || !ok || npr <= 0 {
		s.Logger.Warning("Fallback forex response unusable (result=%s)", resp.Result)
		return nil
	}

	s.Logger.Info("Resolved USD/NPR from fallback API: %.2f", npr)
	return &models.MExchangeRates{
		Base: "NPR",
		Rates: map[string]models.MCurrencyRate{
			"USD": {ISO3: "USD", Name: "US Dollar", Unit: 1, Buy: npr, Sell: npr},
		},
		Source:    "fallback-api",
		FetchedAt: time.Now(),
	}
}

// -----------------------------------------------------------------------------

// staticTable is the last-resort conversion table. Stale by definition, but a
// stale conversion beats no local price at all.
func (s *ForexSource) staticTable() *models.MExchangeRates {
	return &models.MExchangeRates{
		Base: "NPR",
		Rates: map[string]models.MCurrencyRate{
			"USD": {ISO3: "USD", Name: "US Dollar", Unit: 1, Buy: 139.07, Sell: 139.67},
			"EUR": {ISO3: "EUR", Name: "Euro", Unit: 1, Buy: 162.15, Sell: 162.85},
			"GBP": {ISO3: "GBP", Name: "Pound Sterling", Unit: 1, Buy: 187.46, Sell: 188.27},
			"INR": {ISO3: "INR", Name: "Indian Rupee", Unit: 100, Buy: 160.00, Sell: 160.15},
		},
		Source:    "static",
		FetchedAt: time.Now(),
	}
}

// -----------------------------------------------------------------------------

// USDSellRate returns the NPR-per-USD sell rate from a resolved table,
// normalized for the row's unit.
func USDSellRate(table *models.MExchangeRates) float64 {
	if table == nil {
		return 0
	}
	usd, ok := table.Rates["USD"]
	if !ok || usd.Unit <= 0 {
		return 0
	}
	return usd.Sell / float64(usd.Unit)
}
