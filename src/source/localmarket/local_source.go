package localmarket

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// -----------------------------------------------------------------------------
// LocalMarketSource
//
// Fetches the Nepal-market dealer quotes (NPR per tola / per 10 gram) and the
// multi-year daily history per metal. Failure of this source is never fatal:
// the aggregator falls back to spot-derived prices for the same units.
// -----------------------------------------------------------------------------

type LocalMarketSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewLocalMarketSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *LocalMarketSource {
	return &LocalMarketSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "LocalMarketSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *LocalMarketSource) Name() string {
	return "localmarket"
}

// -----------------------------------------------------------------------------

type ratesResponse struct {
	Date  string `json:"date"`
	Rates []struct {
		Name  string      `json:"name"`
		Unit  string      `json:"unit"`
		Price json.Number `json:"price"`
	} `json:"rates"`
}

type historyResponse struct {
	Metal   string `json:"metal"`
	History []struct {
		Date  string      `json:"date"`
		Price json.Number `json:"price"`
	} `json:"history"`
}

// -----------------------------------------------------------------------------

// Fetch retrieves the quote set and both histories. The two history calls run
// concurrently with each other; a history failure degrades to an empty series
// rather than failing the whole source.
func (s *LocalMarketSource) Fetch(ctx context.Context) (*models.MLocalMarket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quotes, err := s.fetchQuotes()
	if err != nil {
		return nil, helpers.NewSourceError("local market fetch failed", err)
	}

	result := &models.MLocalMarket{Quotes: quotes}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		result.GoldHistory = s.fetchHistory("gold")
	}()
	go func() {
		defer wg.Done()
		result.SilverHistory = s.fetchHistory("silver")
	}()

	wg.Wait()

	s.Logger.Info("Fetched local market: %d quotes, gold history %d pts, silver history %d pts",
		len(result.Quotes), len(result.GoldHistory), len(result.SilverHistory))

	return result, nil
}

// -----------------------------------------------------------------------------

func (s *LocalMarketSource) fetchQuotes() ([]models.MQuote, error) {
	respBytes, err := s.Network.Get(s.Config.Sources.LocalMarketURL, nil)
	if err != nil {
		return nil, err
	}

	var resp ratesResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}

	var quotes []models.MQuote
	for _, r := range resp.Rates {
		price, err := r.Price.Float64()
		if err != nil || price <= 0 {
			s.Logger.Debug("Skipping unusable rate row %s/%s", r.Name, r.Unit)
			continue
		}

		metric, unit := canonicalNames(r.Name, r.Unit)
		if metric == "" {
			s.Logger.Debug("Skipping unknown metric '%s'", r.Name)
			continue
		}

		quotes = append(quotes, models.MQuote{
			Metric: metric,
			Unit:   unit,
			Price:  price,
			Date:   resp.Date,
		})
	}

	return quotes, nil
}

// -----------------------------------------------------------------------------

func (s *LocalMarketSource) fetchHistory(metal string) []models.MHistoryPoint {
	if s.Config.Sources.LocalHistoryURL == "" {
		return nil
	}

	params := map[string]string{
		"metal": metal,
		"years": strconv.Itoa(s.Config.Sources.HistoryYears),
	}

	respBytes, err := s.Network.Get(s.Config.Sources.LocalHistoryURL, params)
	if err != nil {
		s.Logger.Warning("History fetch for %s failed: %v", metal, err)
		return nil
	}

	var resp historyResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		s.Logger.Warning("History parse for %s failed: %v", metal, err)
		return nil
	}

	points := make([]models.MHistoryPoint, 0, len(resp.History))
	for _, h := range resp.History {
		price, err := h.Price.Float64()
		if err != nil || price <= 0 || h.Date == "" {
			continue
		}
		points = append(points, models.MHistoryPoint{Date: h.Date, Price: price})
	}
	return points
}

// -----------------------------------------------------------------------------

// canonicalNames maps provider labels to the ledger's metric/unit names.
// Dealers label gold "Fine Gold" or "Gold Hallmark"; both are fine gold here.
func canonicalNames(name, unit string) (string, string) {
	var metric string
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "gold"):
		metric = utils.MetricGold
	case strings.Contains(lower, "silver"):
		metric = utils.MetricSilver
	default:
		return "", ""
	}

	canonicalUnit := utils.UnitTola
	if strings.Contains(strings.ToLower(unit), "gram") {
		canonicalUnit = utils.UnitTenGram
	}
	return metric, canonicalUnit
}
