package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// SpotSource
//
// Fetches the global USD spot quote for gold and silver (price per troy ounce,
// 24h change and change percent) from a dbXRates-style endpoint. This is the
// primary source: no price, no cycle.
// -----------------------------------------------------------------------------

type SpotSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSpotSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *SpotSource {
	return &SpotSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "SpotSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *SpotSource) Name() string {
	return "spot"
}

// -----------------------------------------------------------------------------

type spotResponse struct {
	Ts    int64 `json:"ts"`
	Items []struct {
		Curr     string  `json:"curr"`
		XauPrice float64 `json:"xauPrice"`
		XagPrice float64 `json:"xagPrice"`
		ChgXau   float64 `json:"chgXau"`
		ChgXag   float64 `json:"chgXag"`
		PcXau    float64 `json:"pcXau"`
		PcXag    float64 `json:"pcXag"`
	} `json:"items"`
}

// -----------------------------------------------------------------------------

// Fetch retrieves and parses the current spot quote.
func (s *SpotSource) Fetch(ctx context.Context) (*models.MSpotQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	respBytes, err := s.Network.Get(s.Config.Sources.SpotURL, nil)
	if err != nil {
		return nil, helpers.NewPrimarySourceError("spot price fetch failed", err)
	}

	var resp spotResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, helpers.NewPrimarySourceError("spot price parse failed", err)
	}

	if len(resp.Items) == 0 {
		return nil, helpers.NewPrimarySourceError("spot response contained no items", nil)
	}

	item := resp.Items[0]
	if item.XauPrice <= 0 || item.XagPrice <= 0 {
		return nil, helpers.NewPrimarySourceError(
			fmt.Sprintf("spot response had non-positive prices (xau=%f, xag=%f)", item.XauPrice, item.XagPrice), nil)
	}

	ts := resp.Ts
	if ts == 0 {
		ts = time.Now().Unix()
	}

	quote := &models.MSpotQuote{
		GoldUSD:             item.XauPrice,
		GoldChange:          item.ChgXau,
		GoldChangePercent:   item.PcXau,
		SilverUSD:           item.XagPrice,
		SilverChange:        item.ChgXag,
		SilverChangePercent: item.PcXag,
		Timestamp:           ts,
	}

	s.Logger.Info("Fetched spot: gold=%.2f USD/oz (%.2f%%), silver=%.2f USD/oz (%.2f%%)",
		quote.GoldUSD, quote.GoldChangePercent, quote.SilverUSD, quote.SilverChangePercent)

	return quote, nil
}
