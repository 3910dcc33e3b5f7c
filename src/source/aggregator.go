package source

import (
	"context"
	"sync"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/source/forex"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// -----------------------------------------------------------------------------
// Aggregator
//
// Runs one fan-out/fan-in cycle over the three sources and produces the
// canonical quote set. Spot failure aborts the cycle; forex degrades through
// its own fallback tiers; a missing local market degrades to spot-derived
// prices for the same units.
// -----------------------------------------------------------------------------

type Aggregator struct {
	Config   *models.MConfig
	Spot     interfaces.ISpotSource
	Forex    interfaces.IForexSource
	Local    interfaces.ILocalMarketSource
	Store    interfaces.IHistoryStore
	Logger   *logger.Logger
	Location *time.Location
}

// -----------------------------------------------------------------------------

func NewAggregator(
	cfg *models.MConfig,
	loc *time.Location,
	spotSrc interfaces.ISpotSource,
	forexSrc interfaces.IForexSource,
	localSrc interfaces.ILocalMarketSource,
	store interfaces.IHistoryStore,
) *Aggregator {
	return &Aggregator{
		Config:   cfg,
		Spot:     spotSrc,
		Forex:    forexSrc,
		Local:    localSrc,
		Store:    store,
		Logger:   logger.NewLogger(cfg.LogLevel, "Aggregator"),
		Location: loc,
	}
}

// -----------------------------------------------------------------------------

// FetchCycle fans out to all sources, joins, and normalizes.
func (a *Aggregator) FetchCycle(ctx context.Context) (*models.MMarketSnapshot, error) {
	var (
		wg      sync.WaitGroup
		spot    *models.MSpotQuote
		spotErr error
		rates   *models.MExchangeRates
		local   *models.MLocalMarket
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		spot, spotErr = a.Spot.Fetch(ctx)
	}()

	go func() {
		defer wg.Done()
		rates = a.Forex.Fetch(ctx)
	}()

	go func() {
		defer wg.Done()
		lm, err := a.Local.Fetch(ctx)
		if err != nil {
			// Missing, not zero: downstream derives from spot instead.
			a.Logger.Warning("Local market unavailable: %v", err)
			return
		}
		local = lm
	}()

	wg.Wait()

	if spotErr != nil {
		return nil, spotErr
	}

	today := utils.LocalDate(time.Now(), a.Location)
	quotes := a.buildQuotes(spot, rates, local, today)

	snapshot := &models.MMarketSnapshot{
		Quotes:    quotes,
		Spot:      *spot,
		Rates:     *rates,
		FetchedAt: time.Now(),
	}

	if local != nil {
		snapshot.GoldHistory = local.GoldHistory
		snapshot.SilverHistory = local.SilverHistory
	}
	snapshot.GoldHistory = appendTodayPoint(snapshot.GoldHistory, quotes, utils.MetricGold, today)
	snapshot.SilverHistory = appendTodayPoint(snapshot.SilverHistory, quotes, utils.MetricSilver, today)

	a.Logger.Info("Cycle complete: %d quotes for %s (forex source: %s)", len(quotes), today, rates.Source)
	return snapshot, nil
}

// -----------------------------------------------------------------------------

// buildQuotes produces one canonical quote per (metric, unit). Local-market
// prices win when present; otherwise prices derive from spot via the resolved
// exchange rate and the configured market markup.
func (a *Aggregator) buildQuotes(
	spot *models.MSpotQuote,
	rates *models.MExchangeRates,
	local *models.MLocalMarket,
	today string,
) []models.MQuote {
	fxRate := forex.USDSellRate(rates)

	var quotes []models.MQuote
	if local != nil && len(local.Quotes) > 0 {
		quotes = local.Quotes
	} else {
		quotes = a.deriveFromSpot(spot, fxRate, today)
	}

	for i := range quotes {
		if quotes[i].Date == "" {
			quotes[i].Date = today
		}
		a.fillChange(&quotes[i], spot, fxRate)
	}

	return quotes
}

// -----------------------------------------------------------------------------

// deriveFromSpot converts USD/oz to NPR per tola and per 10 gram for both
// metals. Only used when the local market gave nothing.
func (a *Aggregator) deriveFromSpot(spot *models.MSpotQuote, fxRate float64, today string) []models.MQuote {
	if fxRate <= 0 {
		a.Logger.Warning("No usable USD rate, cannot derive local prices from spot")
		return nil
	}

	markup := a.Config.Sources.MarketMarkup
	combos := []struct {
		metric string
		unit   string
		usd    float64
	}{
		{utils.MetricGold, utils.UnitTola, spot.GoldUSD},
		{utils.MetricGold, utils.UnitTenGram, spot.GoldUSD},
		{utils.MetricSilver, utils.UnitTola, spot.SilverUSD},
		{utils.MetricSilver, utils.UnitTenGram, spot.SilverUSD},
	}

	quotes := make([]models.MQuote, 0, len(combos))
	for _, c := range combos {
		price := utils.OunceUSDToLocal(c.usd, fxRate, utils.GramsPerUnit(c.unit), markup)
		quotes = append(quotes, models.MQuote{
			Metric: c.metric,
			Unit:   c.unit,
			Price:  price,
			Date:   today,
		})
	}
	return quotes
}

// -----------------------------------------------------------------------------

// fillChange computes the day-over-day delta. The previous persisted history
// row is the preferred baseline; only without one does it fall back to the
// theoretical delta derived from the global spot change plus the local
// premium factor.
func (a *Aggregator) fillChange(q *models.MQuote, spot *models.MSpotQuote, fxRate float64) {
	prev, err := a.Store.GetLastBefore(q.Metric, q.Unit, q.Date)
	if err != nil {
		a.Logger.Warning("History lookup failed for %s/%s: %v", q.Metric, q.Unit, err)
	}

	if prev != nil && prev.Price > 0 {
		q.Change = q.Price - prev.Price
		q.ChangePercent = q.Change / prev.Price * 100
		return
	}

	spotChange := spot.GoldChange
	spotPct := spot.GoldChangePercent
	if q.Metric == utils.MetricSilver {
		spotChange = spot.SilverChange
		spotPct = spot.SilverChangePercent
	}

	if fxRate <= 0 {
		return
	}

	premium := a.Config.Sources.MarketMarkup * a.Config.Sources.LocalPremium
	q.Change = utils.OunceUSDToLocal(spotChange, fxRate, utils.GramsPerUnit(q.Unit), premium)
	q.ChangePercent = spotPct
}

// -----------------------------------------------------------------------------

// appendTodayPoint appends today's tola price to a history series only when
// the series does not already end on today's date.
func appendTodayPoint(history []models.MHistoryPoint, quotes []models.MQuote, metric, today string) []models.MHistoryPoint {
	var todayPrice float64
	for _, q := range quotes {
		if q.Metric == metric && q.Unit == utils.UnitTola {
			todayPrice = q.Price
			break
		}
	}
	if todayPrice <= 0 {
		return history
	}

	for _, p := range history {
		if p.Date == today {
			return history
		}
	}

	return append(history, models.MHistoryPoint{Date: today, Price: todayPrice})
}
