package notify

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// Gate
//
// Per data-date decision: first quote for a date triggers a send; an
// identical quote for an already-notified date is a no-op; a differing quote
// is a correction and triggers a resend. "Identical" tolerates deltas below
// MinDelta so float rounding cannot masquerade as a correction.
// -----------------------------------------------------------------------------

type Gate struct {
	Store        interfaces.IHistoryStore
	Dispatcher   interfaces.IDispatcher
	Logger       *logger.Logger
	MinDelta     float64
	FallbackFile string
}

// -----------------------------------------------------------------------------

func NewGate(store interfaces.IHistoryStore, dispatcher interfaces.IDispatcher, log *logger.Logger, minDelta float64, fallbackFile string) *Gate {
	return &Gate{
		Store:        store,
		Dispatcher:   dispatcher,
		Logger:       log,
		MinDelta:     minDelta,
		FallbackFile: fallbackFile,
	}
}

// -----------------------------------------------------------------------------

// Evaluate runs the gate for today's canonical gold and silver quotes.
// Returns the dispatch result when a send happened, nil when the decision
// was a no-op.
func (g *Gate) Evaluate(gold, silver models.MQuote) (*models.MDispatchResult, error) {
	// Incomplete data never notifies. Logged, not escalated.
	if gold.Date == "" || gold.Price <= 0 || silver.Price <= 0 {
		g.Logger.Info("Skipping notification: incomplete data (date=%q, gold=%.2f, silver=%.2f)",
			gold.Date, gold.Price, silver.Price)
		return nil, nil
	}

	date := gold.Date

	last, err := g.Store.LastNotificationFor(date)
	if err != nil {
		return nil, helpers.NewStorageError("notification log lookup failed", err)
	}

	isCorrection := false
	if last != nil {
		if math.Abs(gold.Price-last.GoldPrice) < g.MinDelta &&
			math.Abs(silver.Price-last.SilverPrice) < g.MinDelta {
			g.Logger.Debug("Already notified for %s with matching prices, nothing to do", date)
			return nil, nil
		}
		isCorrection = true
		g.Logger.Info("Correction for %s: gold %.2f -> %.2f, silver %.2f -> %.2f",
			date, last.GoldPrice, gold.Price, last.SilverPrice, silver.Price)
	}

	payload := g.buildPayload(gold, silver, date)

	result := g.Dispatcher.DispatchAll(payload)

	entry := &models.MNotificationLogEntry{
		Date:          date,
		GoldPrice:     gold.Price,
		SilverPrice:   silver.Price,
		GoldChange:    payload.GoldChange,
		SilverChange:  payload.SilverChange,
		UsersNotified: result.SuccessCount,
		SentAt:        time.Now(),
	}
	if err := g.Store.SaveNotification(entry); err != nil {
		// The send already happened: surface the bookkeeping failure but
		// keep the result so the caller can report it.
		g.Logger.Error("Failed to log notification for %s: %v", date, err)
		return result, helpers.NewStorageError("notification log write failed", err)
	}

	g.saveSnapshot(gold.Price, silver.Price, date)

	if isCorrection {
		g.Logger.Info("Correction resend for %s complete (%d notified)", date, result.SuccessCount)
	} else {
		g.Logger.Info("First notification for %s complete (%d notified)", date, result.SuccessCount)
	}
	return result, nil
}

// -----------------------------------------------------------------------------

// buildPayload resolves the previous-day baseline: persisted history first,
// then the last-known-good snapshot, then zero. A zero baseline forces the
// percent to zero rather than reporting a 0 -> price jump as a swing.
func (g *Gate) buildPayload(gold, silver models.MQuote, date string) models.MPricePayload {
	prevGold := g.previousPrice(gold, date)
	prevSilver := g.previousPrice(silver, date)

	if prevGold <= 0 || prevSilver <= 0 {
		if snap := g.loadSnapshot(); snap != nil {
			if prevGold <= 0 {
				prevGold = snap.Gold
			}
			if prevSilver <= 0 {
				prevSilver = snap.Silver
			}
		}
	}

	payload := models.MPricePayload{
		Date:        date,
		GoldPrice:   gold.Price,
		SilverPrice: silver.Price,
	}

	payload.GoldChange = gold.Price - prevGold
	payload.SilverChange = silver.Price - prevSilver
	if prevGold > 0 {
		payload.GoldChangePercent = payload.GoldChange / prevGold * 100
	} else {
		payload.GoldChange = 0
	}
	if prevSilver > 0 {
		payload.SilverChangePercent = payload.SilverChange / prevSilver * 100
	} else {
		payload.SilverChange = 0
	}

	return payload
}

// -----------------------------------------------------------------------------

func (g *Gate) previousPrice(q models.MQuote, date string) float64 {
	prev, err := g.Store.GetLastBefore(q.Metric, q.Unit, date)
	if err != nil {
		g.Logger.Warning("Previous price lookup failed for %s/%s: %v", q.Metric, q.Unit, err)
		return 0
	}
	if prev == nil {
		return 0
	}
	return prev.Price
}

// -----------------------------------------------------------------------------

func (g *Gate) loadSnapshot() *models.MPriceSnapshot {
	snap, err := g.Store.LoadSnapshot()
	if err != nil {
		g.Logger.Warning("Snapshot load failed: %v", err)
		return nil
	}
	return snap
}

// -----------------------------------------------------------------------------

// saveSnapshot persists the notified prices as the new baseline, plus a
// best-effort JSON export kept as a disaster-recovery copy. The export is
// never read back by the decision path.
func (g *Gate) saveSnapshot(goldPrice, silverPrice float64, date string) {
	snap := &models.MPriceSnapshot{
		Gold:       goldPrice,
		Silver:     silverPrice,
		LastUpdate: date,
	}

	if err := g.Store.SaveSnapshot(snap); err != nil {
		g.Logger.Error("Failed to save snapshot: %v", err)
	}

	if g.FallbackFile == "" {
		return
	}
	data, err := json.Marshal(snap)
	if err == nil {
		if err := os.WriteFile(g.FallbackFile, data, 0644); err != nil {
			g.Logger.Warning("Failed to write fallback file: %v", err)
		}
	}
}
