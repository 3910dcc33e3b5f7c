package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/notify"
	"github.com/sudip490/goldsilver-sub000/src/source"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// -----------------------------------------------------------------------------
// RefreshService
//
// One fetch cycle end to end: aggregate -> persist -> gate -> dispatch.
// Cycles are triggered by the periodic ticker or opportunistically by the
// read endpoint; the store write always completes before the gate runs so
// the previous-day lookup never races the just-written today row.
// -----------------------------------------------------------------------------

type RefreshService struct {
	Config     *models.MConfig
	Aggregator *source.Aggregator
	Store      interfaces.IHistoryStore
	Gate       *notify.Gate
	Logger     *logger.Logger
	Location   *time.Location

	// OnUpdate receives the state after every completed cycle (server push).
	OnUpdate func(*models.MLatestData)

	mu     sync.RWMutex
	latest *models.MMarketSnapshot

	// Background cycle failures land here instead of vanishing; Run drains it.
	errCh chan error
}

// -----------------------------------------------------------------------------

func NewRefreshService(
	cfg *models.MConfig,
	loc *time.Location,
	agg *source.Aggregator,
	store interfaces.IHistoryStore,
	gate *notify.Gate,
	log *logger.Logger,
) *RefreshService {
	return &RefreshService{
		Config:     cfg,
		Aggregator: agg,
		Store:      store,
		Gate:       gate,
		Logger:     log,
		Location:   loc,
		errCh:      make(chan error, 16),
	}
}

// -----------------------------------------------------------------------------

// Latest returns the most recent in-memory snapshot, which is served even
// when persistence failed on the last cycle.
func (r *RefreshService) Latest() *models.MMarketSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// -----------------------------------------------------------------------------

// TriggerAsync starts one cycle in the background. The read path calls this
// fire-and-forget; failures surface through the error channel, never to the
// caller.
func (r *RefreshService) TriggerAsync(ctx context.Context) {
	go func() {
		if _, err := r.RunCycle(ctx); err != nil {
			select {
			case r.errCh <- err:
			default:
				// Channel full: the drain loop is behind, drop rather than block.
				r.Logger.Error("Background cycle failed (error channel full): %v", err)
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// Run drives the periodic refresh loop until the context is cancelled.
func (r *RefreshService) Run(ctx context.Context) {
	interval := time.Duration(r.Config.Notify.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Logger.Info("Refresh loop started (every %v)", interval)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("Refresh loop stopped")
			return
		case err := <-r.errCh:
			r.Logger.Error("Background cycle failed: %v", err)
		case <-ticker.C:
			if _, err := r.RunCycle(ctx); err != nil {
				r.Logger.Error("Scheduled cycle failed: %v", err)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// RunCycle executes one full cycle and returns the fresh snapshot.
func (r *RefreshService) RunCycle(ctx context.Context) (*models.MMarketSnapshot, error) {
	snapshot, err := r.Aggregator.FetchCycle(ctx)
	if err != nil {
		return nil, err
	}

	// Serve the in-memory data regardless of what persistence does next.
	r.mu.Lock()
	r.latest = snapshot
	r.mu.Unlock()

	r.push(snapshot)

	if err := r.persistDay(snapshot.Quotes); err != nil {
		// No durable record, no notification for this cycle.
		r.Logger.Error("Store write failed, skipping notify decision: %v", err)
		return snapshot, helpers.NewStorageError("daily rate persist failed", err)
	}

	if r.Config.Notify.Enabled {
		gold, silver, ok := canonicalPair(snapshot.Quotes)
		if !ok {
			r.Logger.Info("No canonical tola pair in this cycle, gate skipped")
			return snapshot, nil
		}
		if _, err := r.Gate.Evaluate(gold, silver); err != nil {
			r.Logger.Error("Notification gate failed: %v", err)
		}
	}

	return snapshot, nil
}

// -----------------------------------------------------------------------------

// persistDay saves today's rows on first sight and replaces them only when
// the already-stored prices differ (a correction). The unique constraint in
// the store makes the save path safe under racing cycles.
func (r *RefreshService) persistDay(quotes []models.MQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	date := quotes[0].Date

	exists, err := r.Store.HasDay(date)
	if err != nil {
		return err
	}

	if !exists {
		return r.Store.SaveDay(quotes)
	}

	stored, err := r.Store.GetDay(date)
	if err != nil {
		return err
	}
	if !pricesDiffer(stored, quotes, r.Config.Notify.MinCorrectionDelta) {
		return nil
	}

	r.Logger.Info("Stored prices for %s differ from fresh fetch, replacing day", date)
	return r.Store.ReplaceDay(date, quotes)
}

// -----------------------------------------------------------------------------

func (r *RefreshService) push(snapshot *models.MMarketSnapshot) {
	if r.OnUpdate == nil {
		return
	}
	r.OnUpdate(&models.MLatestData{
		Type:      "UPDATE",
		Snapshot:  snapshot,
		Timestamp: time.Now().Unix(),
	})
}

// -----------------------------------------------------------------------------

// canonicalPair picks the gold and silver per-tola quotes the gate runs on.
func canonicalPair(quotes []models.MQuote) (models.MQuote, models.MQuote, bool) {
	var gold, silver models.MQuote
	var haveGold, haveSilver bool

	for _, q := range quotes {
		if q.Unit != utils.UnitTola {
			continue
		}
		switch q.Metric {
		case utils.MetricGold:
			gold, haveGold = q, true
		case utils.MetricSilver:
			silver, haveSilver = q, true
		}
	}
	return gold, silver, haveGold && haveSilver
}

// -----------------------------------------------------------------------------

func pricesDiffer(stored []models.MDailyRateRecord, fresh []models.MQuote, minDelta float64) bool {
	// Different row sets always differ: a stored row the fresh fetch no longer
	// produces is just as much a correction as a changed price.
	if len(stored) != len(fresh) {
		return true
	}

	byKey := make(map[string]float64, len(stored))
	for _, rec := range stored {
		byKey[rec.Metric+"|"+rec.Unit] = rec.Price
	}

	for _, q := range fresh {
		prev, ok := byKey[q.Metric+"|"+q.Unit]
		if !ok || math.Abs(prev-q.Price) >= minDelta {
			return true
		}
	}
	return false
}
