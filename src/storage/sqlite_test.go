package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// newTestStore opens a file-backed store in a per-test temp dir rather than
// :memory:, so the pooled connections all see the same database.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "rates.db")

	store, err := NewSQLiteStore(cfg, logger.NewLogger("ERROR", "StoreTest"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

func dayQuotes(date string, goldPrice, silverPrice float64) []models.MQuote {
	return []models.MQuote{
		{Metric: utils.MetricGold, Unit: utils.UnitTola, Price: goldPrice, Change: 100, ChangePercent: 0.05, Date: date},
		{Metric: utils.MetricSilver, Unit: utils.UnitTola, Price: silverPrice, Date: date},
	}
}

// -----------------------------------------------------------------------------

func TestSQLiteStore_SaveDayIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveDay(dayQuotes("2026-09-01", 193000, 2400)))

	// A second save for the same day hits the unique index and no-ops.
	require.NoError(t, store.SaveDay(dayQuotes("2026-09-01", 999999, 9999)))

	records, err := store.GetDay("2026-09-01")
	require.NoError(t, err)
	require.Len(t, records, 2)

	var gold models.MDailyRateRecord
	for _, r := range records {
		if r.Metric == utils.MetricGold {
			gold = r
		}
	}
	assert.Equal(t, 193000.0, gold.Price)
	assert.Equal(t, 100.0, gold.Change)
}

func TestSQLiteStore_HasDay(t *testing.T) {
	store := newTestStore(t)

	has, err := store.HasDay("2026-09-01")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.SaveDay(dayQuotes("2026-09-01", 193000, 2400)))

	has, err = store.HasDay("2026-09-01")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSQLiteStore_ReplaceDayOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveDay(dayQuotes("2026-09-01", 193000, 2400)))
	require.NoError(t, store.ReplaceDay("2026-09-01", dayQuotes("2026-09-01", 195000, 2450)))

	records, err := store.GetDay("2026-09-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		if r.Metric == utils.MetricGold {
			assert.Equal(t, 195000.0, r.Price)
		}
	}
}

func TestSQLiteStore_GetLastBeforePicksLatestPriorDay(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveDay(dayQuotes("2026-08-29", 188000, 2300)))
	require.NoError(t, store.SaveDay(dayQuotes("2026-08-31", 190000, 2350)))
	require.NoError(t, store.SaveDay(dayQuotes("2026-09-01", 193000, 2400)))

	rec, err := store.GetLastBefore(utils.MetricGold, utils.UnitTola, "2026-09-01")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2026-08-31", rec.Date)
	assert.Equal(t, 190000.0, rec.Price)
}

func TestSQLiteStore_GetLastBeforeEmptyHistory(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.GetLastBefore(utils.MetricGold, utils.UnitTola, "2026-09-01")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLiteStore_NotificationLogReturnsLatestEntry(t *testing.T) {
	store := newTestStore(t)

	none, err := store.LastNotificationFor("2026-09-01")
	require.NoError(t, err)
	assert.Nil(t, none)

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	first := &models.MNotificationLogEntry{
		Date: "2026-09-01", GoldPrice: 193000, SilverPrice: 2400, UsersNotified: 5, SentAt: base,
	}
	require.NoError(t, store.SaveNotification(first))
	assert.NotZero(t, first.ID)

	correction := &models.MNotificationLogEntry{
		Date: "2026-09-01", GoldPrice: 195000, SilverPrice: 2400, UsersNotified: 5, SentAt: base.Add(2 * time.Hour),
	}
	require.NoError(t, store.SaveNotification(correction))

	last, err := store.LastNotificationFor("2026-09-01")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 195000.0, last.GoldPrice)
}

func TestSQLiteStore_SnapshotUpsert(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, store.SaveSnapshot(&models.MPriceSnapshot{Gold: 193000, Silver: 2400, LastUpdate: "2026-09-01"}))
	require.NoError(t, store.SaveSnapshot(&models.MPriceSnapshot{Gold: 195000, Silver: 2450, LastUpdate: "2026-09-02"}))

	snap, err = store.LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 195000.0, snap.Gold)
	assert.Equal(t, 2450.0, snap.Silver)
	assert.Equal(t, "2026-09-02", snap.LastUpdate)
}
