package interfaces

import "github.com/sudip490/goldsilver-sub000/src/models"

// -----------------------------------------------------------------------------
// IHistoryStore defines the contract for the daily rate ledger, the
// notification log and the last-known-good snapshot. All date arguments are
// local calendar dates in "2006-01-02" form.
// -----------------------------------------------------------------------------

type IHistoryStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// HasDay reports whether any rate row exists for the given date.
	HasDay(date string) (bool, error)

	// -----------------------------------------------------------------------------

	// GetDay returns all rate rows for the given date.
	GetDay(date string) ([]models.MDailyRateRecord, error)

	// -----------------------------------------------------------------------------

	// SaveDay bulk-inserts one row per quote for the quotes' date. A row that
	// already exists for the same (metric, unit, date) is silently skipped, so
	// two racing cycles cannot produce duplicates.
	SaveDay(quotes []models.MQuote) error

	// -----------------------------------------------------------------------------

	// ReplaceDay deletes all rows for the date and inserts the new set in one
	// transaction. Used only when a correction was detected.
	ReplaceDay(date string, quotes []models.MQuote) error

	// -----------------------------------------------------------------------------

	// GetLastBefore returns the most recent row for (metric, unit) strictly
	// before the given date, or nil when history is empty.
	GetLastBefore(metric, unit, date string) (*models.MDailyRateRecord, error)

	// -----------------------------------------------------------------------------

	// LastNotificationFor returns the most recent notification-log entry for
	// the data date, or nil when none was sent.
	LastNotificationFor(date string) (*models.MNotificationLogEntry, error)

	// -----------------------------------------------------------------------------

	// SaveNotification appends one notification-log entry.
	SaveNotification(entry *models.MNotificationLogEntry) error

	// -----------------------------------------------------------------------------

	// LoadSnapshot returns the last-known-good notified prices, or nil.
	LoadSnapshot() (*models.MPriceSnapshot, error)

	// -----------------------------------------------------------------------------

	// SaveSnapshot overwrites the last-known-good notified prices.
	SaveSnapshot(snap *models.MPriceSnapshot) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
