package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		d.Logger.Warning("Failed to enable foreign keys: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	// The ledger is append-mostly and must survive restarts, so tables are
	// created only if missing. The unique index on (metric, unit, date) is
	// the actual correctness mechanism for concurrent same-day saves.
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS daily_rates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			metric TEXT NOT NULL,
			unit TEXT NOT NULL,
			date TEXT NOT NULL,
			price REAL NOT NULL,
			change REAL NOT NULL DEFAULT 0,
			change_percent REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (metric, unit, date)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS notification_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			gold_price REAL NOT NULL,
			silver_price REAL NOT NULL,
			gold_change REAL NOT NULL DEFAULT 0,
			silver_change REAL NOT NULL DEFAULT 0,
			users_notified INTEGER NOT NULL DEFAULT 0,
			sent_at TIMESTAMP NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_notification_log_date ON notification_log (date, sent_at);`,
		`
		CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			gold REAL NOT NULL,
			silver REAL NOT NULL,
			last_update TEXT NOT NULL
		);
		`,
		// Collaborator tables: owned by the user-management side, created here
		// only so a standalone deployment has a usable schema. This core never
		// writes to them.
		`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			metal TEXT NOT NULL,
			unit TEXT NOT NULL,
			quantity REAL NOT NULL,
			price REAL NOT NULL,
			rate REAL NOT NULL,
			date TEXT NOT NULL
		);
		`,
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) HasDay(date string) (bool, error) {
	var count int
	err := d.DB.QueryRow("SELECT COUNT(1) FROM daily_rates WHERE date = ?", date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetDay(date string) ([]models.MDailyRateRecord, error) {
	rows, err := d.DB.Query(`
		SELECT id, metric, unit, date, price, change, change_percent, created_at
		FROM daily_rates WHERE date = ? ORDER BY metric, unit
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRateRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveDay(quotes []models.MQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Conflict on the unique index means another cycle already saved this
	// day; that is a benign no-op, not an error.
	stmt, err := tx.Prepare(`
		INSERT INTO daily_rates (metric, unit, date, price, change, change_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (metric, unit, date) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, q := range quotes {
		if _, err := stmt.Exec(q.Metric, q.Unit, q.Date, q.Price, q.Change, q.ChangePercent, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) ReplaceDay(date string, quotes []models.MQuote) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_rates WHERE date = ?", date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_rates (metric, unit, date, price, change, change_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, q := range quotes {
		if _, err := stmt.Exec(q.Metric, q.Unit, date, q.Price, q.Change, q.ChangePercent, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetLastBefore(metric, unit, date string) (*models.MDailyRateRecord, error) {
	row := d.DB.QueryRow(`
		SELECT id, metric, unit, date, price, change, change_percent, created_at
		FROM daily_rates
		WHERE metric = ? AND unit = ? AND date < ?
		ORDER BY date DESC LIMIT 1
	`, metric, unit, date)

	var rec models.MDailyRateRecord
	err := row.Scan(&rec.ID, &rec.Metric, &rec.Unit, &rec.Date, &rec.Price, &rec.Change, &rec.ChangePercent, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LastNotificationFor(date string) (*models.MNotificationLogEntry, error) {
	row := d.DB.QueryRow(`
		SELECT id, date, gold_price, silver_price, gold_change, silver_change, users_notified, sent_at
		FROM notification_log
		WHERE date = ?
		ORDER BY sent_at DESC, id DESC LIMIT 1
	`, date)

	var entry models.MNotificationLogEntry
	err := row.Scan(&entry.ID, &entry.Date, &entry.GoldPrice, &entry.SilverPrice,
		&entry.GoldChange, &entry.SilverChange, &entry.UsersNotified, &entry.SentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveNotification(entry *models.MNotificationLogEntry) error {
	res, err := d.DB.Exec(`
		INSERT INTO notification_log (date, gold_price, silver_price, gold_change, silver_change, users_notified, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Date, entry.GoldPrice, entry.SilverPrice, entry.GoldChange, entry.SilverChange, entry.UsersNotified, entry.SentAt)
	if err != nil {
		return err
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LoadSnapshot() (*models.MPriceSnapshot, error) {
	row := d.DB.QueryRow("SELECT gold, silver, last_update FROM snapshot WHERE id = 1")

	var snap models.MPriceSnapshot
	err := row.Scan(&snap.Gold, &snap.Silver, &snap.LastUpdate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveSnapshot(snap *models.MPriceSnapshot) error {
	_, err := d.DB.Exec(`
		INSERT INTO snapshot (id, gold, silver, last_update)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			gold = excluded.gold,
			silver = excluded.silver,
			last_update = excluded.last_update
	`, snap.Gold, snap.Silver, snap.LastUpdate)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func scanRateRows(rows *sql.Rows) ([]models.MDailyRateRecord, error) {
	var records []models.MDailyRateRecord
	for rows.Next() {
		var rec models.MDailyRateRecord
		if err := rows.Scan(&rec.ID, &rec.Metric, &rec.Unit, &rec.Date, &rec.Price,
			&rec.Change, &rec.ChangePercent, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
