package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) createTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS daily_rates (
			id BIGSERIAL PRIMARY KEY,
			metric TEXT NOT NULL,
			unit TEXT NOT NULL,
			date TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			change DOUBLE PRECISION NOT NULL DEFAULT 0,
			change_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (metric, unit, date)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS notification_log (
			id BIGSERIAL PRIMARY KEY,
			date TEXT NOT NULL,
			gold_price DOUBLE PRECISION NOT NULL,
			silver_price DOUBLE PRECISION NOT NULL,
			gold_change DOUBLE PRECISION NOT NULL DEFAULT 0,
			silver_change DOUBLE PRECISION NOT NULL DEFAULT 0,
			users_notified INTEGER NOT NULL DEFAULT 0,
			sent_at TIMESTAMPTZ NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_notification_log_date ON notification_log (date, sent_at);`,
		`
		CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			gold DOUBLE PRECISION NOT NULL,
			silver DOUBLE PRECISION NOT NULL,
			last_update TEXT NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			metal TEXT NOT NULL,
			unit TEXT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			rate DOUBLE PRECISION NOT NULL,
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

func (d *PostgresStore) HasDay(date string) (bool, error) {
	var count int
	err := d.DB.QueryRow("SELECT COUNT(1) FROM daily_rates WHERE date = $1", date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) GetDay(date string) ([]models.MDailyRateRecord, error) {
	rows, err := d.DB.Query(`
		SELECT id, metric, unit, date, price, change, change_percent, created_at
		FROM daily_rates WHERE date = $1 ORDER BY metric, unit
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRateRows(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveDay(quotes []models.MQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_rates (metric, unit, date, price, change, change_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (d *PostgresStore) ReplaceDay(date string, quotes []models.MQuote) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_rates WHERE date = $1", date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_rates (metric, unit, date, price, change, change_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (d *PostgresStore) GetLastBefore(metric, unit, date string) (*models.MDailyRateRecord, error) {
	row := d.DB.QueryRow(`
		SELECT id, metric, unit, date, price, change, change_percent, created_at
		FROM daily_rates
		WHERE metric = $1 AND unit = $2 AND date < $3
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

func (d *PostgresStore) LastNotificationFor(date string) (*models.MNotificationLogEntry, error) {
	row := d.DB.QueryRow(`
		SELECT id, date, gold_price, silver_price, gold_change, silver_change, users_notified, sent_at
		FROM notification_log
		WHERE date = $1
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

func (d *PostgresStore) SaveNotification(entry *models.MNotificationLogEntry) error {
	return d.DB.QueryRow(`
		INSERT INTO notification_log (date, gold_price, silver_price, gold_change, silver_change, users_notified, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, entry.Date, entry.GoldPrice, entry.SilverPrice, entry.GoldChange, entry.SilverChange,
		entry.UsersNotified, entry.SentAt).Scan(&entry.ID)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) LoadSnapshot() (*models.MPriceSnapshot, error) {
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

func (d *PostgresStore) SaveSnapshot(snap *models.MPriceSnapshot) error {
	_, err := d.DB.Exec(`
		INSERT INTO snapshot (id, gold, silver, last_update)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			gold = EXCLUDED.gold,
			silver = EXCLUDED.silver,
			last_update = EXCLUDED.last_update
	`, snap.Gold, snap.Silver, snap.LastUpdate)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
