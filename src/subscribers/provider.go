package subscribers

import (
	"database/sql"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// SQLProvider
//
// Read-only view over the collaborator-owned users and transactions tables.
// Shares the connection with the history store; never writes.
// -----------------------------------------------------------------------------

type SQLProvider struct {
	DB     *sql.DB
	Driver string // "sqlite" or "postgres", decides the placeholder style
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLProvider(db *sql.DB, driver string, log *logger.Logger) *SQLProvider {
	return &SQLProvider{
		DB:     db,
		Driver: driver,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (p *SQLProvider) arg(n string) string {
	if p.Driver == "postgres" {
		return n
	}
	return "?"
}

// -----------------------------------------------------------------------------

// ListSubscribers returns every subscriber, including ones without an email;
// the dispatcher decides who is reachable.
func (p *SQLProvider) ListSubscribers() ([]models.MSubscriber, error) {
	rows, err := p.DB.Query("SELECT id, email, name FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.MSubscriber
	for rows.Next() {
		var s models.MSubscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// -----------------------------------------------------------------------------

// TransactionsFor returns one subscriber's buy/sell history, oldest first.
func (p *SQLProvider) TransactionsFor(userID int64) ([]models.MPortfolioTransaction, error) {
	query := `
		SELECT id, user_id, type, metal, unit, quantity, price, rate, date
		FROM transactions WHERE user_id = ` + p.arg("$1") + ` ORDER BY date, id`

	rows, err := p.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.MPortfolioTransaction
	for rows.Next() {
		var t models.MPortfolioTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Metal, &t.Unit,
			&t.Quantity, &t.Price, &t.Rate, &t.Date); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
