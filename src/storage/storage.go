package storage

import (
	"database/sql"

	"github.com/sudip490/goldsilver-sub000/src/interfaces"
)

// -----------------------------------------------------------------------------

// RawDB exposes a store's underlying connection so the read-only collaborator
// queries (subscribers, transactions) can share it. Returns nil for stores
// that are not database-backed.
func RawDB(store interfaces.IHistoryStore) *sql.DB {
	switch s := store.(type) {
	case *SQLiteStore:
		return s.DB
	case *PostgresStore:
		return s.DB
	}
	return nil
}
