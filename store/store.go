// Package store persists contacts, teams, transfer history and activity
// entries in PostgreSQL. Every owner is a wallet address, so two users of
// the same deployment never see each other's contact book or history.
package store

import (
	"context"
	"database/sql"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

var (
	ErrContactExists = errors.New("contact already exists")
	ErrTeamExists    = errors.New("team already exists")
)

// Store opens a fresh connection per call, keeping no pooled state between
// operations.
type Store struct {
	dbConnStr string
}

// NewStore creates a new Store instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *Store: a pointer to the newly created Store instance.
func NewStore(connStr string) *Store {
	return &Store{
		dbConnStr: connStr,
	}
}

// Migrate creates the tables the store needs when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id          SERIAL PRIMARY KEY,
		owner       TEXT NOT NULL,
		name        TEXT NOT NULL,
		address     TEXT NOT NULL,
		group_name  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner, name)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id          SERIAL PRIMARY KEY,
		owner       TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner, name)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id            SERIAL PRIMARY KEY,
		owner         TEXT NOT NULL,
		tx_hash       TEXT NOT NULL UNIQUE,
		from_address  TEXT NOT NULL,
		to_address    TEXT NOT NULL,
		amount        TEXT NOT NULL,
		token         TEXT NOT NULL,
		status        TEXT NOT NULL,
		confirmations BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id         SERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		action     TEXT NOT NULL,
		message    TEXT NOT NULL,
		intent     TEXT NOT NULL DEFAULT '',
		result     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
