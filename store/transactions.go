package store

import (
	"context"
	"database/sql"
	"time"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
)

// RecordTransaction saves a submitted transfer. Recording is idempotent on
// the transaction hash, so the recording path may be retried freely without
// duplicating history rows.
//
// Parameters:
// - ctx: the context for managing the request.
// - owner: the wallet address the transfer belongs to.
// - record: the transaction record to save.
//
// Returns:
// - error: an error if the insert fails.
func (s *Store) RecordTransaction(ctx context.Context, owner string, record *types.TransactionRecord) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO transactions (owner, tx_hash, from_address, to_address, amount, token, status, confirmations, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (tx_hash) DO NOTHING
    `, owner, record.Hash, record.From, record.To, record.Amount, record.Token, record.Status, record.Confirmations, createdAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert transaction")
	}
	return nil
}

// UpdateTransactionStatus moves a recorded transfer to a new status with its
// confirmation count.
func (s *Store) UpdateTransactionStatus(ctx context.Context, txHash string, status types.TransactionStatus, confirmations uint64) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
        UPDATE transactions
        SET status = $1, confirmations = $2
        WHERE tx_hash = $3
    `, status, confirmations, txHash)
	if err != nil {
		return errors.Wrap(err, "failed to update transaction status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return errors.Errorf("transaction %s not found", txHash)
	}
	return nil
}

// Transactions returns the owner's transfers submitted at or after the given
// time, newest first.
func (s *Store) Transactions(ctx context.Context, owner string, since time.Time) ([]types.TransactionRecord, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
        SELECT tx_hash, from_address, to_address, amount, token, status, confirmations, created_at
        FROM transactions
        WHERE owner = $1 AND created_at >= $2
        ORDER BY created_at DESC
    `, owner, since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query transactions")
	}
	defer rows.Close()

	var records []types.TransactionRecord
	for rows.Next() {
		var record types.TransactionRecord
		err := rows.Scan(
			&record.Hash,
			&record.From,
			&record.To,
			&record.Amount,
			&record.Token,
			&record.Status,
			&record.Confirmations,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction row")
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
