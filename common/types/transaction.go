package types

import "time"

// TransactionStatus represents the lifecycle state of a submitted transfer.
type TransactionStatus string

const (
	// TxPending is the status of a transaction with no receipt yet.
	TxPending TransactionStatus = "pending"
	// TxConfirmed is the status of a transaction mined successfully.
	TxConfirmed TransactionStatus = "confirmed"
	// TxFailed is the status of a transaction that reverted or was rejected.
	TxFailed TransactionStatus = "failed"
)

// Terminal reports whether the status will no longer change.
func (s TransactionStatus) Terminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// TransactionRecord is the result of a submitted transfer, owned by the
// session until terminal and mirrored best-effort to the record store keyed
// by Hash.
type TransactionRecord struct {
	Hash          string
	From          string
	To            string
	Amount        string
	Token         string
	Status        TransactionStatus
	Confirmations uint64
	CreatedAt     time.Time
}
