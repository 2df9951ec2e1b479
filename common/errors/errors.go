package errors

import "github.com/pkg/errors"

var (
	ErrConfirmationPending   = errors.New("a transfer is already awaiting confirmation")
	ErrNoPendingConfirmation = errors.New("no transfer is awaiting confirmation")
	ErrConfirmationExpired   = errors.New("pending confirmation has expired")
	ErrNetworkUnavailable    = errors.New("network unavailable")
	ErrInvalidRecipient      = errors.New("invalid recipient address")
	ErrUnknownChain          = errors.New("unknown chain")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrDatabaseConnect       = errors.New("failed to connect to database")
)
