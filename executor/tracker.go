package executor

import (
	"context"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/sirupsen/logrus"
)

// defaultPollInterval defines how often a tracked transaction is re-checked.
const defaultPollInterval = 3 * time.Second

// defaultTrackTimeout bounds how long a transaction is tracked in total. A
// transaction that is dropped or replaced in the mempool never reaches a
// terminal status, so without this bound the tracking goroutine would poll
// for the process lifetime.
const defaultTrackTimeout = 10 * time.Minute

// StatusReader reports the on-chain status of a transaction.
type StatusReader interface {
	GetTransactionStatus(ctx context.Context, txHash string) (types.TransactionStatus, uint64, error)
}

// Tracker polls a submitted transaction until it reaches a terminal status.
type Tracker struct {
	chain        StatusReader
	config       *types.ChainConfig
	logger       *logrus.Logger
	pollInterval time.Duration
	trackTimeout time.Duration
}

// NewTracker creates a transaction tracker.
func NewTracker(chain StatusReader, config *types.ChainConfig, logger *logrus.Logger) *Tracker {
	return &Tracker{
		chain:        chain,
		config:       config,
		logger:       logger,
		pollInterval: defaultPollInterval,
		trackTimeout: defaultTrackTimeout,
	}
}

// SetPollInterval overrides the poll interval. Must be called before Track.
func (t *Tracker) SetPollInterval(interval time.Duration) {
	t.pollInterval = interval
}

// SetTrackTimeout overrides the total tracking bound. Must be called before
// Track.
func (t *Tracker) SetTrackTimeout(timeout time.Duration) {
	t.trackTimeout = timeout
}

// Track polls the transaction until it is confirmed with the chain's
// required block depth, fails, the context ends, or the total tracking
// bound expires. Status probe errors are logged and retried on the next
// tick rather than aborting the tracking loop, since a transient RPC error
// says nothing about the transaction.
//
// Parameters:
// - ctx: the context bounding how long tracking runs, further capped by
// the tracker's total tracking bound.
// - txHash: the transaction hash to track.
// - onUpdate: optional callback invoked whenever status or confirmation
// count changes; may be nil.
//
// Returns:
// - types.TransactionStatus: the final observed status.
// - error: the context error when tracking was cut short.
func (t *Tracker) Track(ctx context.Context, txHash string, onUpdate func(types.TransactionStatus, uint64)) (types.TransactionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, t.trackTimeout)
	defer cancel()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	lastStatus := types.TxPending
	var lastConfirmations uint64

	for {
		select {
		case <-ctx.Done():
			return lastStatus, ctx.Err()
		case <-ticker.C:
		}

		status, confirmations, err := t.chain.GetTransactionStatus(ctx, txHash)
		if err != nil {
			t.logger.WithFields(logrus.Fields{
				"chain":  t.config.Name,
				"txHash": txHash,
				"error":  err,
			}).Warn("Transaction status probe failed")
			continue
		}

		if status != lastStatus || confirmations != lastConfirmations {
			lastStatus, lastConfirmations = status, confirmations
			if onUpdate != nil {
				onUpdate(status, confirmations)
			}
		}

		if !status.Terminal() {
			continue
		}
		if status == types.TxFailed {
			t.logger.WithFields(logrus.Fields{
				"chain":  t.config.Name,
				"txHash": txHash,
			}).Warn("Transaction reverted")
			return status, nil
		}
		if confirmations >= t.config.WaitNBlocks {
			t.logger.WithFields(logrus.Fields{
				"chain":         t.config.Name,
				"txHash":        txHash,
				"confirmations": confirmations,
			}).Info("Transaction confirmed")
			return status, nil
		}
	}
}
