package pipeline

import (
	"context"
	"fmt"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Confirm executes the session's pending transfer. Submission failures are
// terminal for the attempt: the proposal is already consumed, so the user
// must start over rather than retry the same confirmation.
//
// Parameters:
// - ctx: the context for managing the request.
// - sessionID: the chat session confirming its proposal.
// - w: the wallet paying for the transfer.
//
// Returns:
// - *Reply: the reply to show the user.
// - error: an error if submission failed.
func (p *Pipeline) Confirm(ctx context.Context, sessionID string, w executor.Wallet) (*Reply, error) {
	confirmation, err := p.gate.Confirm(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, cherrors.ErrNoPendingConfirmation):
			return &Reply{Text: "There is nothing to confirm right now."}, nil
		case errors.Is(err, cherrors.ErrConfirmationExpired):
			return &Reply{Text: "That proposal expired. Please send the transfer request again."}, nil
		}
		return nil, err
	}

	record, err := p.submitter.Submit(ctx, w, confirmation)
	if err != nil {
		p.logActivity(sessionID, types.ActionTransfer, "confirm", confirmation.ID, "submission failed: "+err.Error())
		return &Reply{Text: "The transfer failed: " + err.Error()}, err
	}

	p.recordAndTrack(sessionID, w.Address().Hex(), record)
	p.logActivity(sessionID, types.ActionTransfer, "confirm", confirmation.ID, "submitted "+record.Hash)

	text := fmt.Sprintf("Transfer submitted: %s %s to %s. Tx %s.",
		record.Amount, record.Token, record.To, record.Hash)
	return &Reply{Text: text}, nil
}

// Cancel discards the session's pending transfer.
func (p *Pipeline) Cancel(sessionID string) (*Reply, error) {
	confirmation, err := p.gate.Cancel(sessionID)
	if err != nil {
		if errors.Is(err, cherrors.ErrNoPendingConfirmation) {
			return &Reply{Text: "There is nothing to cancel right now."}, nil
		}
		return nil, err
	}

	p.logActivity(sessionID, types.ActionTransfer, "cancel", confirmation.ID, "cancelled")
	return &Reply{Text: "Cancelled. Nothing was sent."}, nil
}

// recordAndTrack mirrors the submitted transfer to the store and follows it
// to a terminal status in the background. Both are best effort, a store or
// tracker failure never affects the reply the user already received.
func (p *Pipeline) recordAndTrack(sessionID, owner string, record *types.TransactionRecord) {
	if p.store == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.activityTimeout)
		if err := p.store.RecordTransaction(ctx, owner, record); err != nil {
			p.logger.WithFields(logrus.Fields{
				"session": sessionID,
				"txHash":  record.Hash,
				"error":   err,
			}).Warn("Failed to record transaction")
		}
		cancel()

		if p.tracker == nil {
			return
		}

		status, err := p.tracker.Track(context.Background(), record.Hash, func(status types.TransactionStatus, confirmations uint64) {
			updateCtx, cancelUpdate := context.WithTimeout(context.Background(), p.activityTimeout)
			defer cancelUpdate()
			if err := p.store.UpdateTransactionStatus(updateCtx, record.Hash, status, confirmations); err != nil {
				p.logger.WithField("txHash", record.Hash).WithError(err).Warn("Failed to update transaction status")
			}
		})
		if err != nil {
			p.logger.WithField("txHash", record.Hash).WithError(err).Warn("Transaction tracking stopped early")
			return
		}

		p.logger.WithFields(logrus.Fields{
			"session": sessionID,
			"txHash":  record.Hash,
			"status":  status,
		}).Info("Transaction reached terminal status")
	}()
}
