// Package pipeline orchestrates a chat session: it turns an incoming
// message into an intent, resolves and verifies transfer parameters,
// drives the confirmation protocol and hands confirmed transfers to the
// executor.
package pipeline

import (
	"context"
	"math/big"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/confirmgate"
	"github.com/chainchat-labs/chainchat/executor"
	"github.com/chainchat-labs/chainchat/resolver"
	"github.com/sirupsen/logrus"
)

// IntentParser turns a raw chat message into a typed intent. A nil intent
// with a nil error means the message matched nothing actionable.
type IntentParser interface {
	Parse(ctx context.Context, message string) (types.Intent, error)
}

// RecipientResolver maps a free-text recipient to a validated address.
type RecipientResolver interface {
	Resolve(ctx context.Context, sender, recipient string) (resolver.Resolution, error)
}

// CostEstimator estimates what a transfer will cost in native token units.
// Estimation never fails, a broken estimate degrades to a default.
type CostEstimator interface {
	EstimateTransferCost(ctx context.Context, from, to string, amount *big.Int, tokenAddress string) string
}

// BalanceProvider reads token balances.
type BalanceProvider interface {
	GetBalance(ctx context.Context, address string, token types.TokenConfig) (string, error)
}

// TransferSubmitter executes a confirmed transfer on chain.
type TransferSubmitter interface {
	Submit(ctx context.Context, w executor.Wallet, confirmation *types.Confirmation) (*types.TransactionRecord, error)
}

// StatusTracker follows a submitted transaction to a terminal status.
type StatusTracker interface {
	Track(ctx context.Context, txHash string, onUpdate func(types.TransactionStatus, uint64)) (types.TransactionStatus, error)
}

// TransactionStore persists contacts, teams and transfer history.
type TransactionStore interface {
	CreateContact(ctx context.Context, owner string, contact types.Contact) error
	CreateTeam(ctx context.Context, owner string, team types.Team) error
	RecordTransaction(ctx context.Context, owner string, record *types.TransactionRecord) error
	UpdateTransactionStatus(ctx context.Context, txHash string, status types.TransactionStatus, confirmations uint64) error
	Transactions(ctx context.Context, owner string, since time.Time) ([]types.TransactionRecord, error)
}

// ActivityRecorder logs handled messages. Recording is best effort and its
// failures never change the outcome of the pipeline.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, entry types.ActivityEntry) error
}

// Reply is what the pipeline says back to the user. Proposed carries the
// confirmation created by a transfer message, nil otherwise.
type Reply struct {
	Text     string
	Proposed *types.Confirmation
}

// Pipeline handles messages for any number of independent chat sessions.
type Pipeline struct {
	config    *types.ChainConfig
	parser    IntentParser
	resolver  RecipientResolver
	estimator CostEstimator
	balances  BalanceProvider
	gate      *confirmgate.Gate
	submitter TransferSubmitter
	tracker   StatusTracker
	store     TransactionStore
	recorder  ActivityRecorder
	logger    *logrus.Logger

	// activityTimeout bounds the detached activity-log writes.
	activityTimeout time.Duration
}

// logActivity writes one activity entry in the background. The entry is
// written on a detached context so it survives the request that spawned it,
// and any failure is swallowed.
func (p *Pipeline) logActivity(sessionID string, action types.Action, message, intent, result string) {
	if p.recorder == nil {
		return
	}

	entry := types.ActivityEntry{
		SessionID: sessionID,
		Action:    action,
		Message:   message,
		Intent:    intent,
		Result:    result,
		CreatedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.activityTimeout)
		defer cancel()

		if err := p.recorder.LogActivity(ctx, entry); err != nil {
			p.logger.WithError(err).Debug("Activity log write failed")
		}
	}()
}
