// Package confirmgate enforces the single-pending-confirmation protocol: a
// chat session can hold at most one transfer awaiting confirmation, and a
// transfer only executes after the user explicitly confirms it.
package confirmgate

import (
	"sync"
	"time"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAge bounds how long a proposal may sit unconfirmed. Gas
// estimates and balances go stale, so an expired proposal must be proposed
// again rather than executed.
const DefaultMaxAge = 5 * time.Minute

// Gate is the per-session confirmation state machine:
// Idle -> Proposed -> {Confirmed, Cancelled}. Confirm and Cancel both clear
// the slot; a second Propose while one is outstanding is rejected, never
// silently replaced.
type Gate struct {
	logger *logrus.Logger
	maxAge time.Duration

	mu      sync.Mutex
	pending map[string]*types.Confirmation

	// now is replaceable in tests.
	now func() time.Time
}

// NewGate creates a confirmation gate. A non-positive maxAge falls back to
// DefaultMaxAge.
func NewGate(maxAge time.Duration, logger *logrus.Logger) *Gate {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Gate{
		logger:  logger,
		maxAge:  maxAge,
		pending: make(map[string]*types.Confirmation),
		now:     time.Now,
	}
}

// Propose places a confirmation into the session's slot.
//
// Returns:
// - error: ErrConfirmationPending if the session already holds an
// unexpired proposal.
func (g *Gate) Propose(confirmation *types.Confirmation) error {
	if confirmation == nil || confirmation.SessionID == "" {
		return errors.New("confirmation must carry a session id")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.pending[confirmation.SessionID]; ok {
		if !g.expired(existing) {
			return cherrors.ErrConfirmationPending
		}
		g.logger.WithFields(logrus.Fields{
			"session":      confirmation.SessionID,
			"confirmation": existing.ID,
		}).Info("Expired proposal replaced")
	}

	if confirmation.CreatedAt.IsZero() {
		confirmation.CreatedAt = g.now()
	}
	g.pending[confirmation.SessionID] = confirmation
	return nil
}

// Confirm consumes the session's proposal for execution.
//
// Returns:
// - *types.Confirmation: the confirmed proposal.
// - error: ErrNoPendingConfirmation when the slot is empty, or
// ErrConfirmationExpired when the proposal sat too long; an expired
// proposal is dropped and must be proposed again.
func (g *Gate) Confirm(sessionID string) (*types.Confirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	confirmation, ok := g.pending[sessionID]
	if !ok {
		return nil, cherrors.ErrNoPendingConfirmation
	}
	delete(g.pending, sessionID)

	if g.expired(confirmation) {
		return nil, cherrors.ErrConfirmationExpired
	}
	return confirmation, nil
}

// Cancel discards the session's proposal. Cancelling is a normal terminal
// outcome of user choice, not an error, but cancelling an empty slot is.
func (g *Gate) Cancel(sessionID string) (*types.Confirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	confirmation, ok := g.pending[sessionID]
	if !ok {
		return nil, cherrors.ErrNoPendingConfirmation
	}
	delete(g.pending, sessionID)
	return confirmation, nil
}

// Pending returns the session's outstanding proposal without consuming it,
// or nil when the slot is empty or the proposal has expired.
func (g *Gate) Pending(sessionID string) *types.Confirmation {
	g.mu.Lock()
	defer g.mu.Unlock()

	confirmation, ok := g.pending[sessionID]
	if !ok || g.expired(confirmation) {
		return nil
	}
	return confirmation
}

func (g *Gate) expired(confirmation *types.Confirmation) bool {
	return g.now().Sub(confirmation.CreatedAt) > g.maxAge
}
