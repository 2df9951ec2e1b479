package confirmgate

import (
	"io"
	"testing"
	"time"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Gate {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGate(DefaultMaxAge, logger)
}

func newConfirmation(session string) *types.Confirmation {
	return &types.Confirmation{
		ID:          "conf-" + session,
		SessionID:   session,
		Amount:      "50",
		Token:       "STT",
		Recipient:   "0x1111111111111111111111111111111111111111",
		GasEstimate: "0.0000231",
	}
}

func TestProposeAndConfirm(t *testing.T) {
	g := newTestGate()
	conf := newConfirmation("s1")

	require.NoError(t, g.Propose(conf))
	require.NotNil(t, g.Pending("s1"))

	got, err := g.Confirm("s1")
	require.NoError(t, err)
	assert.Equal(t, conf.ID, got.ID)

	// Confirm clears the slot.
	assert.Nil(t, g.Pending("s1"))
	_, err = g.Confirm("s1")
	assert.ErrorIs(t, err, cherrors.ErrNoPendingConfirmation)
}

func TestSinglePendingInvariant(t *testing.T) {
	g := newTestGate()

	require.NoError(t, g.Propose(newConfirmation("s1")))

	second := newConfirmation("s1")
	second.ID = "conf-second"
	err := g.Propose(second)
	require.ErrorIs(t, err, cherrors.ErrConfirmationPending)

	// The original proposal survives untouched.
	assert.Equal(t, "conf-s1", g.Pending("s1").ID)
}

func TestCancelReturnsToIdle(t *testing.T) {
	g := newTestGate()

	require.NoError(t, g.Propose(newConfirmation("s1")))

	cancelled, err := g.Cancel("s1")
	require.NoError(t, err)
	assert.Equal(t, "conf-s1", cancelled.ID)
	assert.Nil(t, g.Pending("s1"))

	// A new proposal succeeds after cancellation.
	require.NoError(t, g.Propose(newConfirmation("s1")))
}

func TestCancelWithoutProposal(t *testing.T) {
	g := newTestGate()
	_, err := g.Cancel("s1")
	assert.ErrorIs(t, err, cherrors.ErrNoPendingConfirmation)
}

func TestSessionsAreIndependent(t *testing.T) {
	g := newTestGate()

	require.NoError(t, g.Propose(newConfirmation("s1")))
	require.NoError(t, g.Propose(newConfirmation("s2")))

	_, err := g.Confirm("s1")
	require.NoError(t, err)
	assert.NotNil(t, g.Pending("s2"))
}

func TestExpiredProposalCannotConfirm(t *testing.T) {
	g := newTestGate()
	current := time.Now()
	g.now = func() time.Time { return current }

	require.NoError(t, g.Propose(newConfirmation("s1")))

	current = current.Add(DefaultMaxAge + time.Second)
	_, err := g.Confirm("s1")
	assert.ErrorIs(t, err, cherrors.ErrConfirmationExpired)

	// The expired proposal was dropped, so a fresh one is accepted.
	require.NoError(t, g.Propose(newConfirmation("s1")))
}

func TestExpiredProposalReplacedByPropose(t *testing.T) {
	g := newTestGate()
	current := time.Now()
	g.now = func() time.Time { return current }

	require.NoError(t, g.Propose(newConfirmation("s1")))
	current = current.Add(DefaultMaxAge + time.Second)

	second := newConfirmation("s1")
	second.ID = "conf-fresh"
	second.CreatedAt = current
	require.NoError(t, g.Propose(second))
	assert.Equal(t, "conf-fresh", g.Pending("s1").ID)
}

func TestProposeRequiresSession(t *testing.T) {
	g := newTestGate()
	assert.Error(t, g.Propose(nil))
	assert.Error(t, g.Propose(&types.Confirmation{ID: "x"}))
}
