package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusTerminal(t *testing.T) {
	assert.False(t, TxPending.Terminal())
	assert.True(t, TxConfirmed.Terminal())
	assert.True(t, TxFailed.Terminal())
}
