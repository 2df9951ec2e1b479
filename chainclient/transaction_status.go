package chainclient

import (
	"context"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// GetTransactionStatus returns the current status of a submitted
// transaction and the number of blocks mined on top of it.
//
// A transaction with no receipt yet is pending with zero confirmations.
// Once a receipt exists the status follows the receipt outcome and
// confirmations are the distance from the receipt block to the current
// head.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the hash of the transaction to inspect.
//
// Returns:
// - types.TransactionStatus: pending, confirmed or failed.
// - uint64: the confirmation count.
// - error: an error if the RPC lookups fail.
func (c *Client) GetTransactionStatus(ctx context.Context, txHash string) (types.TransactionStatus, uint64, error) {
	client := c.Eth()
	if client == nil {
		return types.TxPending, 0, errors.New("client not initialized")
	}

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return types.TxPending, 0, nil
		}
		return types.TxPending, 0, errors.Wrap(err, "failed to get transaction receipt")
	}

	currentBlock, err := client.BlockNumber(ctx)
	if err != nil {
		return types.TxPending, 0, errors.Wrap(err, "failed to get current block number")
	}

	var confirmations uint64
	if receiptBlock := receipt.BlockNumber.Uint64(); currentBlock > receiptBlock {
		confirmations = currentBlock - receiptBlock
	}

	if receipt.Status == ethtypes.ReceiptStatusSuccessful {
		return types.TxConfirmed, confirmations, nil
	}
	return types.TxFailed, confirmations, nil
}
