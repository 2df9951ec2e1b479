package chainclient

import (
	"context"
	"math/big"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/common/units"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// GetBalance returns the balance of an address as a decimal string in
// display units. A token with an empty contract address means the chain's
// native token; anything else is read through the ERC-20 balanceOf call.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the address to check balance for.
// - token: the token to read, with its contract address and decimals.
//
// Returns:
// - string: the balance as a decimal string.
// - error: an error if the balance read fails.
func (c *Client) GetBalance(ctx context.Context, address string, token types.TokenConfig) (string, error) {
	client := c.Eth()
	if client == nil {
		return "", errors.New("client not initialized")
	}

	if token.Address == "" {
		balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return "", errors.Wrap(err, "failed to get native balance")
		}
		return units.FromBaseUnits(balance, c.config.NativeDecimals), nil
	}

	data, err := c.tokenABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return "", errors.Wrap(err, "failed to pack balanceOf data")
	}

	tokenAddr := common.HexToAddress(token.Address)
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &tokenAddr,
		Data: data,
	}, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to call balanceOf")
	}
	if len(result) == 0 {
		return "", errors.New("empty result from balanceOf call")
	}

	balance := new(big.Int).SetBytes(result)
	return units.FromBaseUnits(balance, token.Decimals), nil
}
