package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// TokenDecimals reads the decimals() of an ERC-20 contract. The submit path
// fetches decimals fresh instead of trusting configuration, since encoding
// an amount with the wrong scale moves the wrong quantity of funds.
//
// Parameters:
// - ctx: the context for managing the request.
// - tokenAddress: the ERC-20 contract address.
//
// Returns:
// - uint8: the token decimals.
// - error: an error if the call or decoding fails.
func (c *Client) TokenDecimals(ctx context.Context, tokenAddress string) (uint8, error) {
	client := c.Eth()
	if client == nil {
		return 0, errors.New("client not initialized")
	}

	data, err := c.tokenABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack decimals data")
	}

	contract := common.HexToAddress(tokenAddress)
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to call decimals")
	}
	if len(result) == 0 {
		return 0, errors.New("empty result from decimals call")
	}

	decimals := new(big.Int).SetBytes(result)
	if !decimals.IsUint64() || decimals.Uint64() > 77 {
		return 0, errors.Errorf("implausible token decimals %s", decimals)
	}
	return uint8(decimals.Uint64()), nil
}

// PackTransfer encodes an ERC-20 transfer(to, amount) call.
func (c *Client) PackTransfer(to string, amount *big.Int) ([]byte, error) {
	data, err := c.tokenABI.Pack("transfer", common.HexToAddress(to), amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack transfer data")
	}
	return data, nil
}
