package chainclient

import (
	"context"
	"math/big"

	"github.com/chainchat-labs/chainchat/common/units"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// defaultTransferCost is the conservative cost shown when estimation fails.
// Estimation failure must never block the confirmation flow, it only makes
// the displayed cost a best guess.
const defaultTransferCost = "0.001"

// gasLimitHeadroom pads the node's estimate, in percent.
const gasLimitHeadroom = 110

// EstimateTransferCost estimates what a transfer will cost in native token
// units, returned as a decimal string.
//
// For a native transfer the node simulates a plain value send; for an ERC-20
// transfer it simulates the packed transfer call. The gas amount is
// multiplied by the current gas price, falling back to a base-fee-derived
// max fee when the gas price is unavailable. Every failure path returns the
// fixed conservative default instead of an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - from: the sender address.
// - to: the validated recipient address.
// - amount: the transfer amount in base units.
// - tokenAddress: the ERC-20 contract address, empty for native.
//
// Returns:
// - string: the estimated cost as a non-negative decimal string.
func (c *Client) EstimateTransferCost(ctx context.Context, from, to string, amount *big.Int, tokenAddress string) string {
	client := c.Eth()
	if client == nil {
		return defaultTransferCost
	}

	msg, err := c.transferCallMsg(from, to, amount, tokenAddress)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to build estimation call, using default cost")
		return defaultTransferCost
	}

	gas, err := client.EstimateGas(ctx, msg)
	if err != nil {
		c.logger.WithField("chain", c.config.Name).WithError(err).Warn("Gas estimation failed, using default cost")
		return defaultTransferCost
	}
	gas = gas * gasLimitHeadroom / 100

	price, err := c.gasPrice(ctx)
	if err != nil {
		c.logger.WithField("chain", c.config.Name).WithError(err).Warn("Gas price unavailable, using default cost")
		return defaultTransferCost
	}

	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), price)
	return units.FromBaseUnits(cost, c.config.NativeDecimals)
}

// transferCallMsg builds the simulation message for a native or ERC-20
// transfer.
func (c *Client) transferCallMsg(from, to string, amount *big.Int, tokenAddress string) (ethereum.CallMsg, error) {
	sender := common.HexToAddress(from)

	if tokenAddress == "" {
		recipient := common.HexToAddress(to)
		return ethereum.CallMsg{
			From:  sender,
			To:    &recipient,
			Value: amount,
		}, nil
	}

	data, err := c.tokenABI.Pack("transfer", common.HexToAddress(to), amount)
	if err != nil {
		return ethereum.CallMsg{}, errors.Wrap(err, "failed to pack transfer data")
	}

	contract := common.HexToAddress(tokenAddress)
	return ethereum.CallMsg{
		From:  sender,
		To:    &contract,
		Value: big.NewInt(0),
		Data:  data,
	}, nil
}

// gasPrice returns the suggested gas price, or a max fee derived from the
// latest base fee plus tip when the node does not serve eth_gasPrice.
func (c *Client) gasPrice(ctx context.Context) (*big.Int, error) {
	client := c.Eth()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	price, err := client.SuggestGasPrice(ctx)
	if err == nil && price.Sign() > 0 {
		return price, nil
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest header")
	}
	if header.BaseFee == nil {
		return nil, errors.New("base fee is nil")
	}

	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil || tip.Sign() == 0 {
		tip = big.NewInt(1)
	}

	// 30% buffer over the base fee, matching what the submit path pays.
	maxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(130))
	maxFee.Div(maxFee, big.NewInt(100))
	return maxFee.Add(maxFee, tip), nil
}
