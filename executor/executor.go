// Package executor submits confirmed transfers to the chain and tracks
// them to a terminal status.
package executor

import (
	"context"
	"math/big"
	"time"

	"github.com/chainchat-labs/chainchat/chainclient"
	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/common/units"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// gasLimitBuffer pads the node's gas estimate for submission, in percent.
const gasLimitBuffer = 110

// legacyGasPriceBuffer pads the suggested gas price on legacy chains, in
// percent.
const legacyGasPriceBuffer = 150

// Wallet is the signer on whose behalf transfers are submitted. It mirrors
// an injected browser wallet: it is connected to one chain at a time, can
// be asked to register a new chain and to switch to a registered one.
type Wallet interface {
	Address() common.Address
	ChainID() uint64
	KnowsChain(chainID uint64) bool
	AddChain(config *types.ChainConfig) error
	SwitchChain(chainID uint64) error
	SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
}

// Executor builds, signs and submits transfer transactions for one chain.
type Executor struct {
	chain  *chainclient.Client
	config *types.ChainConfig
	logger *logrus.Logger
}

// NewExecutor creates an executor bound to the given chain client.
func NewExecutor(chain *chainclient.Client, config *types.ChainConfig, logger *logrus.Logger) *Executor {
	return &Executor{
		chain:  chain,
		config: config,
		logger: logger,
	}
}

// Submit executes a confirmed transfer and returns immediately after the
// transaction is accepted by the node, without waiting for inclusion.
//
// The wallet is moved to the target chain first, adding it when the wallet
// does not know it yet. The recipient is re-validated right before
// submission even though it was validated at proposal time. Native
// transfers send value directly; ERC-20 transfers read the token's
// decimals() from the contract before encoding the amount, then call
// transfer on the token contract.
//
// Parameters:
// - ctx: the context for managing the request.
// - w: the wallet that signs and pays for the transfer.
// - confirmation: the confirmed transfer parameters.
//
// Returns:
// - *types.TransactionRecord: the pending record with the submitted hash.
// - error: an error if any submission step fails.
func (e *Executor) Submit(ctx context.Context, w Wallet, confirmation *types.Confirmation) (*types.TransactionRecord, error) {
	if confirmation == nil {
		return nil, errors.New("confirmation is nil")
	}

	recipient := e.chain.ResolveAddress(confirmation.Recipient)
	if recipient == "" {
		return nil, errors.Wrapf(cherrors.ErrInvalidRecipient, "recipient %q", confirmation.Recipient)
	}

	if err := e.ensureNetwork(w); err != nil {
		return nil, err
	}

	client := e.chain.Eth()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	nonce, err := client.PendingNonceAt(ctx, w.Address())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending nonce")
	}

	var tx *ethtypes.Transaction
	if confirmation.TokenAddress == "" {
		tx, err = e.buildNativeTransfer(ctx, w, nonce, recipient, confirmation.Amount)
	} else {
		tx, err = e.buildTokenTransfer(ctx, w, nonce, recipient, confirmation)
	}
	if err != nil {
		return nil, err
	}

	chainID := new(big.Int).SetUint64(e.config.ChainID)
	signedTx, err := w.SignTx(tx, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	record := &types.TransactionRecord{
		Hash:      signedTx.Hash().Hex(),
		From:      w.Address().Hex(),
		To:        recipient,
		Amount:    confirmation.Amount,
		Token:     confirmation.Token,
		Status:    types.TxPending,
		CreatedAt: time.Now(),
	}

	e.logger.WithFields(logrus.Fields{
		"chain":  e.config.Name,
		"txHash": record.Hash,
		"token":  record.Token,
		"amount": record.Amount,
	}).Info("Transfer submitted")
	return record, nil
}

// ensureNetwork moves the wallet to the executor's chain, registering the
// chain with the wallet first when it is unknown.
func (e *Executor) ensureNetwork(w Wallet) error {
	if w.ChainID() == e.config.ChainID {
		return nil
	}

	if !w.KnowsChain(e.config.ChainID) {
		if err := w.AddChain(e.config); err != nil {
			return errors.Wrapf(err, "failed to add chain %d to wallet", e.config.ChainID)
		}
	}

	if err := w.SwitchChain(e.config.ChainID); err != nil {
		return errors.Wrapf(err, "failed to switch wallet to chain %d", e.config.ChainID)
	}

	e.logger.WithFields(logrus.Fields{
		"chain":   e.config.Name,
		"chainID": e.config.ChainID,
	}).Info("Wallet switched to target chain")
	return nil
}

func (e *Executor) buildNativeTransfer(ctx context.Context, w Wallet, nonce uint64, recipient, amount string) (*ethtypes.Transaction, error) {
	value, err := units.ToBaseUnits(amount, e.config.NativeDecimals)
	if err != nil {
		return nil, errors.Wrap(cherrors.ErrInvalidAmount, err.Error())
	}

	to := common.HexToAddress(recipient)
	return e.buildTransaction(ctx, ethereum.CallMsg{
		From:  w.Address(),
		To:    &to,
		Value: value,
	}, nonce)
}

func (e *Executor) buildTokenTransfer(ctx context.Context, w Wallet, nonce uint64, recipient string, confirmation *types.Confirmation) (*ethtypes.Transaction, error) {
	decimals, err := e.chain.TokenDecimals(ctx, confirmation.TokenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read decimals of token %s", confirmation.Token)
	}

	value, err := units.ToBaseUnits(confirmation.Amount, decimals)
	if err != nil {
		return nil, errors.Wrap(cherrors.ErrInvalidAmount, err.Error())
	}

	data, err := e.chain.PackTransfer(recipient, value)
	if err != nil {
		return nil, err
	}

	contract := common.HexToAddress(confirmation.TokenAddress)
	return e.buildTransaction(ctx, ethereum.CallMsg{
		From:  w.Address(),
		To:    &contract,
		Value: big.NewInt(0),
		Data:  data,
	}, nonce)
}

// buildTransaction estimates gas for the call and assembles a legacy or
// EIP-1559 transaction according to the chain configuration.
func (e *Executor) buildTransaction(ctx context.Context, msg ethereum.CallMsg, nonce uint64) (*ethtypes.Transaction, error) {
	client := e.chain.Eth()
	if client == nil {
		return nil, errors.New("client not initialized")
	}

	gasLimit, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to estimate gas")
	}
	gasLimit = gasLimit * gasLimitBuffer / 100

	if e.config.TxType == types.TxTypeEIP1559 {
		maxFee, tip, err := e.eip1559Fees(ctx)
		if err != nil {
			return nil, err
		}
		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(e.config.ChainID),
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: maxFee,
			Gas:       gasLimit,
			To:        msg.To,
			Value:     msg.Value,
			Data:      msg.Data,
		}), nil
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}
	gasPrice.Mul(gasPrice, big.NewInt(legacyGasPriceBuffer))
	gasPrice.Div(gasPrice, big.NewInt(100))

	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       msg.To,
		Value:    msg.Value,
		Data:     msg.Data,
	}), nil
}

// eip1559Fees derives the max fee and tip from the latest header, paying a
// 30% buffer over the current base fee.
func (e *Executor) eip1559Fees(ctx context.Context) (maxFee, tip *big.Int, err error) {
	client := e.chain.Eth()

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get latest header")
	}
	if header.BaseFee == nil {
		return nil, nil, errors.New("chain has no base fee, use legacy transactions")
	}

	tip, err = client.SuggestGasTipCap(ctx)
	if err != nil || tip.Sign() == 0 {
		tip = big.NewInt(1)
	}

	maxFee = new(big.Int).Mul(header.BaseFee, big.NewInt(130))
	maxFee.Div(maxFee, big.NewInt(100))
	maxFee.Add(maxFee, tip)
	return maxFee, tip, nil
}
