// Package wallet provides a private-key-backed wallet that signs
// transactions and tracks which chain it is connected to.
package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"sync"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// KeyWallet signs with a local ECDSA key. It keeps a registry of chains it
// has been told about and the chain it is currently connected to, modeling
// the injected wallet of the chat frontend.
type KeyWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address

	mu      sync.RWMutex
	chains  map[uint64]*types.ChainConfig
	current uint64
}

// NewKeyWallet creates a wallet from a hex private key, connected to the
// given initial chain.
//
// Parameters:
// - privateKeyHex: the hex-encoded private key without 0x prefix.
// - initial: the chain the wallet starts connected to.
//
// Returns:
// - *KeyWallet: the wallet.
// - error: an error if the private key is invalid.
func NewKeyWallet(privateKeyHex string, initial *types.ChainConfig) (*KeyWallet, error) {
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	pubKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("cannot derive ECDSA public key")
	}

	w := &KeyWallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*pubKey),
		chains:     make(map[uint64]*types.ChainConfig),
	}
	if initial != nil {
		w.chains[initial.ChainID] = initial
		w.current = initial.ChainID
	}
	return w, nil
}

// Address returns the wallet's address.
func (w *KeyWallet) Address() common.Address {
	return w.address
}

// ChainID returns the chain the wallet is currently connected to.
func (w *KeyWallet) ChainID() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// KnowsChain reports whether the chain has been registered with the wallet.
func (w *KeyWallet) KnowsChain(chainID uint64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chains[chainID]
	return ok
}

// AddChain registers a chain so the wallet can later switch to it.
func (w *KeyWallet) AddChain(config *types.ChainConfig) error {
	if config == nil || config.ChainID == 0 {
		return errors.Wrap(cherrors.ErrUnknownChain, "chain config missing id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chains[config.ChainID] = config
	return nil
}

// SwitchChain connects the wallet to a previously registered chain.
//
// Returns:
// - error: ErrUnknownChain when the chain was never added.
func (w *KeyWallet) SwitchChain(chainID uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chains[chainID]; !ok {
		return errors.Wrapf(cherrors.ErrUnknownChain, "chain %d not registered", chainID)
	}
	w.current = chainID
	return nil
}

// SignTx signs the given transaction for the given chain.
func (w *KeyWallet) SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(w.privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keyed transactor")
	}

	signedTx, err := auth.Signer(w.address, tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	return signedTx, nil
}
