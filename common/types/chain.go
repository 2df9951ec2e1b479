package types

// Transaction type constants for EVM chains.
const (
	// TxTypeLegacy represents the legacy transaction type.
	TxTypeLegacy = 0
	// TxTypeEIP1559 represents the EIP-1559 transaction type.
	TxTypeEIP1559 = 2
)

// TokenConfig describes an ERC-20 token supported on a chain.
type TokenConfig struct {
	Symbol   string
	Address  string
	Decimals uint8
}

// ChainConfig holds the configuration for one EVM chain.
//
// Fields:
// - Name: human readable chain name.
// - ChainID: the unique identifier for the chain.
// - RpcUrl: the primary RPC endpoint.
// - BackupRpcUrls: failover endpoints tried in order when the primary dies.
// - NativeSymbol: symbol of the chain's base currency.
// - NativeDecimals: decimals of the base currency (18 on mainline EVM).
// - TxType: transaction type to build (TxTypeLegacy or TxTypeEIP1559).
// - WaitNBlocks: block confirmations required before a transfer is final.
// - Tokens: supported ERC-20 tokens keyed by uppercase symbol.
type ChainConfig struct {
	Name           string
	ChainID        uint64
	RpcUrl         string
	BackupRpcUrls  []string
	NativeSymbol   string
	NativeDecimals uint8
	TxType         uint64
	WaitNBlocks    uint64
	Tokens         map[string]TokenConfig
}

// Token returns the token config for a symbol, or false when the symbol is
// neither the native symbol nor a configured ERC-20.
func (c *ChainConfig) Token(symbol string) (TokenConfig, bool) {
	if symbol == c.NativeSymbol {
		return TokenConfig{Symbol: symbol, Decimals: c.NativeDecimals}, true
	}
	t, ok := c.Tokens[symbol]
	return t, ok
}

// Supported reports whether the symbol is the native token or a configured
// ERC-20 token.
func (c *ChainConfig) Supported(symbol string) bool {
	_, ok := c.Token(symbol)
	return ok
}
