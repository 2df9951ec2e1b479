// Package config loads the agent configuration from environment variables
// and an optional YAML config file.
package config

import (
	"strings"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// AI provider. Empty keys disable the AI path entirely, the parser
	// then relies on its deterministic fallback.
	AIKeys    []string
	AIBaseURL string
	AIModel   string

	// Chain access.
	ChainName      string
	ChainID        uint64
	RpcURL         string
	BackupRpcURLs  []string
	NativeSymbol   string
	NativeDecimals uint8
	TxType         uint64
	WaitNBlocks    uint64
	Tokens         map[string]types.TokenConfig

	// Wallet and persistence.
	PrivateKey  string
	DatabaseURL string

	// Confirmation protocol.
	ConfirmationMaxAge time.Duration
}

type tokenEntry struct {
	Address  string `mapstructure:"address"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Load reads configuration from CHAINCHAT_* environment variables and an
// optional .chainchat.yaml config file.
//
// Returns:
// - *Config: the loaded configuration.
// - error: an error if a required field is missing or the token table is
// malformed.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".chainchat")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetDefault("ai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai_model", "gpt-4o-mini")
	v.SetDefault("chain_name", "somnia-testnet")
	v.SetDefault("chain_id", 50312)
	v.SetDefault("native_symbol", "STT")
	v.SetDefault("native_decimals", 18)
	v.SetDefault("tx_type", types.TxTypeLegacy)
	v.SetDefault("wait_n_blocks", 1)
	v.SetDefault("confirmation_max_age", "5m")

	v.SetEnvPrefix("CHAINCHAT")
	v.AutomaticEnv()

	// The config file is optional.
	_ = v.ReadInConfig()

	cfg := &Config{
		AIKeys:             splitList(v.GetString("ai_keys")),
		AIBaseURL:          v.GetString("ai_base_url"),
		AIModel:            v.GetString("ai_model"),
		ChainName:          v.GetString("chain_name"),
		ChainID:            v.GetUint64("chain_id"),
		RpcURL:             v.GetString("rpc_url"),
		BackupRpcURLs:      splitList(v.GetString("backup_rpc_urls")),
		NativeSymbol:       strings.ToUpper(v.GetString("native_symbol")),
		NativeDecimals:     uint8(v.GetUint("native_decimals")),
		TxType:             v.GetUint64("tx_type"),
		WaitNBlocks:        v.GetUint64("wait_n_blocks"),
		PrivateKey:         strings.TrimPrefix(v.GetString("private_key"), "0x"),
		DatabaseURL:        v.GetString("database_url"),
		ConfirmationMaxAge: v.GetDuration("confirmation_max_age"),
	}

	var tokens map[string]tokenEntry
	if err := v.UnmarshalKey("tokens", &tokens); err != nil {
		return nil, errors.Wrap(err, "failed to parse token table")
	}
	cfg.Tokens = make(map[string]types.TokenConfig, len(tokens))
	for symbol, entry := range tokens {
		symbol = strings.ToUpper(symbol)
		cfg.Tokens[symbol] = types.TokenConfig{
			Symbol:   symbol,
			Address:  entry.Address,
			Decimals: entry.Decimals,
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RpcURL == "" {
		return errors.New("rpc_url is required, set CHAINCHAT_RPC_URL")
	}
	if c.ChainID == 0 {
		return errors.New("chain_id is required, set CHAINCHAT_CHAIN_ID")
	}
	if c.NativeSymbol == "" {
		return errors.New("native_symbol is required, set CHAINCHAT_NATIVE_SYMBOL")
	}
	if c.PrivateKey == "" {
		return errors.New("private_key is required, set CHAINCHAT_PRIVATE_KEY")
	}
	if c.ConfirmationMaxAge < 0 {
		return errors.New("confirmation_max_age must not be negative")
	}
	return nil
}

// ChainConfig converts the loaded configuration into the chain config the
// chain client and executor consume.
func (c *Config) ChainConfig() *types.ChainConfig {
	return &types.ChainConfig{
		Name:           c.ChainName,
		ChainID:        c.ChainID,
		RpcUrl:         c.RpcURL,
		BackupRpcUrls:  c.BackupRpcURLs,
		NativeSymbol:   c.NativeSymbol,
		NativeDecimals: c.NativeDecimals,
		TxType:         c.TxType,
		WaitNBlocks:    c.WaitNBlocks,
		Tokens:         c.Tokens,
	}
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
