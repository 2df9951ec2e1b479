package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHAINCHAT_RPC_URL", "https://rpc.example.test")
	t.Setenv("CHAINCHAT_PRIVATE_KEY", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "somnia-testnet", cfg.ChainName)
	assert.Equal(t, uint64(50312), cfg.ChainID)
	assert.Equal(t, "STT", cfg.NativeSymbol)
	assert.Equal(t, uint8(18), cfg.NativeDecimals)
	assert.Equal(t, 5*time.Minute, cfg.ConfirmationMaxAge)
	assert.Empty(t, cfg.AIKeys)

	// The 0x prefix on the key is stripped.
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", cfg.PrivateKey)
}

func TestLoadSplitsLists(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAINCHAT_AI_KEYS", "key-1, key-2 ,,key-3")
	t.Setenv("CHAINCHAT_BACKUP_RPC_URLS", "https://b1.example.test,https://b2.example.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-1", "key-2", "key-3"}, cfg.AIKeys)
	assert.Len(t, cfg.BackupRpcURLs, 2)
}

func TestLoadRequiresRpcURL(t *testing.T) {
	t.Setenv("CHAINCHAT_RPC_URL", "")
	t.Setenv("CHAINCHAT_PRIVATE_KEY", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
}

func TestLoadRequiresPrivateKey(t *testing.T) {
	t.Setenv("CHAINCHAT_RPC_URL", "https://rpc.example.test")
	t.Setenv("CHAINCHAT_PRIVATE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private_key")
}

func TestChainConfig(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	chain := cfg.ChainConfig()
	assert.Equal(t, cfg.ChainID, chain.ChainID)
	assert.Equal(t, cfg.RpcURL, chain.RpcUrl)
	assert.Equal(t, cfg.NativeSymbol, chain.NativeSymbol)
}
