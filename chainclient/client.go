// Package chainclient provides chain access for the transfer pipeline:
// balances, transfer cost estimation, transaction status tracking and
// failover across an ordered pool of RPC endpoints.
package chainclient

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// addressPattern matches a 0x-prefixed 40-hex-character address.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Client talks to one EVM chain through a primary RPC endpoint with ordered
// backups. The active endpoint lives for the process lifetime and is only
// replaced by failover.
type Client struct {
	config *types.ChainConfig
	logger *logrus.Logger

	tokenABI abi.ABI

	// Active connection, replaced on failover.
	clientMutex sync.RWMutex
	client      *ethclient.Client
	endpoint    string
}

// NewClient dials the primary RPC endpoint and returns a chain client.
//
// Parameters:
// - config: the chain configuration with primary and backup endpoints.
// - logger: the logger for logging events.
//
// Returns:
// - *Client: the chain client.
// - error: an error if the primary endpoint cannot be dialed or the token
// ABI fails to parse.
func NewClient(config *types.ChainConfig, logger *logrus.Logger) (*Client, error) {
	tokenABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token ABI")
	}

	client, err := ethclient.Dial(config.RpcUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial RPC endpoint")
	}

	return &Client{
		config:   config,
		logger:   logger,
		tokenABI: tokenABI,
		client:   client,
		endpoint: config.RpcUrl,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.clientMutex.Lock()
	defer c.clientMutex.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

// Endpoint returns the currently active RPC endpoint URL.
func (c *Client) Endpoint() string {
	c.clientMutex.RLock()
	defer c.clientMutex.RUnlock()
	return c.endpoint
}

// Eth returns the active ethclient handle for callers that build and submit
// transactions themselves.
func (c *Client) Eth() *ethclient.Client {
	c.clientMutex.RLock()
	defer c.clientMutex.RUnlock()
	return c.client
}

// CurrentBlock returns the latest block number on the active endpoint.
func (c *Client) CurrentBlock(ctx context.Context) (uint64, error) {
	client := c.Eth()
	if client == nil {
		return 0, errors.New("client not initialized")
	}
	return client.BlockNumber(ctx)
}

// ResolveAddress returns the checksummed form of the input when it already
// is a syntactically valid address, and an empty string otherwise. No naming
// service lookup is performed.
func (c *Client) ResolveAddress(text string) string {
	text = strings.TrimSpace(text)
	if !addressPattern.MatchString(text) {
		return ""
	}
	return common.HexToAddress(text).Hex()
}
