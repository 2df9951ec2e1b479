package chainclient

import (
	"context"
	"time"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// probeTimeout bounds the liveness probe against each candidate endpoint so
// a dead backup cannot stall failover.
const probeTimeout = 5 * time.Second

// CheckConnection probes the active endpoint by fetching the current block
// number.
//
// Parameters:
// - ctx: the context for managing the connection check.
//
// Returns:
// - error: an error if the client is not initialized or the probe fails.
func (c *Client) CheckConnection(ctx context.Context) error {
	client := c.Eth()
	if client == nil {
		return errors.New("client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := client.BlockNumber(ctx)
	return err
}

// Failover satisfies the connection monitor by switching to a backup RPC.
func (c *Client) Failover(ctx context.Context) error {
	return c.SwitchToBackupRPC(ctx)
}

// SwitchToBackupRPC walks the backup endpoint list in order and adopts the
// first endpoint that answers a bounded liveness probe, replacing the
// active connection. It is idempotent: if the active endpoint is still
// healthy it is kept, and repeated calls are safe.
//
// Parameters:
// - ctx: the context for managing the failover.
//
// Returns:
// - error: ErrNetworkUnavailable when no endpoint in the pool is alive.
func (c *Client) SwitchToBackupRPC(ctx context.Context) error {
	if err := c.CheckConnection(ctx); err == nil {
		return nil
	}

	current := c.Endpoint()
	for _, url := range c.config.BackupRpcUrls {
		if url == current {
			continue
		}

		client, err := c.probe(ctx, url)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"chain":    c.config.Name,
				"endpoint": url,
				"error":    err,
			}).Warn("Backup RPC probe failed")
			continue
		}

		c.clientMutex.Lock()
		if c.client != nil {
			c.client.Close()
		}
		c.client = client
		c.endpoint = url
		c.clientMutex.Unlock()

		c.logger.WithFields(logrus.Fields{
			"chain":    c.config.Name,
			"endpoint": url,
		}).Info("Switched to backup RPC endpoint")
		return nil
	}

	return errors.Wrapf(cherrors.ErrNetworkUnavailable, "no live RPC endpoint for chain %s", c.config.Name)
}

// probe dials a candidate endpoint and verifies it serves the current block
// number within the probe timeout.
func (c *Client) probe(ctx context.Context, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial")
	}

	if _, err := client.BlockNumber(ctx); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "liveness probe failed")
	}
	return client, nil
}
