// Package connectionmonitor keeps an RPC connection alive by probing it
// periodically and driving endpoint failover when the probe fails.
package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultHealthCheckInterval defines the interval between probes.
	defaultHealthCheckInterval = 30 * time.Second
	// failoverRetryDelay defines the delay between failover attempts.
	failoverRetryDelay = 5 * time.Second
	// maxFailoverAttempts defines the maximum number of failover attempts
	// per failed health check.
	maxFailoverAttempts = 3
)

// FailoverClient is a chain client whose connection can be probed and
// switched to a backup endpoint.
type FailoverClient interface {
	// CheckConnection checks whether the active endpoint is alive.
	CheckConnection(ctx context.Context) error
	// Failover switches to the next live backup endpoint.
	Failover(ctx context.Context) error
}

// Monitor watches a FailoverClient in the background.
type Monitor struct {
	client    FailoverClient
	logger    *logrus.Logger
	chainName string
	interval  time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	running  bool
}

// NewMonitor creates a connection monitor for the given client.
//
// Parameters:
// - client: the chain client to watch.
// - logger: the logger for logging events.
// - chainName: the chain name used in log fields.
func NewMonitor(client FailoverClient, logger *logrus.Logger, chainName string) *Monitor {
	return &Monitor{
		client:    client,
		logger:    logger,
		chainName: chainName,
		interval:  defaultHealthCheckInterval,
	}
}

// SetInterval overrides the probe interval. Must be called before Start.
func (m *Monitor) SetInterval(interval time.Duration) {
	m.interval = interval
}

// Start begins monitoring in a background goroutine.
//
// Returns:
// - error: an error if the monitor is already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.Errorf("connection monitor already running for chain %s", m.chainName)
	}
	m.running = true
	m.stopChan = make(chan struct{})

	go m.run(ctx, m.stopChan)
	return nil
}

// Stop stops monitoring. Safe to call when not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	close(m.stopChan)
	m.running = false
}

func (m *Monitor) run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped by context")
			return
		case <-stop:
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped")
			return
		case <-ticker.C:
			if err := m.checkAndFailover(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"chain": m.chainName,
					"error": err,
				}).Error("Health check and failover both failed")
			}
		}
	}
}

// checkAndFailover probes the connection and, when the probe fails, runs a
// bounded number of failover attempts with a delay between them.
func (m *Monitor) checkAndFailover(ctx context.Context) error {
	err := m.client.CheckConnection(ctx)
	if err == nil {
		return nil
	}
	m.logger.WithFields(logrus.Fields{
		"chain": m.chainName,
		"error": err,
	}).Warn("Connection check failed, switching endpoint")

	for attempt := 1; attempt <= maxFailoverAttempts; attempt++ {
		err := m.client.Failover(ctx)
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"chain":   m.chainName,
				"attempt": attempt,
			}).Info("Endpoint failover succeeded")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"chain":   m.chainName,
			"attempt": attempt,
			"error":   err,
		}).Error("Endpoint failover attempt failed")

		if attempt == maxFailoverAttempts {
			return errors.Wrapf(err, "failed to fail over chain %s", m.chainName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(failoverRetryDelay):
		}
	}
	return nil
}
