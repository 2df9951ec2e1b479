package cmd

import (
	"context"

	"github.com/chainchat-labs/chainchat/chainclient"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/config"
	"github.com/chainchat-labs/chainchat/confirmgate"
	"github.com/chainchat-labs/chainchat/connectionmonitor"
	"github.com/chainchat-labs/chainchat/executor"
	"github.com/chainchat-labs/chainchat/intentparser"
	"github.com/chainchat-labs/chainchat/pipeline"
	"github.com/chainchat-labs/chainchat/resolver"
	"github.com/chainchat-labs/chainchat/store"
	"github.com/chainchat-labs/chainchat/wallet"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// app wires the configured collaborators into a running pipeline.
type app struct {
	cfg      *config.Config
	chain    *chainclient.Client
	monitor  *connectionmonitor.Monitor
	wallet   *wallet.KeyWallet
	pipeline *pipeline.Pipeline
	logger   *logrus.Logger
}

// emptyContacts serves resolution when no database is configured.
type emptyContacts struct{}

func (emptyContacts) Contacts(context.Context, string) ([]types.Contact, error) {
	return nil, nil
}

func newApp(ctx context.Context) (*app, error) {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	chainConfig := cfg.ChainConfig()

	chain, err := chainclient.NewClient(chainConfig, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to chain")
	}

	monitor := connectionmonitor.NewMonitor(chain, logger, chainConfig.Name)
	if err := monitor.Start(ctx); err != nil {
		chain.Close()
		return nil, err
	}

	w, err := wallet.NewKeyWallet(cfg.PrivateKey, chainConfig)
	if err != nil {
		monitor.Stop()
		chain.Close()
		return nil, err
	}

	var contacts resolver.ContactSource = emptyContacts{}
	var txStore pipeline.TransactionStore
	var recorder pipeline.ActivityRecorder
	if cfg.DatabaseURL != "" {
		s := store.NewStore(cfg.DatabaseURL)
		if err := s.Migrate(ctx); err != nil {
			monitor.Stop()
			chain.Close()
			return nil, errors.Wrap(err, "failed to prepare database")
		}
		contacts = s
		txStore = s
		recorder = s
	}

	parser := intentparser.NewParser(chainConfig, cfg.AIKeys, cfg.AIBaseURL, cfg.AIModel, logger)
	exec := executor.NewExecutor(chain, chainConfig, logger)
	tracker := executor.NewTracker(chain, chainConfig, logger)
	gate := confirmgate.NewGate(cfg.ConfirmationMaxAge, logger)

	builder := pipeline.NewBuilder(chainConfig, logger).
		WithIntentParser(parser).
		WithRecipientResolver(resolver.NewResolver(contacts, logger)).
		WithCostEstimator(chain).
		WithBalanceProvider(chain).
		WithConfirmationGate(gate).
		WithTransferSubmitter(exec).
		WithStatusTracker(tracker)
	if txStore != nil {
		builder = builder.WithTransactionStore(txStore).WithActivityRecorder(recorder)
	}

	p, err := builder.Build()
	if err != nil {
		monitor.Stop()
		chain.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		chain:    chain,
		monitor:  monitor,
		wallet:   w,
		pipeline: p,
		logger:   logger,
	}, nil
}

func (a *app) close() {
	a.monitor.Stop()
	a.chain.Close()
}
