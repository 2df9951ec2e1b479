package pipeline

import (
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/chainchat-labs/chainchat/confirmgate"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// defaultActivityTimeout bounds detached activity-log writes.
const defaultActivityTimeout = 10 * time.Second

// Builder assembles a Pipeline from its collaborators. It allows setting
// various components of the pipeline such as intent parser, recipient
// resolver, cost estimator, transfer submitter, and stores.
type Builder struct {
	config    *types.ChainConfig
	parser    IntentParser
	resolver  RecipientResolver
	estimator CostEstimator
	balances  BalanceProvider
	gate      *confirmgate.Gate
	submitter TransferSubmitter
	tracker   StatusTracker
	store     TransactionStore
	recorder  ActivityRecorder
	logger    *logrus.Logger
}

// NewBuilder creates a new pipeline builder instance.
//
// Parameters:
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - *Builder: a new Builder instance.
func NewBuilder(config *types.ChainConfig, logger *logrus.Logger) *Builder {
	return &Builder{
		config: config,
		logger: logger,
	}
}

// WithIntentParser sets the intent parser implementation.
func (b *Builder) WithIntentParser(parser IntentParser) *Builder {
	b.parser = parser
	return b
}

// WithRecipientResolver sets the recipient resolver implementation.
func (b *Builder) WithRecipientResolver(resolver RecipientResolver) *Builder {
	b.resolver = resolver
	return b
}

// WithCostEstimator sets the transfer cost estimator implementation.
func (b *Builder) WithCostEstimator(estimator CostEstimator) *Builder {
	b.estimator = estimator
	return b
}

// WithBalanceProvider sets the balance provider implementation.
func (b *Builder) WithBalanceProvider(balances BalanceProvider) *Builder {
	b.balances = balances
	return b
}

// WithConfirmationGate sets the confirmation gate.
func (b *Builder) WithConfirmationGate(gate *confirmgate.Gate) *Builder {
	b.gate = gate
	return b
}

// WithTransferSubmitter sets the transfer submitter implementation.
func (b *Builder) WithTransferSubmitter(submitter TransferSubmitter) *Builder {
	b.submitter = submitter
	return b
}

// WithStatusTracker sets the transaction status tracker implementation.
func (b *Builder) WithStatusTracker(tracker StatusTracker) *Builder {
	b.tracker = tracker
	return b
}

// WithTransactionStore sets the transaction store implementation.
func (b *Builder) WithTransactionStore(store TransactionStore) *Builder {
	b.store = store
	return b
}

// WithActivityRecorder sets the activity recorder implementation.
func (b *Builder) WithActivityRecorder(recorder ActivityRecorder) *Builder {
	b.recorder = recorder
	return b
}

// Build creates a pipeline with the configured implementations.
//
// Returns:
// - *Pipeline: the assembled pipeline.
// - error: an error if a required collaborator is missing.
func (b *Builder) Build() (*Pipeline, error) {
	if b.config == nil {
		return nil, errors.New("chain config is required")
	}
	if b.parser == nil {
		return nil, errors.New("intent parser is required")
	}
	if b.resolver == nil {
		return nil, errors.New("recipient resolver is required")
	}
	if b.estimator == nil {
		return nil, errors.New("cost estimator is required")
	}
	if b.submitter == nil {
		return nil, errors.New("transfer submitter is required")
	}

	gate := b.gate
	if gate == nil {
		gate = confirmgate.NewGate(confirmgate.DefaultMaxAge, b.logger)
	}

	return &Pipeline{
		config:          b.config,
		parser:          b.parser,
		resolver:        b.resolver,
		estimator:       b.estimator,
		balances:        b.balances,
		gate:            gate,
		submitter:       b.submitter,
		tracker:         b.tracker,
		store:           b.store,
		recorder:        b.recorder,
		logger:          b.logger,
		activityTimeout: defaultActivityTimeout,
	}, nil
}
