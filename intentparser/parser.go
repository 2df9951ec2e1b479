// Package intentparser turns free-form chat messages into typed,
// confidence-scored intents. It prefers an AI backend and degrades to a
// deterministic pattern-matching fallback whenever the backend is
// unavailable, unreliable, or not configured.
package intentparser

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// requestTimeout bounds every single AI attempt.
	requestTimeout = 30 * time.Second
	// maxRetries is the maximum number of retries after the first attempt.
	maxRetries = 3
	// retryBackoff is the fixed delay between retryable attempts.
	retryBackoff = 5 * time.Second
	// confidenceThreshold is the minimum AI confidence the parser trusts.
	// Anything below it is handled by the fallback parser instead.
	confidenceThreshold = 0.7
)

// Parser resolves chat messages into intents.
type Parser struct {
	chain   *types.ChainConfig
	keys    *KeyPool
	client  *http.Client
	baseURL string
	model   string
	logger  *logrus.Logger

	// Overridable in tests.
	timeout time.Duration
	backoff time.Duration
}

// NewParser creates a new intent parser.
//
// Parameters:
// - chain: the chain configuration, used for the native symbol and the
// supported token set.
// - keys: AI provider API keys; an empty list disables the AI path entirely.
// - baseURL: base URL of the OpenAI-compatible completion endpoint.
// - model: model name sent with every request.
// - logger: the logger for logging events.
func NewParser(chain *types.ChainConfig, keys []string, baseURL, model string, logger *logrus.Logger) *Parser {
	return &Parser{
		chain:   chain,
		keys:    NewKeyPool(keys),
		client:  &http.Client{},
		baseURL: baseURL,
		model:   model,
		logger:  logger,
		timeout: requestTimeout,
		backoff: retryBackoff,
	}
}

// Parse resolves a message into an intent. A nil intent with a nil error
// means the message matched nothing actionable; callers should reply
// conversationally. Parsing never mutates external state.
func (p *Parser) Parse(ctx context.Context, message string) (types.Intent, error) {
	if p.keys.Empty() {
		return p.Fallback(message), nil
	}

	content, err := p.completeWithRetry(ctx, message)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.WithError(err).Warn("AI intent resolution failed, using fallback parser")
		return p.Fallback(message), nil
	}

	intent, err := p.normalize(content)
	if err != nil {
		p.logger.WithError(err).Debug("AI response rejected, using fallback parser")
		return p.Fallback(message), nil
	}
	return intent, nil
}

// completeWithRetry issues AI requests with a bounded retry loop. Retryable
// failures rotate to the next key and wait a fixed backoff; non-retryable
// failures abort immediately.
func (p *Parser) completeWithRetry(ctx context.Context, message string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		content, err := p.complete(ctx, message)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}

		p.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"error":   err,
		}).Warn("Retryable AI provider failure, rotating key")
		p.keys.Rotate()

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.backoff):
		}
	}
	return "", errors.Wrap(lastErr, "AI retries exhausted")
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completion response the parser reads.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete issues one AI request bounded by the per-attempt timeout and
// returns the raw model output text.
func (p *Parser) complete(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(p.chain)},
			{Role: "user", Content: message},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.keys.Current())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &providerError{cause: err, retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable
		return "", &providerError{
			cause:     errors.Errorf("provider returned status %d", resp.StatusCode),
			retryable: retryable,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &providerError{cause: err, retryable: true}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrap(err, "failed to decode provider response")
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("provider response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// providerError marks an AI provider failure and whether it is worth a
// rotated retry (rate limit, service unavailable, timeout, transport error).
type providerError struct {
	cause     error
	retryable bool
}

func (e *providerError) Error() string { return e.cause.Error() }
func (e *providerError) Unwrap() error { return e.cause }

// isRetryable classifies a failure as retryable per the provider contract:
// 429, 503, timeouts and transport-level network errors.
func isRetryable(err error) bool {
	var pe *providerError
	if errors.As(err, &pe) {
		return pe.retryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
