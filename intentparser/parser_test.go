package intentparser

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aiStub is an OpenAI-compatible completion endpoint for tests. Responses
// are served in order; the last one repeats.
type aiStub struct {
	mu        sync.Mutex
	responses []aiStubResponse
	attempts  int
	authSeen  []string
}

type aiStubResponse struct {
	status  int
	content string
}

func (s *aiStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		idx := s.attempts
		if idx >= len(s.responses) {
			idx = len(s.responses) - 1
		}
		resp := s.responses[idx]
		s.attempts++
		s.authSeen = append(s.authSeen, r.Header.Get("Authorization"))
		s.mu.Unlock()

		if resp.status != http.StatusOK {
			w.WriteHeader(resp.status)
			return
		}
		body := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": resp.content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

func (s *aiStub) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func newAIParser(t *testing.T, stub *aiStub, keys ...string) *Parser {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p := NewParser(newTestChain(), keys, server.URL, "test-model", logger)
	p.backoff = time.Millisecond
	return p
}

func TestParseAITransfer(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: `{"action":"transfer","amount":"50","token":"STT","recipient":"alice","confidence":0.95}`},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "could you move fifty somnia tokens over to alice please")
	require.NoError(t, err)
	require.NotNil(t, intent)

	transfer, ok := intent.(types.TransferIntent)
	require.True(t, ok)
	assert.Equal(t, "50", transfer.Amount)
	assert.Equal(t, "STT", transfer.Token)
	assert.Equal(t, "alice", transfer.Recipient)
	assert.InDelta(t, 0.95, transfer.Confidence(), 1e-9)
}

func TestParseAIFencedJSON(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: "```json\n{\"action\":\"balance\",\"token\":\"USDC\",\"confidence\":0.9}\n```"},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "usdc balance please")
	require.NoError(t, err)

	balance, ok := intent.(types.BalanceIntent)
	require.True(t, ok)
	assert.Equal(t, "USDC", balance.Token)
}

func TestParseAIAliasFolding(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: `{"action":"create_team","team_name":"devs","confidence":0.85}`},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "set up a devs team")
	require.NoError(t, err)

	team, ok := intent.(types.CreateTeamIntent)
	require.True(t, ok)
	assert.Equal(t, "devs", team.Name)
}

func TestParseLowConfidenceFallsBack(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: `{"action":"transfer","amount":"50","token":"STT","recipient":"alice","confidence":0.4}`},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)
	require.NotNil(t, intent)

	// The AI answer is below the threshold, so the deterministic parser
	// must produce the result instead.
	transfer, ok := intent.(types.TransferIntent)
	require.True(t, ok)
	assert.Equal(t, fallbackConfidence, transfer.Confidence())
}

func TestParseGarbageResponseFallsBack(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: "sure, sending it now!"},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, types.ActionTransfer, intent.Action())
}

func TestParseMissingActionFallsBack(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: `{"amount":"50","confidence":0.9}`},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, fallbackConfidence, intent.Confidence())
}

func TestParseRetryBound(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusTooManyRequests},
	}}
	p := newAIParser(t, stub, "key-1", "key-2")

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)

	// One initial attempt plus maxRetries retries, then fallback.
	assert.Equal(t, maxRetries+1, stub.attemptCount())
	require.NotNil(t, intent)
	assert.Equal(t, fallbackConfidence, intent.Confidence())
}

func TestParseRotatesKeyOnRetryableFailure(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusServiceUnavailable},
		{status: http.StatusOK, content: `{"action":"balance","confidence":0.9}`},
	}}
	p := newAIParser(t, stub, "key-1", "key-2")

	intent, err := p.Parse(context.Background(), "balance")
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, types.ActionBalance, intent.Action())

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Len(t, stub.authSeen, 2)
	assert.Equal(t, "Bearer key-1", stub.authSeen[0])
	assert.Equal(t, "Bearer key-2", stub.authSeen[1])
}

func TestParseNonRetryableAbortsImmediately(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusUnauthorized},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.attemptCount())
	require.NotNil(t, intent)
	assert.Equal(t, fallbackConfidence, intent.Confidence())
}

func TestParseWithoutKeysSkipsAI(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{{status: http.StatusOK, content: "{}"}}}
	p := newAIParser(t, stub)

	intent, err := p.Parse(context.Background(), "send 50 STT to alice")
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, 0, stub.attemptCount())
	assert.Equal(t, fallbackConfidence, intent.Confidence())
}

func TestParseBalanceDefaultsTokenToNative(t *testing.T) {
	stub := &aiStub{responses: []aiStubResponse{
		{status: http.StatusOK, content: `{"action":"balance","confidence":0.9}`},
	}}
	p := newAIParser(t, stub, "key-1")

	intent, err := p.Parse(context.Background(), "balance")
	require.NoError(t, err)

	balance, ok := intent.(types.BalanceIntent)
	require.True(t, ok)
	assert.Equal(t, "STT", balance.Token)
}

func TestKeyPoolRotation(t *testing.T) {
	pool := NewKeyPool([]string{"a", "b", "c"})
	assert.Equal(t, "a", pool.Current())
	assert.Equal(t, "b", pool.Rotate())
	assert.Equal(t, "c", pool.Rotate())
	assert.Equal(t, "a", pool.Rotate())
	assert.Equal(t, 3, pool.Size())
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool([]string{"", ""})
	assert.True(t, pool.Empty())
	assert.Equal(t, "", pool.Current())
	assert.Equal(t, "", pool.Rotate())
}
