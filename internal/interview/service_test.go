package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/interviewd/internal/llm"
	"github.com/ent0n29/interviewd/internal/memory"
	"github.com/ent0n29/interviewd/internal/observability"
)

const testSession = "voice-agent-session"

type fakeClient struct {
	mu        sync.Mutex
	answer    string
	answerErr error
	extract   string
	prompts   []string
}

func (c *fakeClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, req.Prompt)
	if req.Purpose == llm.PurposeExtract {
		return llm.Response{Text: c.extract}, nil
	}
	if c.answerErr != nil {
		return llm.Response{}, c.answerErr
	}
	return llm.Response{Text: c.answer}, nil
}

func (c *fakeClient) Provider() string { return "fake" }
func (c *fakeClient) Model() string    { return "fake-1" }

type countingTranscripts struct {
	memory.TranscriptStore
	calls atomic.Int64
}

func (s *countingTranscripts) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.calls.Add(1)
	return s.TranscriptStore.Get(ctx, key)
}

func (s *countingTranscripts) Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	s.calls.Add(1)
	return s.TranscriptStore.Set(ctx, key, raw, ttl)
}

type countingFacts struct {
	memory.FactStore
	calls atomic.Int64
}

func (s *countingFacts) Load(ctx context.Context, id string) (memory.FactMap, error) {
	s.calls.Add(1)
	return s.FactStore.Load(ctx, id)
}

func (s *countingFacts) Merge(ctx context.Context, id string, f memory.FactMap) (memory.FactMap, error) {
	s.calls.Add(1)
	return s.FactStore.Merge(ctx, id, f)
}

var harnessSeq atomic.Int64

type harness struct {
	svc         *Service
	client      *fakeClient
	transcripts *countingTranscripts
	facts       *countingFacts
}

func newHarness(client *fakeClient) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(fmt.Sprintf("interview_test_%d_%d", time.Now().UnixNano(), harnessSeq.Add(1)))
	transcripts := &countingTranscripts{TranscriptStore: memory.NewInMemoryTranscriptStore()}
	facts := &countingFacts{FactStore: memory.NewInMemoryFactStore()}
	svc := NewService(
		memory.NewShortTerm(transcripts, time.Hour, logger, metrics),
		memory.NewLongTerm(facts, logger, metrics),
		llm.NewCompleter(client, "PERSONA", 0.1, logger, metrics),
		"PERSONA",
		logger,
		metrics,
	)
	return &harness{svc: svc, client: client, transcripts: transcripts, facts: facts}
}

func TestAskRejectsBlankQuestionWithoutStoreAccess(t *testing.T) {
	h := newHarness(&fakeClient{answer: "x", extract: "{}"})

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := h.svc.Ask(context.Background(), testSession, q)
		require.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Zero(t, h.transcripts.calls.Load())
	assert.Zero(t, h.facts.calls.Load())
	assert.Empty(t, h.client.prompts)
}

func TestAskRecordsExchangeAndMergesFacts(t *testing.T) {
	h := newHarness(&fakeClient{answer: "Nice to meet you, Asha.", extract: `{"user_name":"Asha"}`})
	ctx := context.Background()

	res, err := h.svc.Ask(ctx, testSession, "Hi, I'm Asha")
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you, Asha.", res.Answer)
	assert.Equal(t, llm.OutcomeOK, res.Extraction.Outcome)
	assert.True(t, res.Persisted)
	assert.NotEmpty(t, res.TurnID)
	assert.Equal(t, memory.FactMap{"user_name": "Asha"}, res.Facts)

	assert.Equal(t, memory.Transcript{
		{Role: memory.RoleUser, Text: "Hi, I'm Asha"},
		{Role: memory.RoleAgent, Text: "Nice to meet you, Asha."},
	}, h.svc.History(ctx, testSession))
	assert.Equal(t, memory.FactMap{"user_name": "Asha"}, h.svc.Facts(ctx, testSession))
}

func TestAskPromptCarriesHistoryAndFacts(t *testing.T) {
	h := newHarness(&fakeClient{answer: "second", extract: `{"city":"Pune"}`})
	ctx := context.Background()

	_, err := h.svc.Ask(ctx, testSession, "first question")
	require.NoError(t, err)
	_, err = h.svc.Ask(ctx, testSession, "second question")
	require.NoError(t, err)

	// prompts: answer#1, extract#1, answer#2, extract#2
	require.Len(t, h.client.prompts, 4)
	p := h.client.prompts[2]
	assert.True(t, strings.HasPrefix(p, "PERSONA"), "prompt = %q", p)
	assert.Contains(t, p, "User: first question\nAgent: second")
	assert.Contains(t, p, `Long-term facts: {"city":"Pune"}`)
	assert.True(t, strings.HasSuffix(p, "\nUser: second question"), "prompt = %q", p)
}

func TestAskProseExtractionLeavesFactsUntouched(t *testing.T) {
	h := newHarness(&fakeClient{answer: "Sure thing.", extract: "Here is what I learned: nothing much."})
	ctx := context.Background()
	_, err := h.facts.Merge(ctx, testSession, memory.FactMap{"user_name": "Asha"})
	require.NoError(t, err)

	res, err := h.svc.Ask(ctx, testSession, "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, "Sure thing.", res.Answer)
	assert.Equal(t, llm.OutcomeParseError, res.Extraction.Outcome)
	assert.Equal(t, memory.FactMap{"user_name": "Asha"}, h.svc.Facts(ctx, testSession))
}

func TestAskAnswerFailurePropagatesAndSkipsWrites(t *testing.T) {
	boom := errors.New("upstream 503")
	h := newHarness(&fakeClient{answerErr: boom})
	ctx := context.Background()

	_, err := h.svc.Ask(ctx, testSession, "hello?")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, h.svc.History(ctx, testSession))
	assert.Empty(t, h.svc.Facts(ctx, testSession))
}

func TestClearAndForget(t *testing.T) {
	h := newHarness(&fakeClient{answer: "ok", extract: `{"k":"v"}`})
	ctx := context.Background()
	_, err := h.svc.Ask(ctx, testSession, "q")
	require.NoError(t, err)

	assert.True(t, h.svc.HasHistory(ctx, testSession))
	assert.True(t, h.svc.Clear(ctx, testSession))
	assert.False(t, h.svc.HasHistory(ctx, testSession))
	assert.Empty(t, h.svc.History(ctx, testSession))
	assert.Equal(t, memory.FactMap{"k": "v"}, h.svc.Facts(ctx, testSession))

	require.NoError(t, h.svc.Forget(ctx, testSession))
	assert.Empty(t, h.svc.Facts(ctx, testSession))
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(&fakeClient{answer: "a", extract: `{"k":"v"}`})
	ctx := context.Background()
	_, err := h.svc.Ask(ctx, "alpha", "q")
	require.NoError(t, err)

	assert.Len(t, h.svc.History(ctx, "alpha"), 2)
	assert.Empty(t, h.svc.History(ctx, "beta"))
	assert.Empty(t, h.svc.Facts(ctx, "beta"))
}
