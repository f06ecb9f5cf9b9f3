package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/ent0n29/interviewd/internal/observability"
)

// DefaultTranscriptTTL is the expiry applied on every transcript write.
const DefaultTranscriptTTL = time.Hour

// ShortTerm keeps the session transcript in an expiring cache entry.
//
// Every method swallows backend errors: failures are logged, counted and turned into a
// safe default. An empty transcript therefore means either "no history" or "cache down".
type ShortTerm struct {
	store   TranscriptStore
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewShortTerm(store TranscriptStore, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *ShortTerm {
	if ttl <= 0 {
		ttl = DefaultTranscriptTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShortTerm{
		store:   store,
		ttl:     ttl,
		logger:  logger.With("store", "short_term"),
		metrics: metrics,
	}
}

// LoadHistory returns the stored transcript, or an empty one when absent or unreadable.
func (s *ShortTerm) LoadHistory(ctx context.Context, sessionID string) Transcript {
	raw, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.fail("load", sessionID, err)
		return Transcript{}
	}
	if !ok {
		return Transcript{}
	}
	history, err := decodeTranscript(raw)
	if err != nil {
		s.fail("decode", sessionID, err)
		return Transcript{}
	}
	return history
}

// SaveHistory overwrites the transcript and resets its expiry.
func (s *ShortTerm) SaveHistory(ctx context.Context, sessionID string, history Transcript) bool {
	raw, err := encodeTranscript(history)
	if err != nil {
		s.fail("encode", sessionID, err)
		return false
	}
	if err := s.store.Set(ctx, sessionID, raw, s.ttl); err != nil {
		s.fail("save", sessionID, err)
		return false
	}
	return true
}

// AppendToHistory appends one user turn and one agent turn and saves the result.
// It is read-then-write: overlapping appends on the same session can drop one caller's turns.
func (s *ShortTerm) AppendToHistory(ctx context.Context, sessionID, userText, agentText string) (Transcript, bool) {
	history := s.LoadHistory(ctx, sessionID)
	updated := make(Transcript, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		Turn{Role: RoleUser, Text: userText},
		Turn{Role: RoleAgent, Text: agentText},
	)
	if !s.SaveHistory(ctx, sessionID, updated) {
		return nil, false
	}
	return updated, true
}

// ClearMemory removes the transcript entirely.
func (s *ShortTerm) ClearMemory(ctx context.Context, sessionID string) bool {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.fail("clear", sessionID, err)
		return false
	}
	return true
}

// HasMemory reports whether a transcript record exists.
func (s *ShortTerm) HasMemory(ctx context.Context, sessionID string) bool {
	_, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return ok
}

// Ping checks the backing cache when it supports a health probe.
func (s *ShortTerm) Ping(ctx context.Context) error {
	return pingStore(ctx, s.store)
}

func (s *ShortTerm) Close() error {
	return s.store.Close()
}

func (s *ShortTerm) fail(op, sessionID string, err error) {
	s.logger.Error("short-term memory operation failed", "op", op, "session_id", sessionID, "error", err)
	s.metrics.ObserveStoreError("short_term", op)
}
