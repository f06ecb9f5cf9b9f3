package memory

import (
	"context"
	"log/slog"

	"github.com/ent0n29/interviewd/internal/observability"
)

// LongTerm keeps the durable fact map of a session.
// Like ShortTerm it never surfaces backend errors to callers.
type LongTerm struct {
	store   FactStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewLongTerm(store FactStore, logger *slog.Logger, metrics *observability.Metrics) *LongTerm {
	if logger == nil {
		logger = slog.Default()
	}
	return &LongTerm{
		store:   store,
		logger:  logger.With("store", "long_term"),
		metrics: metrics,
	}
}

// LoadLongTermMemory returns the stored facts, or an empty map when absent or on error.
func (l *LongTerm) LoadLongTermMemory(ctx context.Context, sessionID string) FactMap {
	facts, err := l.store.Load(ctx, sessionID)
	if err != nil {
		l.fail("load", sessionID, err)
		return FactMap{}
	}
	if facts == nil {
		return FactMap{}
	}
	return facts
}

// SaveLongTermMemory merges newFacts over the stored facts and returns the merged map.
// The returned map reflects the computed merge even when persisting it failed.
func (l *LongTerm) SaveLongTermMemory(ctx context.Context, sessionID string, newFacts FactMap) FactMap {
	if len(newFacts) == 0 {
		return l.LoadLongTermMemory(ctx, sessionID)
	}
	merged, err := l.store.Merge(ctx, sessionID, newFacts)
	if err != nil {
		l.fail("merge", sessionID, err)
		return MergeFacts(l.LoadLongTermMemory(ctx, sessionID), newFacts)
	}
	return merged
}

// Forget deletes the session's record. Only administrative tooling calls this.
func (l *LongTerm) Forget(ctx context.Context, sessionID string) error {
	if err := l.store.Delete(ctx, sessionID); err != nil {
		l.fail("delete", sessionID, err)
		return err
	}
	return nil
}

// Ping checks the backing store when it supports a health probe.
func (l *LongTerm) Ping(ctx context.Context) error {
	return pingStore(ctx, l.store)
}

func (l *LongTerm) Close() error {
	return l.store.Close()
}

func (l *LongTerm) fail(op, sessionID string, err error) {
	l.logger.Error("long-term memory operation failed", "op", op, "session_id", sessionID, "error", err)
	l.metrics.ObserveStoreError("long_term", op)
}
