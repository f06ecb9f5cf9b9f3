// Package interview runs one question through memory, the model and back into memory.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/interviewd/internal/llm"
	"github.com/ent0n29/interviewd/internal/memory"
	"github.com/ent0n29/interviewd/internal/observability"
	"github.com/ent0n29/interviewd/internal/policy"
	"github.com/ent0n29/interviewd/internal/prompt"
)

// ErrEmptyQuestion is returned by Ask before any store access when the question is blank.
var ErrEmptyQuestion = errors.New("userQuestion is required")

// Result is the outcome of one answered question.
type Result struct {
	TurnID     string
	Question   string
	Answer     string
	Extraction llm.Extraction
	Facts      memory.FactMap
	Persisted  bool
}

// Service wires the short-term and long-term stores to the completion client.
type Service struct {
	shortTerm *memory.ShortTerm
	longTerm  *memory.LongTerm
	completer *llm.Completer
	persona   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func NewService(
	shortTerm *memory.ShortTerm,
	longTerm *memory.LongTerm,
	completer *llm.Completer,
	persona string,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		shortTerm: shortTerm,
		longTerm:  longTerm,
		completer: completer,
		persona:   persona,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ask answers question in the context of sessionID's transcript and facts, then
// records the exchange and merges any extracted facts. Steps run strictly in order.
// Only a failed answer call is returned as an error; store and extraction failures
// degrade and are reported through Result.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, ErrEmptyQuestion
	}

	turnID := uuid.NewString()
	logger := s.logger.With("session_id", sessionID, "turn_id", turnID)
	start := time.Now()
	defer func() { s.metrics.ObserveStage(observability.StageRequestTotal, time.Since(start)) }()

	stage := time.Now()
	history := s.shortTerm.LoadHistory(ctx, sessionID)
	s.metrics.ObserveStage(observability.StageLoadHistory, time.Since(stage))

	stage = time.Now()
	facts := s.longTerm.LoadLongTermMemory(ctx, sessionID)
	s.metrics.ObserveStage(observability.StageLoadFacts, time.Since(stage))

	composed := prompt.WithQuestion(prompt.Compose(s.persona, history, facts), question)
	logger.Debug("prompt composed",
		"history_turns", len(history),
		"facts", len(facts),
		"question", policy.ForLog(question),
	)

	stage = time.Now()
	answer, err := s.completer.Answer(ctx, composed)
	s.metrics.ObserveStage(observability.StageAnswer, time.Since(stage))
	if err != nil {
		return Result{}, fmt.Errorf("answer question: %w", err)
	}

	stage = time.Now()
	_, persisted := s.shortTerm.AppendToHistory(ctx, sessionID, question, answer)
	s.metrics.ObserveStage(observability.StageAppendHistory, time.Since(stage))

	stage = time.Now()
	extraction := s.completer.ExtractFacts(ctx, question, answer)
	s.metrics.ObserveStage(observability.StageExtractFacts, time.Since(stage))
	if extraction.Outcome != llm.OutcomeOK && extraction.Outcome != llm.OutcomeEmpty {
		logger.Warn("fact extraction degraded", "outcome", extraction.Outcome, "error", extraction.Err)
	}

	stage = time.Now()
	merged := s.longTerm.SaveLongTermMemory(ctx, sessionID, extraction.Facts)
	s.metrics.ObserveStage(observability.StageMergeFacts, time.Since(stage))

	logger.Info("question answered",
		"answer", policy.ForLog(answer),
		"extraction", extraction.Outcome,
		"new_facts", len(extraction.Facts),
		"history_saved", persisted,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Result{
		TurnID:     turnID,
		Question:   question,
		Answer:     answer,
		Extraction: extraction,
		Facts:      merged,
		Persisted:  persisted,
	}, nil
}

// History returns the session transcript, empty when absent or unreadable.
func (s *Service) History(ctx context.Context, sessionID string) memory.Transcript {
	return s.shortTerm.LoadHistory(ctx, sessionID)
}

// HasHistory reports whether an unexpired transcript exists for the session.
func (s *Service) HasHistory(ctx context.Context, sessionID string) bool {
	return s.shortTerm.HasMemory(ctx, sessionID)
}

// Clear removes the session transcript and reports whether the store accepted it.
func (s *Service) Clear(ctx context.Context, sessionID string) bool {
	return s.shortTerm.ClearMemory(ctx, sessionID)
}

// Facts returns the durable facts for the session.
func (s *Service) Facts(ctx context.Context, sessionID string) memory.FactMap {
	return s.longTerm.LoadLongTermMemory(ctx, sessionID)
}

// Forget deletes the durable facts for the session.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	return s.longTerm.Forget(ctx, sessionID)
}

// Provider names the completion backend in use.
func (s *Service) Provider() string { return s.completer.Provider() }
