package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ent0n29/interviewd/internal/memory"
	"github.com/ent0n29/interviewd/internal/observability"
	"github.com/ent0n29/interviewd/internal/policy"
	"github.com/ent0n29/interviewd/internal/prompt"
	"github.com/ent0n29/interviewd/internal/reliability"
)

// Outcome describes how a fact extraction attempt ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeEmpty      Outcome = "empty"
	OutcomeParseError Outcome = "parse_error"
	OutcomeCallError  Outcome = "call_error"
)

// Extraction is the observable result of an extraction call. Facts is never nil.
type Extraction struct {
	Facts   memory.FactMap
	Outcome Outcome
	Raw     string
	Err     error
}

// Completer issues the two completion shapes the interview flow needs.
type Completer struct {
	client      Client
	persona     string
	temperature float64
	logger      *slog.Logger
	metrics     *observability.Metrics
}

func NewCompleter(client Client, persona string, temperature float64, logger *slog.Logger, metrics *observability.Metrics) *Completer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{
		client:      client,
		persona:     persona,
		temperature: temperature,
		logger:      logger,
		metrics:     metrics,
	}
}

// Answer sends the composed prompt with the persona as system instruction.
// Errors are returned unchanged to the caller.
func (c *Completer) Answer(ctx context.Context, composed string) (string, error) {
	resp, err := c.call(ctx, Request{
		Purpose:     PurposeAnswer,
		System:      c.persona,
		Prompt:      composed,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ExtractFacts asks the model for durable facts about one exchange. Any failure
// yields an empty fact map and a non-ok outcome instead of an error. The persona is
// not sent: the request is the fixed extraction template alone.
func (c *Completer) ExtractFacts(ctx context.Context, question, answer string) Extraction {
	resp, err := c.call(ctx, Request{
		Purpose:     PurposeExtract,
		Prompt:      prompt.ExtractionPrompt(question, answer),
		Temperature: c.temperature,
	})
	if err != nil {
		return c.finish(Extraction{Facts: memory.FactMap{}, Outcome: OutcomeCallError, Err: err})
	}

	facts, err := ParseFacts(resp.Text)
	if err != nil {
		c.logger.Warn("fact extraction returned unparseable output",
			"error", err,
			"raw", policy.ForLog(resp.Text),
		)
		return c.finish(Extraction{Facts: memory.FactMap{}, Outcome: OutcomeParseError, Raw: resp.Text, Err: err})
	}
	if len(facts) == 0 {
		return c.finish(Extraction{Facts: facts, Outcome: OutcomeEmpty, Raw: resp.Text})
	}
	return c.finish(Extraction{Facts: facts, Outcome: OutcomeOK, Raw: resp.Text})
}

// Provider reports the backing provider name.
func (c *Completer) Provider() string { return c.client.Provider() }

func (c *Completer) finish(e Extraction) Extraction {
	c.metrics.ObserveExtraction(string(e.Outcome))
	return e
}

func (c *Completer) call(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.client.Complete(ctx, req)
	elapsed := time.Since(start)
	c.metrics.ObserveLLMCall(c.client.Provider(), string(req.Purpose), elapsed)
	if err != nil {
		class := reliability.ClassifyError(err)
		c.metrics.ObserveLLMError(c.client.Provider(), class)
		c.logger.Error("completion call failed",
			"provider", c.client.Provider(),
			"model", c.client.Model(),
			"call", req.Purpose,
			"class", class,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return Response{}, fmt.Errorf("%s completion: %w", req.Purpose, err)
	}
	c.logger.Debug("completion call finished",
		"provider", c.client.Provider(),
		"call", req.Purpose,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}

// ErrEmptyOutput is returned by ParseFacts for blank model output.
var ErrEmptyOutput = errors.New("empty model output")

// ParseFacts parses extraction output as a JSON object, tolerating a surrounding
// markdown code fence.
func ParseFacts(text string) (memory.FactMap, error) {
	raw := stripCodeFence([]byte(text))
	if len(raw) == 0 {
		return nil, ErrEmptyOutput
	}
	return memory.FactsFromJSON(raw)
}

func stripCodeFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	// Drop an optional language tag such as "json".
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = bytes.TrimPrefix(b, []byte("json"))
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
