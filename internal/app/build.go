package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ent0n29/interviewd/internal/config"
	"github.com/ent0n29/interviewd/internal/httpapi"
	"github.com/ent0n29/interviewd/internal/interview"
	"github.com/ent0n29/interviewd/internal/llm"
	"github.com/ent0n29/interviewd/internal/memory"
	"github.com/ent0n29/interviewd/internal/observability"
	"github.com/ent0n29/interviewd/internal/prompt"
)

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Service   *interview.Service
	ShortTerm *memory.ShortTerm
	LongTerm  *memory.LongTerm
	Metrics   *observability.Metrics
	Provider  string

	// Cleanup should be called on shutdown to release external resources (cache, DB).
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	transcripts, err := memory.NewTranscriptStore(ctx, memory.CacheConfig{
		Backend:      cfg.ShortTermBackend,
		RedisURL:     cfg.RedisURL,
		UpstashURL:   cfg.UpstashURL,
		UpstashToken: cfg.UpstashToken,
	})
	if err != nil {
		return nil, fmt.Errorf("short-term store init failed: %w", err)
	}

	facts, err := memory.NewFactStore(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = transcripts.Close()
		return nil, fmt.Errorf("long-term store init failed: %w", err)
	}

	client, err := llm.NewClient(llm.Config{
		Mode:          cfg.LLMProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		GeminiBaseURL: cfg.GeminiBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Timeout:       cfg.LLMTimeout,
		RateLimitRPS:  cfg.LLMRateLimit,
	})
	if err != nil {
		_ = transcripts.Close()
		_ = facts.Close()
		return nil, fmt.Errorf("llm client init failed: %w", err)
	}
	if client.Provider() == "mock" {
		logger.Warn("no LLM API key configured, answering with the local mock")
	}
	logger.Info("backends ready",
		"llm_provider", client.Provider(),
		"llm_model", client.Model(),
		"short_term", fmt.Sprintf("%T", transcripts),
		"long_term", fmt.Sprintf("%T", facts),
	)

	shortTerm := memory.NewShortTerm(transcripts, cfg.ShortTermTTL, logger, metrics)
	longTerm := memory.NewLongTerm(facts, logger, metrics)
	completer := llm.NewCompleter(client, prompt.DefaultPersona, cfg.LLMTemperature, logger, metrics)
	service := interview.NewService(shortTerm, longTerm, completer, prompt.DefaultPersona, logger, metrics)

	api := httpapi.New(cfg, service, metrics, logger).WithReadiness(readiness{shortTerm, longTerm})

	cleanup := func() error {
		var errs []string
		if err := shortTerm.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := longTerm.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Service:   service,
		ShortTerm: shortTerm,
		LongTerm:  longTerm,
		Metrics:   metrics,
		Provider:  client.Provider(),
		Cleanup:   cleanup,
	}, nil
}

type readiness struct {
	shortTerm *memory.ShortTerm
	longTerm  *memory.LongTerm
}

func (r readiness) Ping(ctx context.Context) error {
	return errors.Join(r.shortTerm.Ping(ctx), r.longTerm.Ping(ctx))
}
