// Package llm talks to hosted chat-completion APIs.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Purpose tags a completion call so providers and metrics can tell the two shapes apart.
type Purpose string

const (
	PurposeAnswer  Purpose = "answer"
	PurposeExtract Purpose = "extract"
)

// Request is one provider-neutral completion call.
type Request struct {
	Purpose     Purpose
	System      string
	Prompt      string
	Temperature float64
}

// Response carries the model's free text.
type Response struct {
	Text string
}

// Client is a single-shot text completion backend.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Provider() string
	Model() string
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Config controls client construction.
type Config struct {
	Mode string // auto|gemini|openai|mock

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	Timeout      time.Duration
	RateLimitRPS float64
}

func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	var (
		c   Client
		err error
	)
	switch mode {
	case "auto":
		c = newAutoClient(cfg)
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, fmt.Errorf("gemini API key is required for gemini mode")
		}
		c = NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.Timeout)
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, fmt.Errorf("openai API key is required for openai mode")
		}
		c = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout)
	case "mock":
		c = NewMockClient()
	default:
		err = fmt.Errorf("unsupported llm provider mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RateLimitRPS > 0 {
		c = NewRateLimited(c, cfg.RateLimitRPS)
	}
	return c, nil
}

func newAutoClient(cfg Config) Client {
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.Timeout)
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout)
	}
	return NewMockClient()
}
