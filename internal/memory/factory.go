package memory

import (
	"context"
	"fmt"
	"strings"
)

// CacheConfig selects the transcript cache backend.
type CacheConfig struct {
	Backend      string // auto|redis|upstash|memory
	RedisURL     string
	UpstashURL   string
	UpstashToken string
}

// NewTranscriptStore creates the configured cache backend. In auto mode it prefers the
// Upstash REST API, then Redis, then an in-memory cache.
func NewTranscriptStore(ctx context.Context, cfg CacheConfig) (TranscriptStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "auto"
	}

	switch backend {
	case "auto":
		if strings.TrimSpace(cfg.UpstashURL) != "" && strings.TrimSpace(cfg.UpstashToken) != "" {
			return NewUpstashTranscriptStore(cfg.UpstashURL, cfg.UpstashToken)
		}
		if strings.TrimSpace(cfg.RedisURL) != "" {
			return NewRedisTranscriptStore(ctx, cfg.RedisURL)
		}
		return NewInMemoryTranscriptStore(), nil
	case "upstash":
		return NewUpstashTranscriptStore(cfg.UpstashURL, cfg.UpstashToken)
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("redis url is required for redis backend")
		}
		return NewRedisTranscriptStore(ctx, cfg.RedisURL)
	case "memory":
		return NewInMemoryTranscriptStore(), nil
	default:
		return nil, fmt.Errorf("unsupported short-term backend %q", cfg.Backend)
	}
}

// NewFactStore creates a postgres-backed store when configured, otherwise in-memory.
func NewFactStore(ctx context.Context, databaseURL string) (FactStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryFactStore(), nil
	}
	return NewPostgresFactStore(ctx, databaseURL)
}
