package memory

import (
	"context"
	"time"
)

// Role tags the speaker of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the ordered list of turns for a session.
type Transcript []Turn

// FactMap holds durable facts extracted from a conversation.
type FactMap map[string]string

// TranscriptStore is the cache backend behind the short-term store.
// Get reports ok=false when the key is absent or expired.
type TranscriptStore interface {
	Get(ctx context.Context, key string) (raw []byte, ok bool, err error)
	Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FactStore is the durable backend behind the long-term store.
// Merge must apply newFacts over the stored facts atomically and return the result.
type FactStore interface {
	Load(ctx context.Context, sessionID string) (FactMap, error)
	Merge(ctx context.Context, sessionID string, newFacts FactMap) (FactMap, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Clone returns an independent copy of m, never nil.
func (m FactMap) Clone() FactMap {
	out := make(FactMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MergeFacts returns current with every key of next overriding it.
func MergeFacts(current, next FactMap) FactMap {
	out := current.Clone()
	for k, v := range next {
		out[k] = v
	}
	return out
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingStore(ctx context.Context, store any) error {
	if p, ok := store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
