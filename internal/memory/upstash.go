package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UpstashTranscriptStore talks to the Upstash Redis REST API.
// Each call POSTs a single command as a JSON array, e.g. ["SET","k","v","EX","3600"].
type UpstashTranscriptStore struct {
	url    string
	client *resty.Client
}

type upstashResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashTranscriptStore(restURL, token string) (*UpstashTranscriptStore, error) {
	restURL = strings.TrimRight(strings.TrimSpace(restURL), "/")
	if restURL == "" {
		return nil, fmt.Errorf("upstash REST url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("upstash REST token is required")
	}

	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetAuthToken(strings.TrimSpace(token))
	client.SetHeader("Content-Type", "application/json")

	return &UpstashTranscriptStore{url: restURL, client: client}, nil
}

func (s *UpstashTranscriptStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.do(ctx, "GET", key)
	if err != nil {
		return nil, false, err
	}
	if len(res) == 0 || string(res) == "null" {
		return nil, false, nil
	}
	var value string
	if err := json.Unmarshal(res, &value); err != nil {
		// Non-string results are handed over as-is and decoded by the caller.
		return res, true, nil
	}
	return []byte(value), true, nil
}

func (s *UpstashTranscriptStore) Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(raw)}
	if secs := int64(ttl / time.Second); secs > 0 {
		args = append(args, "EX", strconv.FormatInt(secs, 10))
	}
	_, err := s.do(ctx, args...)
	return err
}

func (s *UpstashTranscriptStore) Delete(ctx context.Context, key string) error {
	_, err := s.do(ctx, "DEL", key)
	return err
}

func (s *UpstashTranscriptStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, "PING")
	return err
}

func (s *UpstashTranscriptStore) Close() error { return nil }

func (s *UpstashTranscriptStore) do(ctx context.Context, command ...string) (json.RawMessage, error) {
	var out upstashResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(command).
		SetResult(&out).
		SetError(&out).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("upstash %s: %w", command[0], err)
	}
	if res.IsError() {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(res.String())
		}
		return nil, fmt.Errorf("upstash %s status %d: %s", command[0], res.StatusCode(), msg)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s: %s", command[0], out.Error)
	}
	return out.Result, nil
}
