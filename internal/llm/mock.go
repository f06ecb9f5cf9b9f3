package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient provides deterministic local replies when no provider key is configured.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	if req.Purpose == PurposeExtract {
		return Response{Text: "{}"}, nil
	}
	return Response{Text: buildMockReply(req.Prompt)}, nil
}

func (c *MockClient) Provider() string { return "mock" }

func (c *MockClient) Model() string { return "mock" }

// buildMockReply echoes the last "User:" line of the prompt.
func buildMockReply(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if q, ok := strings.CutPrefix(line, "User:"); ok {
			q = strings.TrimSpace(q)
			if q != "" {
				return fmt.Sprintf("I heard you: %s", q)
			}
		}
	}
	return "I am listening."
}
