package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientAutoFallsBackToMockWithoutKeys(t *testing.T) {
	c, err := NewClient(Config{Mode: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Provider())

	resp, err := c.Complete(context.Background(), Request{
		Purpose: PurposeAnswer,
		Prompt:  "persona\nUser: hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "I heard you: hello", resp.Text)
}

func TestNewClientAutoPrefersGemini(t *testing.T) {
	c, err := NewClient(Config{Mode: "", GeminiAPIKey: "g", OpenAIAPIKey: "o"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Provider())
	assert.Equal(t, DefaultGeminiModel, c.Model())
}

func TestNewClientExplicitModesRequireKeys(t *testing.T) {
	_, err := NewClient(Config{Mode: "gemini"})
	assert.Error(t, err)
	_, err = NewClient(Config{Mode: "openai"})
	assert.Error(t, err)
	_, err = NewClient(Config{Mode: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewClientWrapsRateLimiter(t *testing.T) {
	c, err := NewClient(Config{Mode: "mock", RateLimitRPS: 5})
	require.NoError(t, err)
	_, ok := c.(*RateLimited)
	assert.True(t, ok, "client type = %T, want *RateLimited", c)
	assert.Equal(t, "mock", c.Provider())
}

func TestRateLimitedHonoursContext(t *testing.T) {
	c := NewRateLimited(NewMockClient(), 0.001)
	// First call spends the single burst token.
	_, err := c.Complete(context.Background(), Request{Prompt: "User: a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, Request{Prompt: "User: b"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "rate limit"), "error = %v", err)
}

func TestMockExtractionReturnsEmptyObject(t *testing.T) {
	resp, err := NewMockClient().Complete(context.Background(), Request{Purpose: PurposeExtract})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Text)
}

func TestMockHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockClient().Complete(ctx, Request{Prompt: "User: x"})
	assert.True(t, errors.Is(err, context.Canceled))
}
