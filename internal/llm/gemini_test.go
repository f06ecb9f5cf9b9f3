package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClientComplete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello, "},{"text":"I'm Meghleena."}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("k-123", "", srv.URL+"/v1beta", 0)
	resp, err := c.Complete(context.Background(), Request{
		Purpose:     PurposeAnswer,
		System:      "persona",
		Prompt:      "persona\nUser: who are you?",
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, I'm Meghleena.", resp.Text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "persona\nUser: who are you?", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "persona", got.SystemInstruction.Parts[0].Text)
	assert.InDelta(t, 0.1, got.GenerationConfig.Temperature, 1e-9)
}

func TestGeminiClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", "m", srv.URL, 0)
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "error = %v", err)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatus())
	assert.Equal(t, "gemini", statusErr.Provider)
}

func TestGeminiClientNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := NewGeminiClient("k", "m", srv.URL, 0).Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}
