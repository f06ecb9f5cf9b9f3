package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ent0n29/interviewd/internal/config"
)

func TestBuildWithLocalBackends(t *testing.T) {
	cfg := config.Config{
		MetricsNamespace: "app_build_test_" + strings.ReplaceAll(time.Now().Format("150405.000000000"), ".", "_"),
		AllowedOrigins:   []string{"*"},
		DefaultSessionID: "voice-agent-session",
		LLMProvider:      "mock",
		LLMTemperature:   0.1,
		LLMTimeout:       time.Second,
		ShortTermBackend: "memory",
		ShortTermTTL:     time.Hour,
	}

	res, err := Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer res.Cleanup()

	if res.Provider != "mock" {
		t.Fatalf("Provider = %q, want mock", res.Provider)
	}

	ts := httptest.NewServer(res.API.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/text-interview", "application/json", strings.NewReader(`{"userQuestion":"hello"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, http.StatusOK, body)
	}
	if !strings.Contains(string(body), "I heard you: hello") {
		t.Fatalf("body = %s, want mock echo", body)
	}

	ready, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	ready.Body.Close()
	if ready.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d, want %d", ready.StatusCode, http.StatusOK)
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := config.Config{
		MetricsNamespace: "app_build_bad_" + strings.ReplaceAll(time.Now().Format("150405.000000000"), ".", "_"),
		LLMProvider:      "nope",
		ShortTermBackend: "memory",
		ShortTermTTL:     time.Hour,
	}
	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatalf("Build() error = nil, want error")
	}
}
