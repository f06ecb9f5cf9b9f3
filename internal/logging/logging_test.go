package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithJSON(true), WithWriter(&buf))
	logger.Info("hello", "session_id", "s1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "s1", rec["session_id"])
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf)).Debug("hidden")
	assert.Empty(t, buf.String())

	New(WithDebug(true), WithWriter(&buf)).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	New(WithFormat("pretty"), WithWriter(&buf)).Warn("careful", "n", 3)
	out := buf.String()
	assert.Contains(t, out, "careful")
	assert.True(t, strings.Contains(out, "n=3"), "output = %q", out)
}

func TestWithFormatText(t *testing.T) {
	var buf bytes.Buffer
	New(WithFormat("text"), WithWriter(&buf)).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
