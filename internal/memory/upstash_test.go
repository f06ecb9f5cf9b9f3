package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstash implements the subset of the Upstash REST protocol the store uses.
type fakeUpstash struct {
	mu    sync.Mutex
	data  map[string]string
	ttls  map[string]int
	token string
}

func newFakeUpstash(token string) *fakeUpstash {
	return &fakeUpstash{data: map[string]string{}, ttls: map[string]int{}, token: token}
}

func (f *fakeUpstash) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}
	var cmd []string
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || len(cmd) == 0 || (cmd[0] != "PING" && len(cmd) < 2) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "ERR bad command"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch cmd[0] {
	case "PING":
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "PONG"})
	case "GET":
		v, ok := f.data[cmd[1]]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": nil})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": v})
	case "SET":
		f.data[cmd[1]] = cmd[2]
		if len(cmd) == 5 && cmd[3] == "EX" {
			f.ttls[cmd[1]], _ = strconv.Atoi(cmd[4])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "OK"})
	case "DEL":
		_, existed := f.data[cmd[1]]
		delete(f.data, cmd[1])
		n := 0
		if existed {
			n = 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": n})
	default:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "ERR unknown command"})
	}
}

func TestUpstashStoreRoundTrip(t *testing.T) {
	fake := newFakeUpstash("secret")
	ts := httptest.NewServer(fake)
	defer ts.Close()

	store, err := NewUpstashTranscriptStore(ts.URL, "secret")
	require.NoError(t, err)
	st := NewShortTerm(store, time.Hour, discardLogger(), nil)
	ctx := context.Background()

	assert.Empty(t, st.LoadHistory(ctx, testSession))

	_, ok := st.AppendToHistory(ctx, testSession, "q", "a")
	require.True(t, ok)
	assert.Equal(t, 3600, fake.ttls[testSession])
	assert.Equal(t, Transcript{{Role: RoleUser, Text: "q"}, {Role: RoleAgent, Text: "a"}}, st.LoadHistory(ctx, testSession))

	require.True(t, st.ClearMemory(ctx, testSession))
	assert.Empty(t, st.LoadHistory(ctx, testSession))
	assert.NoError(t, st.Ping(ctx))
}

func TestUpstashStoreSurfacesAuthErrors(t *testing.T) {
	ts := httptest.NewServer(newFakeUpstash("secret"))
	defer ts.Close()

	store, err := NewUpstashTranscriptStore(ts.URL, "wrong")
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), testSession)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestNewUpstashStoreRequiresCredentials(t *testing.T) {
	_, err := NewUpstashTranscriptStore("", "token")
	assert.Error(t, err)
	_, err = NewUpstashTranscriptStore("https://example.upstash.io", " ")
	assert.Error(t, err)
}
