package memory

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgresStore(t *testing.T) *PostgresFactStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := NewPostgresFactStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresFactStoreMerge(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()
	sessionID := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), sessionID) })

	got, err := store.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.Merge(ctx, sessionID, FactMap{"name": "Ada", "city": "London"})
	require.NoError(t, err)
	merged, err := store.Merge(ctx, sessionID, FactMap{"city": "Paris"})
	require.NoError(t, err)
	assert.Equal(t, FactMap{"name": "Ada", "city": "Paris"}, merged)

	loaded, err := store.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, merged, loaded)
}

func TestPostgresFactStoreConcurrentMerges(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()
	sessionID := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), sessionID) })

	var wg sync.WaitGroup
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, err := store.Merge(ctx, sessionID, FactMap{k: k})
			assert.NoError(t, err)
		}(k)
	}
	wg.Wait()

	loaded, err := store.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, loaded, 8)
}
