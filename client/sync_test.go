package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssnnd0/Saxon-Scout/api/models"
)

func TestSyncPushesQueueAndClearsIt(t *testing.T) {
	srv := newTestServer(t)

	// Entries were captured while the server was unreachable.
	store := openTestStore(t, NewAPI(offlineURL))
	_, err := store.SubmitEntry(context.Background(), draftEntry("611", "1"))
	require.NoError(t, err)
	_, err = store.SubmitEntry(context.Background(), draftEntry("254", "1"))
	require.NoError(t, err)

	queue, err := store.OfflineQueue()
	require.NoError(t, err)
	require.Len(t, queue, 2)

	// Connectivity is back: sync through a reachable API.
	coordinator := NewSyncCoordinator(store, NewAPI(srv.URL))
	result, err := coordinator.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)

	queue, err = store.OfflineQueue()
	require.NoError(t, err)
	assert.Empty(t, queue, "queue must be cleared after an acknowledged push")

	entries := store.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Synced, "local placeholders are replaced by canonical copies")
	}
}

func TestSyncFailureLeavesQueueIntact(t *testing.T) {
	store := openTestStore(t, NewAPI(offlineURL))
	_, err := store.SubmitEntry(context.Background(), draftEntry("611", "1"))
	require.NoError(t, err)

	before, err := store.OfflineQueue()
	require.NoError(t, err)
	require.Len(t, before, 1)

	// Still unreachable: the sync must fail without touching anything.
	coordinator := NewSyncCoordinator(store, NewAPI(offlineURL))
	_, err = coordinator.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, IsOffline(err))

	after, err := store.OfflineQueue()
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Synced)
}

func TestSyncServerErrorLeavesQueueIntact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scouting/bulk", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(&models.ErrorResponse{Error: "could not save entries"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := openTestStore(t, NewAPI(offlineURL))
	_, err := store.SubmitEntry(context.Background(), draftEntry("611", "1"))
	require.NoError(t, err)

	coordinator := NewSyncCoordinator(store, NewAPI(srv.URL))
	_, err = coordinator.Sync(context.Background())
	require.Error(t, err)

	queue, qErr := store.OfflineQueue()
	require.NoError(t, qErr)
	assert.Len(t, queue, 1)
}

func TestSyncEmptyQueueIsNoop(t *testing.T) {
	srv := newTestServer(t)
	store := openTestStore(t, NewAPI(srv.URL))

	coordinator := NewSyncCoordinator(store, NewAPI(srv.URL))
	result, err := coordinator.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Pushed)
}

func TestSyncKeepsAlreadySyncedEntries(t *testing.T) {
	srv := newTestServer(t)

	store := openTestStore(t, NewAPI(offlineURL))

	// One entry made it to the server earlier.
	synced := draftEntry("1678", "1")
	synced.ID = "already-synced"
	synced.Synced = true
	store.AddEntry(synced)

	_, err := store.SubmitEntry(context.Background(), draftEntry("611", "2"))
	require.NoError(t, err)

	coordinator := NewSyncCoordinator(store, NewAPI(srv.URL))
	_, err = coordinator.Sync(context.Background())
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.NotNil(t, store.Entry("already-synced"))
	for _, e := range entries {
		assert.True(t, e.Synced)
	}
}
