package client

import (
	"context"
	"fmt"

	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

// SyncCoordinator drains the offline queue into the server. Delivery is at
// least once: the queue is cleared only after the server acknowledges the
// whole batch, so a failure mid-flight means the next Sync resends
// everything and the server may store duplicates. Duplicate rows are
// cheaper than lost match data.
type SyncCoordinator struct {
	store *EntryStore
	api   *API
}

func NewSyncCoordinator(store *EntryStore, api *API) *SyncCoordinator {
	return &SyncCoordinator{store: store, api: api}
}

// SyncResult reports what one Sync pass did.
type SyncResult struct {
	Pushed int
}

// Sync pushes the entire offline queue in a single bulk request. On success
// the queue is cleared and the local unsynced placeholders are replaced with
// the server's canonical copies. On any failure the queue is left exactly as
// it was and the error is returned for the caller to retry later.
func (s *SyncCoordinator) Sync(ctx context.Context) (*SyncResult, error) {
	queued, err := s.store.OfflineQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if len(queued) == 0 {
		return &SyncResult{}, nil
	}

	resp, err := s.api.BulkCreateEntries(ctx, queued)
	if err != nil {
		return nil, fmt.Errorf("failed to push %d queued entries: %w", len(queued), err)
	}

	s.store.applySyncResult(resp.Entries)
	logging.Log.Infof("SYNC: pushed %d entries", len(queued))
	return &SyncResult{Pushed: len(queued)}, nil
}

// applySyncResult replaces local unsynced placeholders with the server's
// canonical batch and clears the queue. Entries that were already synced
// are untouched.
func (s *EntryStore) applySyncResult(canonical []*scoutform.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Synced {
			kept = append(kept, e)
		}
	}
	s.entries = append(kept, canonical...)
	s.persistEntriesLocked()

	if err := s.clearQueue(); err != nil {
		logging.Log.Errorf("SYNC: failed to clear offline queue: %v", err)
	}
}
