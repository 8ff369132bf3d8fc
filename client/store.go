package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

const (
	bucketEntries      = "entries"
	bucketOfflineQueue = "offline_queue"
	bucketMeta         = "meta"

	metaKeyConfig = "scouting_config"
)

// EntryStore is the device-local collection of scouting entries. Entries
// live in memory for reads and are snapshotted to a bbolt file so the app
// survives restarts mid-event. Persistence failures are logged and
// swallowed: a scout at a venue must never lose the in-memory copy because
// the disk hiccuped.
type EntryStore struct {
	mu      sync.Mutex
	db      *bbolt.DB
	api     *API
	entries []*scoutform.Entry
}

// OpenStore opens (or creates) the store file at path and loads the
// persisted snapshot and offline queue.
func OpenStore(path string, api *API) (*EntryStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketEntries, bucketOfflineQueue, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare store buckets: %w", err)
	}

	s := &EntryStore{db: db, api: api}
	if err := s.loadEntries(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *EntryStore) Close() error {
	return s.db.Close()
}

func (s *EntryStore) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketEntries)).ForEach(func(_, v []byte) error {
			var entry scoutform.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt entry in store: %w", err)
			}
			s.entries = append(s.entries, &entry)
			return nil
		})
	})
}

// SubmitEntry tries the server first. When the server is reachable the
// canonical stored copy is kept locally as synced. When the transport fails
// the entry is kept as an unsynced local copy and pushed onto the offline
// queue for a later Sync. Server-side rejections (validation, auth) are
// returned as-is and nothing is stored.
func (s *EntryStore) SubmitEntry(ctx context.Context, entry *scoutform.Entry) (*scoutform.Entry, error) {
	stored, err := s.api.CreateEntry(ctx, entry)
	if err == nil {
		s.mu.Lock()
		s.entries = append(s.entries, stored)
		s.persistEntriesLocked()
		s.mu.Unlock()
		return stored, nil
	}

	if !IsOffline(err) {
		return nil, err
	}

	local := entry.Clone()
	if local.ID == "" {
		local.ID = uuid.NewString()
	}
	local.Synced = false

	s.mu.Lock()
	s.entries = append(s.entries, local)
	s.persistEntriesLocked()
	s.mu.Unlock()

	if qErr := s.enqueue(local); qErr != nil {
		logging.Log.Errorf("STORE: failed to queue entry %s for sync: %v", local.ID, qErr)
	}
	logging.Log.Infof("STORE: server unreachable, entry %s queued for sync", local.ID)
	return local, nil
}

// AddEntry stores an entry locally without talking to the server.
func (s *EntryStore) AddEntry(entry *scoutform.Entry) *scoutform.Entry {
	local := entry.Clone()
	if local.ID == "" {
		local.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, local)
	s.persistEntriesLocked()
	return local
}

// Entries returns a copy of every stored entry.
func (s *EntryStore) Entries() []*scoutform.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*scoutform.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Entry returns the entry with the given id, or nil.
func (s *EntryStore) Entry(id string) *scoutform.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EntriesByTeam returns entries for one team. Both bare numbers ("611") and
// event-style keys ("frc611") are accepted.
func (s *EntryStore) EntriesByTeam(team string) []*scoutform.Entry {
	number := strings.TrimPrefix(team, "frc")

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*scoutform.Entry
	for _, e := range s.entries {
		if e.TeamNumber == number {
			out = append(out, e)
		}
	}
	return out
}

// EntriesBySeason returns entries recorded for one season.
func (s *EntryStore) EntriesBySeason(seasonID string) []*scoutform.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*scoutform.Entry
	for _, e := range s.entries {
		if e.SeasonID == seasonID {
			out = append(out, e)
		}
	}
	return out
}

// DeleteEntry removes one entry by id.
func (s *EntryStore) DeleteEntry(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.persistEntriesLocked()
}

// ClearAll drops every entry and the offline queue.
func (s *EntryStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.persistEntriesLocked()
	if err := s.clearQueue(); err != nil {
		logging.Log.Errorf("STORE: failed to clear offline queue: %v", err)
	}
}

// OfflineQueue returns the queued unsynced entries in insertion order.
func (s *EntryStore) OfflineQueue() ([]*scoutform.Entry, error) {
	var queued []*scoutform.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketOfflineQueue)).ForEach(func(_, v []byte) error {
			var entry scoutform.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt queued entry: %w", err)
			}
			queued = append(queued, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return queued, nil
}

// SaveConfig caches a season's scouting config so the form engine can start
// without a network round trip.
func (s *EntryStore) SaveConfig(cfg *scoutform.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(metaKeyConfig), data)
	})
}

// LoadConfig returns the cached scouting config, or nil when none is cached.
func (s *EntryStore) LoadConfig() (*scoutform.Config, error) {
	var cfg *scoutform.Config
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketMeta)).Get([]byte(metaKeyConfig))
		if data == nil {
			return nil
		}
		cfg = &scoutform.Config{}
		return json.Unmarshal(data, cfg)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// persistEntriesLocked rewrites the entries bucket from the in-memory
// slice. Best effort: errors are logged, the in-memory state stays valid.
func (s *EntryStore) persistEntriesLocked() {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketEntries)); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(bucketEntries))
		if err != nil {
			return err
		}
		for i, entry := range s.entries {
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := bucket.Put(seqKey(uint64(i+1)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Log.Errorf("STORE: failed to persist entries: %v", err)
	}
}

func (s *EntryStore) enqueue(entry *scoutform.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketOfflineQueue))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(seqKey(seq), data)
	})
}

func (s *EntryStore) clearQueue() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketOfflineQueue)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketOfflineQueue))
		return err
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
