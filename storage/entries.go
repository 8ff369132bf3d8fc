package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

// dataPointsPerEntry is the rough number of observations a single entry
// contributes; the dashboard stat is entries times this constant.
const dataPointsPerEntry = 10

type EntryStorage interface {
	Create(ctx context.Context, entry *scoutform.Entry) (*scoutform.Entry, error)
	BulkCreate(ctx context.Context, entries []*scoutform.Entry) ([]*scoutform.Entry, error)
	FindBySeasonID(ctx context.Context, seasonID string) ([]*scoutform.Entry, error)
	FindByTeam(ctx context.Context, seasonID, teamNumber string) ([]*scoutform.Entry, error)
	FindByMatch(ctx context.Context, seasonID, matchNumber string) ([]*scoutform.Entry, error)
	DeleteBySeasonID(ctx context.Context, seasonID string) error
	Stats(ctx context.Context) (*ScoutingStats, error)
}

// BoltEntryStorage stores entries append-only under a monotonically
// increasing sequence key. Keying by sequence rather than entry id is
// deliberate: bulk delivery is at-least-once and duplicates are accepted
// rather than silently collapsed.
type BoltEntryStorage struct {
	DB *bbolt.DB
}

func (s *BoltEntryStorage) Create(_ context.Context, entry *scoutform.Entry) (*scoutform.Entry, error) {
	stored := prepareEntry(entry)
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		return appendEntry(tx.Bucket([]byte(EntriesBucket)), stored)
	})
	if err != nil {
		logging.Log.Errorf("SCOUTING: failed to create entry: %v", err)
		return nil, err
	}
	return stored, nil
}

func (s *BoltEntryStorage) BulkCreate(_ context.Context, entries []*scoutform.Entry) ([]*scoutform.Entry, error) {
	stored := make([]*scoutform.Entry, 0, len(entries))
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(EntriesBucket))
		for _, entry := range entries {
			e := prepareEntry(entry)
			if err := appendEntry(bucket, e); err != nil {
				return err
			}
			stored = append(stored, e)
		}
		return nil
	})
	if err != nil {
		logging.Log.Errorf("SCOUTING: bulk create failed: %v", err)
		return nil, err
	}
	return stored, nil
}

func (s *BoltEntryStorage) FindBySeasonID(ctx context.Context, seasonID string) ([]*scoutform.Entry, error) {
	return s.filter(func(e *scoutform.Entry) bool {
		return e.SeasonID == seasonID
	})
}

func (s *BoltEntryStorage) FindByTeam(_ context.Context, seasonID, teamNumber string) ([]*scoutform.Entry, error) {
	return s.filter(func(e *scoutform.Entry) bool {
		return e.SeasonID == seasonID && e.TeamNumber == teamNumber
	})
}

func (s *BoltEntryStorage) FindByMatch(_ context.Context, seasonID, matchNumber string) ([]*scoutform.Entry, error) {
	return s.filter(func(e *scoutform.Entry) bool {
		return e.SeasonID == seasonID && e.MatchNumber == matchNumber
	})
}

func (s *BoltEntryStorage) DeleteBySeasonID(_ context.Context, seasonID string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(EntriesBucket))
		var doomed [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var e scoutform.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				logging.Log.Errorf("SCOUTING: skipping unreadable entry during delete: %v", err)
				return nil
			}
			if e.SeasonID == seasonID {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range doomed {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		logging.Log.Infof("SCOUTING: deleted %d entries for season %s", len(doomed), seasonID)
		return nil
	})
}

func (s *BoltEntryStorage) Stats(_ context.Context) (*ScoutingStats, error) {
	stats := &ScoutingStats{}
	teams := make(map[string]bool)

	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(EntriesBucket)).ForEach(func(_, v []byte) error {
			var e scoutform.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return nil
			}
			stats.TotalMatches++
			teams[e.TeamNumber] = true
			if stats.LastUpdated == nil || e.Timestamp.After(*stats.LastUpdated) {
				ts := e.Timestamp
				stats.LastUpdated = &ts
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	stats.TotalTeams = len(teams)
	stats.DataPoints = stats.TotalMatches * dataPointsPerEntry
	return stats, nil
}

func (s *BoltEntryStorage) filter(keep func(*scoutform.Entry) bool) ([]*scoutform.Entry, error) {
	entries := make([]*scoutform.Entry, 0)
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(EntriesBucket)).ForEach(func(_, v []byte) error {
			var e scoutform.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				logging.Log.Errorf("SCOUTING: failed to unmarshal entry: %v", err)
				return nil
			}
			if keep(&e) {
				entries = append(entries, &e)
			}
			return nil
		})
	})
	return entries, err
}

// prepareEntry applies server-side defaults: an id when the client did not
// send one, a timestamp when missing, and synced always true since anything
// stored here is by definition on the server.
func prepareEntry(entry *scoutform.Entry) *scoutform.Entry {
	e := entry.Clone()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = nowUTC()
	}
	e.Synced = true
	return e
}

func nowUTC() time.Time { return time.Now().UTC() }

func appendEntry(bucket *bbolt.Bucket, entry *scoutform.Entry) error {
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return bucket.Put(key, data)
}
