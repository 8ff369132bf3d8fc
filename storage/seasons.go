package storage

import (
	"context"
	"encoding/json"

	"go.etcd.io/bbolt"

	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

type SeasonStorage interface {
	GetAll(ctx context.Context) ([]*Season, error)
	Get(ctx context.Context, id string) (*Season, error)
	FindCurrent(ctx context.Context) (*Season, error)
	Create(ctx context.Context, season *Season) error
	Update(ctx context.Context, season *Season) error
	Delete(ctx context.Context, id string) error
	MergeTeams(ctx context.Context, id string, teams []Team) ([]Team, error)
	MergeMatches(ctx context.Context, id string, matches []Match) ([]Match, error)
	GetConfig(ctx context.Context, id string) (*scoutform.Config, error)
	PutConfig(ctx context.Context, id string, cfg *scoutform.Config) error
}

type BoltSeasonStorage struct {
	DB *bbolt.DB
}

func (s *BoltSeasonStorage) GetAll(_ context.Context) ([]*Season, error) {
	var seasons []*Season
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(SeasonsBucket)).ForEach(func(_, v []byte) error {
			var season Season
			if err := json.Unmarshal(v, &season); err != nil {
				logging.Log.Errorf("SEASON: failed to unmarshal season: %v", err)
				return err
			}
			seasons = append(seasons, &season)
			return nil
		})
	})
	return seasons, err
}

func (s *BoltSeasonStorage) Get(_ context.Context, id string) (*Season, error) {
	var season *Season
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(SeasonsBucket)).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		season = &Season{}
		return json.Unmarshal(data, season)
	})
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (s *BoltSeasonStorage) FindCurrent(ctx context.Context) (*Season, error) {
	seasons, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, season := range seasons {
		if season.IsCurrent {
			return season, nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new season. When the season is marked current, every other
// season loses the flag in the same transaction so the at-most-one invariant
// can't be observed broken.
func (s *BoltSeasonStorage) Create(_ context.Context, season *Season) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SeasonsBucket))
		if bucket.Get([]byte(season.ID)) != nil {
			return ErrAlreadyExists
		}
		if season.IsCurrent {
			if err := clearCurrent(bucket, season.ID); err != nil {
				return err
			}
		}
		return putSeason(bucket, season)
	})
}

func (s *BoltSeasonStorage) Update(_ context.Context, season *Season) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SeasonsBucket))
		if bucket.Get([]byte(season.ID)) == nil {
			return ErrNotFound
		}
		if season.IsCurrent {
			if err := clearCurrent(bucket, season.ID); err != nil {
				return err
			}
		}
		return putSeason(bucket, season)
	})
}

func (s *BoltSeasonStorage) Delete(_ context.Context, id string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SeasonsBucket))
		if bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// MergeTeams upserts teams into a season keyed by team number: an incoming
// team with a number already present replaces that record, everything else
// is preserved.
func (s *BoltSeasonStorage) MergeTeams(_ context.Context, id string, teams []Team) ([]Team, error) {
	var merged []Team
	err := s.mutateSeason(id, func(season *Season) {
		byNumber := make(map[string]int, len(season.Teams))
		for i, t := range season.Teams {
			byNumber[t.Number] = i
		}
		for _, t := range teams {
			if i, ok := byNumber[t.Number]; ok {
				season.Teams[i] = t
			} else {
				byNumber[t.Number] = len(season.Teams)
				season.Teams = append(season.Teams, t)
			}
		}
		merged = season.Teams
	})
	return merged, err
}

// MergeMatches upserts matches keyed by match number, same semantics as
// MergeTeams.
func (s *BoltSeasonStorage) MergeMatches(_ context.Context, id string, matches []Match) ([]Match, error) {
	var merged []Match
	err := s.mutateSeason(id, func(season *Season) {
		byNumber := make(map[string]int, len(season.Matches))
		for i, m := range season.Matches {
			byNumber[m.Number] = i
		}
		for _, m := range matches {
			if i, ok := byNumber[m.Number]; ok {
				season.Matches[i] = m
			} else {
				byNumber[m.Number] = len(season.Matches)
				season.Matches = append(season.Matches, m)
			}
		}
		merged = season.Matches
	})
	return merged, err
}

func (s *BoltSeasonStorage) GetConfig(ctx context.Context, id string) (*scoutform.Config, error) {
	season, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.ScoutingConfig == nil {
		return nil, ErrNotFound
	}
	return season.ScoutingConfig, nil
}

// PutConfig replaces the season's active scouting config. Entries submitted
// against the previous config keep their stored field values untouched.
func (s *BoltSeasonStorage) PutConfig(_ context.Context, id string, cfg *scoutform.Config) error {
	return s.mutateSeason(id, func(season *Season) {
		season.ScoutingConfig = cfg
	})
}

func (s *BoltSeasonStorage) mutateSeason(id string, mutate func(*Season)) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SeasonsBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var season Season
		if err := json.Unmarshal(data, &season); err != nil {
			return err
		}
		mutate(&season)
		return putSeason(bucket, &season)
	})
}

func clearCurrent(bucket *bbolt.Bucket, exceptID string) error {
	type update struct {
		key  []byte
		data []byte
	}
	var updates []update

	err := bucket.ForEach(func(k, v []byte) error {
		var season Season
		if err := json.Unmarshal(v, &season); err != nil {
			return err
		}
		if season.IsCurrent && season.ID != exceptID {
			season.IsCurrent = false
			data, err := json.Marshal(&season)
			if err != nil {
				return err
			}
			updates = append(updates, update{key: append([]byte(nil), k...), data: data})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, u := range updates {
		if err := bucket.Put(u.key, u.data); err != nil {
			return err
		}
	}
	return nil
}

func putSeason(bucket *bbolt.Bucket, season *Season) error {
	data, err := json.Marshal(season)
	if err != nil {
		logging.Log.Errorf("SEASON: failed to marshal season %s: %v", season.ID, err)
		return err
	}
	return bucket.Put([]byte(season.ID), data)
}
