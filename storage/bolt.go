package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/ssnnd0/Saxon-Scout/logging"
)

// Bucket names for the server database.
const (
	SeasonsBucket = "seasons"
	EntriesBucket = "entries"
	UsersBucket   = "users"
	InvitesBucket = "invites"
)

// Open opens (creating if needed) the server's bbolt database and bootstraps
// all buckets. The whole server state lives in this one file, which is what
// makes the venue-laptop deployment a single copyable artifact.
func Open(dbPath string) (*bbolt.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{SeasonsBucket, EntriesBucket, UsersBucket, InvitesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	logging.Log.Infof("STORAGE: database ready at %s", dbPath)
	return db, nil
}
