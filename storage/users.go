package storage

import (
	"context"
	"encoding/json"

	"go.etcd.io/bbolt"

	"github.com/ssnnd0/Saxon-Scout/logging"
)

type UserStorage interface {
	GetAll(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type BoltUserStorage struct {
	DB *bbolt.DB
}

func (s *BoltUserStorage) GetAll(_ context.Context) ([]*User, error) {
	users := make([]*User, 0)
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(UsersBucket)).ForEach(func(_, v []byte) error {
			var u User
			if err := json.Unmarshal(v, &u); err != nil {
				logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
				return err
			}
			users = append(users, &u)
			return nil
		})
	})
	return users, err
}

func (s *BoltUserStorage) Get(_ context.Context, id string) (*User, error) {
	var user *User
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(UsersBucket)).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		user = &User{}
		return json.Unmarshal(data, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BoltUserStorage) FindByUsername(ctx context.Context, username string) (*User, error) {
	users, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *BoltUserStorage) Create(_ context.Context, user *User) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(UsersBucket))
		if bucket.Get([]byte(user.ID)) != nil {
			return ErrAlreadyExists
		}
		// Username uniqueness is checked here too so two concurrent creates
		// can't slip past the controller's pre-check.
		var taken bool
		_ = bucket.ForEach(func(_, v []byte) error {
			var u User
			if json.Unmarshal(v, &u) == nil && u.Username == user.Username {
				taken = true
			}
			return nil
		})
		if taken {
			return ErrAlreadyExists
		}
		return putUser(bucket, user)
	})
}

func (s *BoltUserStorage) Update(_ context.Context, user *User) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(UsersBucket))
		if bucket.Get([]byte(user.ID)) == nil {
			return ErrNotFound
		}
		return putUser(bucket, user)
	})
}

func (s *BoltUserStorage) Delete(_ context.Context, id string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(UsersBucket))
		if bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func putUser(bucket *bbolt.Bucket, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(user.ID), data)
}
