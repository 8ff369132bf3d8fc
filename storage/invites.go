package storage

import (
	"context"
	"encoding/json"

	"go.etcd.io/bbolt"
)

type InviteStorage interface {
	GetAll(ctx context.Context) ([]*Invite, error)
	Get(ctx context.Context, code string) (*Invite, error)
	Put(ctx context.Context, invite *Invite) error
	MarkUsed(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
}

type BoltInviteStorage struct {
	DB *bbolt.DB
}

func (s *BoltInviteStorage) GetAll(_ context.Context) ([]*Invite, error) {
	invites := make([]*Invite, 0)
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(InvitesBucket)).ForEach(func(_, v []byte) error {
			var inv Invite
			if err := json.Unmarshal(v, &inv); err != nil {
				return err
			}
			invites = append(invites, &inv)
			return nil
		})
	})
	return invites, err
}

func (s *BoltInviteStorage) Get(_ context.Context, code string) (*Invite, error) {
	var invite *Invite
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(InvitesBucket)).Get([]byte(code))
		if data == nil {
			return ErrNotFound
		}
		invite = &Invite{}
		return json.Unmarshal(data, invite)
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *BoltInviteStorage) Put(_ context.Context, invite *Invite) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(invite)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(InvitesBucket)).Put([]byte(invite.Code), data)
	})
}

func (s *BoltInviteStorage) MarkUsed(_ context.Context, code string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(InvitesBucket))
		data := bucket.Get([]byte(code))
		if data == nil {
			return ErrNotFound
		}
		var invite Invite
		if err := json.Unmarshal(data, &invite); err != nil {
			return err
		}
		invite.Used = true
		updated, err := json.Marshal(&invite)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(code), updated)
	})
}

func (s *BoltInviteStorage) Delete(_ context.Context, code string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(InvitesBucket))
		if bucket.Get([]byte(code)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(code))
	})
}
