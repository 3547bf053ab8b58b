package store

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketDecks = []byte("decks")

// BoltStore keeps records as JSON in a bbolt bucket
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates the decks bucket if needed
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDecks)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decks bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDecks).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	return rec, err
}

func (s *BoltStore) Put(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDecks).Put([]byte(rec.ID), data)
	})
}

func (s *BoltStore) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDecks).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("deck %s: %w", k, err)
			}
			out = append(out, rec.Summary())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Summary{}
	}
	sortSummaries(out)
	return out, nil
}
