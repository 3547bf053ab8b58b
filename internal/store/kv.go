package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/joeblew999/deckbind/runtime"
)

const (
	kvRecordPrefix = "decks/"
	kvIndexKey     = "deck-index"
)

// KVStore keeps records in a runtime.KVStore. The KV interface has no
// listing, so summaries are kept in an index value under deck-index,
// outside the decks/ record prefix.
type KVStore struct {
	kv runtime.KVStore
	mu sync.Mutex
}

// NewKVStore wraps kv
func NewKVStore(kv runtime.KVStore) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.kv.Get(ctx, kvRecordPrefix+id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return decodeRecord(data)
}

func (s *KVStore) Put(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Put(ctx, kvRecordPrefix+rec.ID, data); err != nil {
		return err
	}

	index, err := s.index(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range index {
		if index[i].ID == rec.ID {
			index[i] = rec.Summary()
			replaced = true
		}
	}
	if !replaced {
		index = append(index, rec.Summary())
	}
	data, err = json.Marshal(index)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, kvIndexKey, data)
}

func (s *KVStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	sortSummaries(index)
	return index, nil
}

func (s *KVStore) index(ctx context.Context) ([]Summary, error) {
	data, err := s.kv.Get(ctx, kvIndexKey)
	if err != nil {
		return nil, err
	}
	index := []Summary{}
	if len(data) == 0 {
		return index, nil
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode deck index: %w", err)
	}
	return index, nil
}
