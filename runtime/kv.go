package runtime

import (
	"context"
	"errors"
	"io"
	"sync"
)

// MemoryKV is a process-local KVStore.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (k *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (k *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = append([]byte(nil), value...)
	return nil
}

func (k *MemoryKV) Delete(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

// StorageKV stores each value as an object in a Storage under prefix.
type StorageKV struct {
	storage Storage
	prefix  string
}

// NewStorageKV adapts storage to the KVStore interface
func NewStorageKV(storage Storage, prefix string) *StorageKV {
	return &StorageKV{storage: storage, prefix: prefix}
}

func (k *StorageKV) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := k.storage.Get(ctx, k.prefix+key)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (k *StorageKV) Put(ctx context.Context, key string, value []byte) error {
	return k.storage.Put(ctx, k.prefix+key, value, "application/json")
}

func (k *StorageKV) Delete(ctx context.Context, key string) error {
	return k.storage.Delete(ctx, k.prefix+key)
}
