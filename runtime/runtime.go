// Package runtime abstracts the platform services deckbind runs on:
// object storage for templates and exports, and key-value storage for decks.
package runtime

import (
	"context"
	"io"
)

// Storage abstracts file storage (R2, local filesystem, public HTTP buckets).
// Get returns io.EOF when the key does not exist.
type Storage interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string, delimiter string) (*ListResult, error)
	Delete(ctx context.Context, key string) error
}

// ListResult holds storage listing results
type ListResult struct {
	Keys              []string
	DelimitedPrefixes []string
}

// KVStore abstracts key-value storage. Get returns a nil value for missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Runtime holds the platform-specific services of one process
type Runtime struct {
	Templates Storage
	Exports   Storage
	KV        KVStore
}

// Current is set by platform-specific init
var Current *Runtime

// SetRuntime sets the global runtime
func SetRuntime(r *Runtime) {
	Current = r
}

// Templates returns the storage templates are loaded from
func Templates() Storage {
	if Current == nil || Current.Templates == nil {
		return &noopStorage{}
	}
	return Current.Templates
}

// Exports returns the storage rendered output is written to
func Exports() Storage {
	if Current == nil || Current.Exports == nil {
		return &noopStorage{}
	}
	return Current.Exports
}

// KV returns the KV store
func KV() KVStore {
	if Current == nil || Current.KV == nil {
		return &noopKV{}
	}
	return Current.KV
}

// noopStorage is used when storage isn't configured
type noopStorage struct{}

func (s *noopStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, io.EOF
}

func (s *noopStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (s *noopStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	return &ListResult{}, nil
}

func (s *noopStorage) Delete(ctx context.Context, key string) error {
	return nil
}

// noopKV is used when KV isn't configured
type noopKV struct{}

func (k *noopKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (k *noopKV) Put(ctx context.Context, key string, value []byte) error {
	return nil
}

func (k *noopKV) Delete(ctx context.Context, key string) error {
	return nil
}
