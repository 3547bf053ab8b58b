//go:build cloudflare

package runtime

import (
	"context"

	"github.com/syumai/workers/cloudflare/kv"
)

// CloudflareKV implements KVStore using a Workers KV namespace binding
type CloudflareKV struct {
	namespace *kv.Namespace
}

// NewCloudflareKV opens the namespace bound as binding
func NewCloudflareKV(binding string) (*CloudflareKV, error) {
	ns, err := kv.NewNamespace(binding)
	if err != nil {
		return nil, err
	}
	return &CloudflareKV{namespace: ns}, nil
}

// Get maps a missing key (empty string) to a nil value
func (k *CloudflareKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := k.namespace.GetString(key, nil)
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, nil
	}
	return []byte(val), nil
}

func (k *CloudflareKV) Put(ctx context.Context, key string, value []byte) error {
	return k.namespace.PutString(key, string(value), nil)
}

func (k *CloudflareKV) Delete(ctx context.Context, key string) error {
	return k.namespace.Delete(key)
}
