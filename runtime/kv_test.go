package runtime

import (
	"context"
	"testing"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if v, err := kv.Get(ctx, "k"); err != nil || v != nil {
		t.Errorf("Get(missing) = %q, %v", v, err)
	}

	value := []byte("v1")
	if err := kv.Put(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'
	got, _ := kv.Get(ctx, "k")
	if string(got) != "v1" {
		t.Errorf("Get() = %q, stored value was aliased", got)
	}
	got[0] = 'y'
	if again, _ := kv.Get(ctx, "k"); string(again) != "v1" {
		t.Errorf("Get() = %q, returned value was aliased", again)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if v, _ := kv.Get(ctx, "k"); v != nil {
		t.Errorf("Get(deleted) = %q", v)
	}
}

func TestDefaultsWithoutRuntime(t *testing.T) {
	SetRuntime(nil)
	ctx := context.Background()
	if v, err := KV().Get(ctx, "k"); v != nil || err != nil {
		t.Errorf("noop KV Get() = %q, %v", v, err)
	}
	if _, err := Templates().Get(ctx, "k"); err == nil {
		t.Error("noop storage Get() should fail")
	}

	kv := NewMemoryKV()
	SetRuntime(&Runtime{KV: kv})
	defer SetRuntime(nil)
	if KV() != kv {
		t.Error("KV() did not return the configured store")
	}
}
