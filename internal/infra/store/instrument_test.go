package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestInstrument_Passthrough(t *testing.T) {
	kv := Instrument(NewMemory())
	ctx := context.Background()

	if err := kv.Put(ctx, "task:a", []byte("one")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, err := kv.Get(ctx, "task:a")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !bytes.Equal(got, []byte("one")) {
		t.Errorf("Get() = %q, want %q", got, "one")
	}

	keys, err := kv.Keys(ctx, "task:")
	if err != nil {
		t.Fatalf("Keys() error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "task:a" {
		t.Errorf("Keys() = %v, want [task:a]", keys)
	}

	if err := kv.Delete(ctx, "task:a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := kv.Ping(ctx); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestInstrument_PreservesNotFound(t *testing.T) {
	kv := Instrument(NewMemory())

	_, err := kv.Get(context.Background(), "task:missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
