package store

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, "task:web.1", []byte(`{"id":"web.1"}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := m.Get(ctx, "task:web.1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != `{"id":"web.1"}` {
		t.Errorf("Get() = %s, want original value", got)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "task:ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemory_PutOverwrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v1"))
	m.Put(ctx, "k", []byte("v2"))

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Get() = %s, want v2", got)
	}
}

func TestMemory_DeleteAbsentIsSuccess(t *testing.T) {
	m := NewMemory()
	if err := m.Delete(context.Background(), "never-stored"); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v"))
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestMemory_KeysPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, k := range []string{"task:web.1", "task:web.2", "task:api.1", "probe:health"} {
		m.Put(ctx, k, []byte("x"))
	}

	keys, err := m.Keys(ctx, "task:web.")
	if err != nil {
		t.Fatalf("Keys() error: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "task:web.1" || keys[1] != "task:web.2" {
		t.Errorf("Keys(task:web.) = %v, want [task:web.1 task:web.2]", keys)
	}

	all, err := m.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys(empty) error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Keys(\"\") returned %d keys, want 4", len(all))
	}
}

func TestMemory_ValueIsolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := []byte("abc")
	m.Put(ctx, "k", original)
	original[0] = 'X'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Error("store shares the caller's backing array on Put")
	}

	got[0] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Error("store hands out its own backing array on Get")
	}
}
