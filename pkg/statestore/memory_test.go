package statestore

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
)

func TestMemoryStore_ReadMissingReturnsFalse(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.Read(context.Background(), Agent("a1"), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected missing key to report ok=false")
	}
}

func TestMemoryStore_WriteReadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	scope := Agent("a1")

	if err := WriteValue(ctx, s, scope, "k", map[string]int{"x": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out map[string]int
	ok, err := ReadInto(ctx, s, scope, "k", &out)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if out["x"] != 1 {
		t.Fatalf("got %v", out)
	}
}

func TestMemoryStore_DeleteReportsExistence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	scope := Session("s1")

	existed, err := s.Delete(ctx, scope, "missing")
	if err != nil || existed {
		t.Fatalf("expected no prior key, got existed=%v err=%v", existed, err)
	}

	_ = s.Write(ctx, scope, "k", json.RawMessage(`1`))
	existed, err = s.Delete(ctx, scope, "k")
	if err != nil || !existed {
		t.Fatalf("expected existed=true, got %v err=%v", existed, err)
	}
}

func TestMemoryStore_ListKeysIsScopedAndPrefixed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Write(ctx, Agent("a1"), "foo/1", json.RawMessage(`1`))
	_ = s.Write(ctx, Agent("a1"), "foo/2", json.RawMessage(`1`))
	_ = s.Write(ctx, Agent("a1"), "bar/1", json.RawMessage(`1`))
	_ = s.Write(ctx, Agent("a2"), "foo/1", json.RawMessage(`1`))

	keys, err := s.ListKeys(ctx, Agent("a1"), "foo/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "foo/1" || keys[1] != "foo/2" {
		t.Fatalf("got %v", keys)
	}
}

func TestScope_CustomEmptyReservedPrefix(t *testing.T) {
	if got := Custom("").Prefix(); got != "custom::" {
		t.Fatalf("got %q", got)
	}
}
