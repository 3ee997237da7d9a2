package vectorstore

import (
	"context"
	"testing"

	"github.com/kadirpekel/hector/pkg/statestore"
)

func fixtureEntries(scope statestore.Scope) []VectorEntry {
	return []VectorEntry{
		{ID: "a", Values: []float32{1, 0, 0}, Scope: scope, Metadata: map[string]any{"kind": "doc"}},
		{ID: "b", Values: []float32{0.9, 0.1, 0}, Scope: scope, Metadata: map[string]any{"kind": "doc"}},
		{ID: "c", Values: []float32{0, 1, 0}, Scope: scope, Metadata: map[string]any{"kind": "image"}},
	}
}

func TestStore_InsertAndSearchScoped(t *testing.T) {
	backend := statestore.NewMemoryStore()
	s := New(backend, DefaultIndexParams())
	ctx := context.Background()
	scope := statestore.User("u1")

	if err := s.Insert(ctx, fixtureEntries(scope)); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchScoped(ctx, VectorQuery{Values: []float32{1, 0, 0}, K: 2}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Entry.ID != "a" {
		t.Fatalf("expected exact match 'a' first, got %q", results[0].Entry.ID)
	}
	if results[0].Distance > results[1].Distance {
		t.Fatalf("results not ascending by distance: %+v", results)
	}
}

func TestStore_SearchFallsBackToBruteForceWhenIndexEmpty(t *testing.T) {
	backend := statestore.NewMemoryStore()
	s := New(backend, DefaultIndexParams())
	ctx := context.Background()
	scope := statestore.User("u1")

	if err := s.Insert(ctx, fixtureEntries(scope)); err != nil {
		t.Fatal(err)
	}

	// force an empty index for the namespace, as if the process restarted
	// without saving the in-memory HNSW state
	s.mu.Lock()
	s.indices[Namespace(scope)] = newHNSWIndex(s.params)
	s.mu.Unlock()

	results, err := s.SearchScoped(ctx, VectorQuery{Values: []float32{0, 1, 0}, K: 1}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Entry.ID != "c" {
		t.Fatalf("got %+v", results)
	}
}

func TestStore_DeleteMakesEntryUnreachable(t *testing.T) {
	backend := statestore.NewMemoryStore()
	s := New(backend, DefaultIndexParams())
	ctx := context.Background()
	scope := statestore.User("u1")

	if err := s.Insert(ctx, fixtureEntries(scope)); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchScoped(ctx, VectorQuery{Values: []float32{1, 0, 0}, K: 3}, scope)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Entry.ID == "a" {
			t.Fatal("deleted entry still reachable via search")
		}
	}
}

func TestStore_FilterAppliesMetadataPredicate(t *testing.T) {
	backend := statestore.NewMemoryStore()
	s := New(backend, DefaultIndexParams())
	ctx := context.Background()
	scope := statestore.User("u1")

	if err := s.Insert(ctx, fixtureEntries(scope)); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchScoped(ctx, VectorQuery{
		Values: []float32{1, 0, 0},
		K:      3,
		Filter: func(m map[string]any) bool { return m["kind"] == "image" },
	}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Entry.ID != "c" {
		t.Fatalf("got %+v", results)
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	backend := statestore.NewMemoryStore()
	s := New(backend, DefaultIndexParams())
	ctx := context.Background()
	scope := statestore.User("u1")

	if err := s.Insert(ctx, fixtureEntries(scope)); err != nil {
		t.Fatal(err)
	}
	snapshotBackend := statestore.NewMemoryStore()
	if err := s.Save(ctx, snapshotBackend); err != nil {
		t.Fatal(err)
	}

	fresh := New(statestore.NewMemoryStore(), DefaultIndexParams())
	if err := fresh.Load(ctx, snapshotBackend, Namespace(scope), 3, DefaultIndexParams().Metric); err != nil {
		t.Fatal(err)
	}

	results, err := fresh.SearchScoped(ctx, VectorQuery{Values: []float32{1, 0, 0}, K: 1}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Entry.ID != "a" {
		t.Fatalf("got %+v", results)
	}
}

func TestCosineDistance_IdenticalVectorsAreZero(t *testing.T) {
	d := cosineDistance([]float32{1, 2, 3}, []float32{1, 2, 3})
	if d > 1e-6 {
		t.Fatalf("got %v", d)
	}
}
