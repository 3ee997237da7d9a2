// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/statestore"
)

// Store is the hybrid HNSW+table vector store (spec 4.8). Reads and
// writes against the persistence table always go through statestore.Store
// so any configured backend (in-memory or SQL) works unmodified; ANN
// search runs against an in-memory per-namespace HNSW index built on top.
type Store struct {
	table  *table
	params IndexParams

	mu         sync.RWMutex
	indices    map[string]*hnswIndex // namespace -> index
	dimsByNS   map[string]map[int]bool
}

// New builds a Store over backend with the given default index
// parameters (applied to every namespace's HNSW index).
func New(backend statestore.Store, params IndexParams) *Store {
	return &Store{
		table:    newTable(backend),
		params:   params,
		indices:  make(map[string]*hnswIndex),
		dimsByNS: make(map[string]map[int]bool),
	}
}

func (s *Store) indexFor(namespace string) *hnswIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[namespace]
	if !ok {
		idx = newHNSWIndex(s.params)
		s.indices[namespace] = idx
	}
	return idx
}

func (s *Store) trackDimension(namespace string, dim int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dims, ok := s.dimsByNS[namespace]
	if !ok {
		dims = make(map[int]bool)
		s.dimsByNS[namespace] = dims
	}
	dims[dim] = true
}

func (s *Store) knownDimensions(namespace string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dims := s.dimsByNS[namespace]
	out := make([]int, 0, len(dims))
	for d := range dims {
		out = append(out, d)
	}
	return out
}

// Insert dual-writes entries: first to the persistence table, then into
// the namespace HNSW index (spec 4.8's insert algorithm). A table write
// failure aborts before the index is touched; an index failure after a
// successful table write is tolerated since Reconcile can rebuild it.
func (s *Store) Insert(ctx context.Context, entries []VectorEntry) error {
	for _, e := range entries {
		if e.ID == "" {
			return corerr.Validationf("vectorstore.insert", "entry id must not be empty")
		}
		if len(e.Values) == 0 {
			return corerr.Validationf("vectorstore.insert", "entry %q has no values", e.ID)
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		if err := s.table.put(ctx, storedEntry{
			ID:        e.ID,
			Values:    e.Values,
			Scope:     e.Scope,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		}); err != nil {
			return err
		}

		ns := Namespace(e.Scope)
		s.trackDimension(ns, len(e.Values))
		s.indexFor(ns).Upsert(e.ID, e.Values)
	}
	return nil
}

// Search runs an unscoped ANN query across every namespace, merging and
// re-ranking results (used when VectorQuery.Scope is nil).
func (s *Store) Search(ctx context.Context, q VectorQuery) ([]ScoredEntry, error) {
	if q.Scope != nil {
		return s.SearchScoped(ctx, q, *q.Scope)
	}

	s.mu.RLock()
	namespaces := make([]string, 0, len(s.indices))
	for ns := range s.indices {
		namespaces = append(namespaces, ns)
	}
	s.mu.RUnlock()

	var all []ScoredEntry
	for _, ns := range namespaces {
		results, err := s.searchNamespace(ctx, ns, q)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	sortScored(all)
	if q.K > 0 && len(all) > q.K {
		all = all[:q.K]
	}
	return all, nil
}

// SearchScoped executes the ANN query against scope's namespace index,
// post-filtering by q.Filter, and falls back to a brute-force scan of
// the persistence table when the namespace index is empty or missing
// (spec 4.8).
func (s *Store) SearchScoped(ctx context.Context, q VectorQuery, scope statestore.Scope) ([]ScoredEntry, error) {
	ns := Namespace(scope)
	return s.searchNamespace(ctx, ns, q)
}

func (s *Store) searchNamespace(ctx context.Context, ns string, q VectorQuery) ([]ScoredEntry, error) {
	k := q.K
	if k <= 0 {
		k = 10
	}

	idx := s.indexFor(ns)
	var candidates []ScoredEntry
	if idx.Size() > 0 {
		candidates = idx.Search(q.Values, k*4) // widen before filtering
		candidates = s.hydrate(ctx, candidates)
	} else {
		entries, err := s.bruteForceScan(ctx, ns)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			candidates = append(candidates, ScoredEntry{
				Entry:    e,
				Distance: distance(e.Values, q.Values, s.params.Metric),
			})
		}
	}

	if q.Filter != nil {
		filtered := candidates[:0]
		for _, c := range candidates {
			if q.Filter(c.Entry.Metadata) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	sortScored(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// hydrate fills in scope/metadata for HNSW hits, which only carry id and
// vector.
func (s *Store) hydrate(ctx context.Context, hits []ScoredEntry) []ScoredEntry {
	out := make([]ScoredEntry, 0, len(hits))
	for _, h := range hits {
		dim := len(h.Entry.Values)
		stored, ok, err := s.table.get(ctx, dim, h.Entry.ID)
		if err != nil || !ok || stored.Tombstone {
			continue
		}
		out = append(out, ScoredEntry{
			Entry: VectorEntry{
				ID:        stored.ID,
				Values:    stored.Values,
				Scope:     stored.Scope,
				Metadata:  stored.Metadata,
				CreatedAt: stored.CreatedAt,
			},
			Distance: h.Distance,
		})
	}
	return out
}

func (s *Store) bruteForceScan(ctx context.Context, namespace string) ([]VectorEntry, error) {
	var out []VectorEntry
	for _, dim := range s.knownDimensions(namespace) {
		entries, err := s.table.scanDimension(ctx, dim)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if Namespace(e.Scope) != namespace {
				continue
			}
			out = append(out, VectorEntry{ID: e.ID, Values: e.Values, Scope: e.Scope, Metadata: e.Metadata, CreatedAt: e.CreatedAt})
		}
	}
	return out, nil
}

// Delete tombstones ids in the persistence table and removes them from
// their namespace index. The dimension of each id is looked up across
// every tracked dimension since Delete doesn't know it up front.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.mu.RLock()
	var allDims []int
	seen := map[int]bool{}
	for _, dims := range s.dimsByNS {
		for d := range dims {
			if !seen[d] {
				seen[d] = true
				allDims = append(allDims, d)
			}
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		for _, dim := range allDims {
			stored, ok, err := s.table.get(ctx, dim, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := s.table.tombstone(ctx, dim, id); err != nil {
				return err
			}
			s.indexFor(Namespace(stored.Scope)).Delete(id)
		}
	}
	return nil
}

// DeleteScope tombstones and de-indexes every entry in scope.
func (s *Store) DeleteScope(ctx context.Context, scope statestore.Scope) error {
	ns := Namespace(scope)
	entries, err := s.bruteForceScan(ctx, ns)
	if err != nil {
		return err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return s.Delete(ctx, ids)
}

// Reconcile rebuilds namespace's index from the persistence table,
// resolving the spec 4.8 requirement that a crash between the table
// write and the index upsert be detected and fixed on restart.
func (s *Store) Reconcile(ctx context.Context, scope statestore.Scope) error {
	ns := Namespace(scope)
	entries, err := s.bruteForceScan(ctx, ns)
	if err != nil {
		return err
	}
	fresh := newHNSWIndex(s.params)
	for _, e := range entries {
		fresh.Upsert(e.ID, e.Values)
		s.trackDimension(ns, len(e.Values))
	}
	s.mu.Lock()
	s.indices[ns] = fresh
	s.mu.Unlock()
	return nil
}

// snapshot is the self-describing blob persisted by Save/Load, keyed by
// {namespace}_{dimension}_{metric} per spec 4.8.
type snapshot struct {
	Namespace string        `json:"namespace"`
	Dimension int           `json:"dimension"`
	Metric    Metric        `json:"metric"`
	Entries   []storedEntry `json:"entries"`
}

var snapshotScope = statestore.Custom("vectorstore_snapshot")

// Save persists every namespace's index as a self-describing snapshot.
func (s *Store) Save(ctx context.Context, backend statestore.Store) error {
	s.mu.RLock()
	namespaces := make([]string, 0, len(s.dimsByNS))
	for ns := range s.dimsByNS {
		namespaces = append(namespaces, ns)
	}
	s.mu.RUnlock()

	for _, ns := range namespaces {
		for _, dim := range s.knownDimensions(ns) {
			entries, err := s.table.scanDimension(ctx, dim)
			if err != nil {
				return err
			}
			var nsEntries []storedEntry
			for _, e := range entries {
				if Namespace(e.Scope) == ns {
					nsEntries = append(nsEntries, e)
				}
			}
			snap := snapshot{Namespace: ns, Dimension: dim, Metric: s.params.Metric, Entries: nsEntries}
			key := fmt.Sprintf("%s_%d_%s", ns, dim, s.params.Metric)
			if err := statestore.WriteValue(ctx, backend, snapshotScope, key, snap); err != nil {
				return corerr.New(corerr.Storage, "vectorstore.save", err)
			}
		}
	}
	return nil
}

// Load rehydrates namespace/dimension/metric's snapshot, rebuilding both
// the persistence table entries and the HNSW index from it.
func (s *Store) Load(ctx context.Context, backend statestore.Store, namespace string, dimension int, metric Metric) error {
	key := fmt.Sprintf("%s_%d_%s", namespace, dimension, metric)
	var snap snapshot
	ok, err := statestore.ReadInto(ctx, backend, snapshotScope, key, &snap)
	if err != nil {
		return corerr.New(corerr.Storage, "vectorstore.load", err)
	}
	if !ok {
		return corerr.NotFoundf("vectorstore.load", "no snapshot for %s", key)
	}

	idx := newHNSWIndex(s.params)
	for _, e := range snap.Entries {
		if err := s.table.put(ctx, e); err != nil {
			return err
		}
		if !e.Tombstone {
			idx.Upsert(e.ID, e.Values)
		}
	}
	s.mu.Lock()
	s.indices[namespace] = idx
	s.mu.Unlock()
	s.trackDimension(namespace, dimension)
	return nil
}

func sortScored(entries []ScoredEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Distance != entries[j].Distance {
			return entries[i].Distance < entries[j].Distance
		}
		return entries[i].Entry.ID < entries[j].Entry.ID
	})
}
