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
	"sync"
	"time"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/statestore"
)

// tableScope is the statestore scope vector entries persist under. Each
// dimension gets its own key prefix so vectors of identical dimension
// share a table (spec 4.8's "content-addressable table ... grouped by
// dimension").
var tableScope = statestore.Custom("vectorstore")

type storedEntry struct {
	ID        string           `json:"id"`
	Values    []float32        `json:"values"`
	Scope     statestore.Scope `json:"scope"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Tombstone bool             `json:"tombstone,omitempty"`
}

// table is the persistence layer: a dimension-partitioned set of vector
// entries on top of statestore.Store.
type table struct {
	backend statestore.Store
	mu      sync.Mutex
}

func newTable(backend statestore.Store) *table {
	return &table{backend: backend}
}

func dimKey(dim int, id string) string {
	return fmt.Sprintf("d%d/%s", dim, id)
}

func dimIndexKey(dim int) string {
	return fmt.Sprintf("d%d/__ids__", dim)
}

func (t *table) put(ctx context.Context, e storedEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dim := len(e.Values)
	key := dimKey(dim, e.ID)
	if err := statestore.WriteValue(ctx, t.backend, tableScope, key, e); err != nil {
		return corerr.New(corerr.Storage, "vectorstore.table.put", err)
	}

	var ids []string
	idxKey := dimIndexKey(dim)
	if _, err := statestore.ReadInto(ctx, t.backend, tableScope, idxKey, &ids); err != nil {
		return corerr.New(corerr.Storage, "vectorstore.table.put", err)
	}
	for _, existing := range ids {
		if existing == e.ID {
			return nil
		}
	}
	ids = append(ids, e.ID)
	if err := statestore.WriteValue(ctx, t.backend, tableScope, idxKey, ids); err != nil {
		return corerr.New(corerr.Storage, "vectorstore.table.put", err)
	}
	return nil
}

func (t *table) get(ctx context.Context, dim int, id string) (*storedEntry, bool, error) {
	var e storedEntry
	ok, err := statestore.ReadInto(ctx, t.backend, tableScope, dimKey(dim, id), &e)
	if err != nil {
		return nil, false, corerr.New(corerr.Storage, "vectorstore.table.get", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

// tombstone marks id (of dimension dim) deleted without removing it from
// the index, so restart-time reconciliation can still see it happened.
func (t *table) tombstone(ctx context.Context, dim int, id string) error {
	e, ok, err := t.get(ctx, dim, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	e.Tombstone = true
	return t.put(ctx, *e)
}

// scanDimension returns every non-tombstoned entry of dimension dim,
// used both for index rebuild and for the scope-scan fallback.
func (t *table) scanDimension(ctx context.Context, dim int) ([]storedEntry, error) {
	var ids []string
	if _, err := statestore.ReadInto(ctx, t.backend, tableScope, dimIndexKey(dim), &ids); err != nil {
		return nil, corerr.New(corerr.Storage, "vectorstore.table.scan", err)
	}
	out := make([]storedEntry, 0, len(ids))
	for _, id := range ids {
		e, ok, err := t.get(ctx, dim, id)
		if err != nil {
			return nil, err
		}
		if ok && !e.Tombstone {
			out = append(out, *e)
		}
	}
	return out, nil
}

// scanAll scans every known dimension by probing the keys a caller
// registered via knownDimensions (the table itself has no global index
// of dimensions in use).
func (t *table) scanAll(ctx context.Context, dims []int) ([]storedEntry, error) {
	var out []storedEntry
	for _, dim := range dims {
		entries, err := t.scanDimension(ctx, dim)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}
