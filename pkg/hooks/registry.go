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

package hooks

import (
	"fmt"
	"sort"
	"sync"
)

// entry pairs a hook with its registration sequence number so ties in
// priority break by registration order (a stable sort would also work,
// but the explicit sequence survives Unregister/re-Register cycles).
type entry struct {
	id       string
	hook     Hook
	priority int32
	seq      uint64
}

// Registry holds, per hook point, the ordered list of registered hooks.
// It is safe for concurrent use; the hot path (HooksFor) takes a read
// lock and returns a snapshot slice so callers never hold the lock across
// hook execution.
type Registry struct {
	mu      sync.RWMutex
	byPoint map[string][]entry
	nextSeq uint64
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byPoint: make(map[string][]entry)}
}

// Register adds a hook at the given point under id, returning an error if
// id is already registered at that point.
func (r *Registry) Register(point Point, id string, h Hook) error {
	if id == "" {
		return fmt.Errorf("hooks: id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := point.String()
	for _, e := range r.byPoint[key] {
		if e.id == id {
			return fmt.Errorf("hooks: %q already registered at point %s", id, key)
		}
	}

	r.nextSeq++
	e := entry{id: id, hook: h, priority: h.Metadata().Priority, seq: r.nextSeq}
	list := append(r.byPoint[key], e)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	r.byPoint[key] = list
	return nil
}

// Unregister removes the hook registered under id at point, if present.
func (r *Registry) Unregister(point Point, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := point.String()
	list := r.byPoint[key]
	for i, e := range list {
		if e.id == id {
			r.byPoint[key] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// HooksFor returns the ordered list of hooks registered at point: sorted
// ascending by priority, ties broken by registration order.
func (r *Registry) HooksFor(point Point) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byPoint[point.String()]
	out := make([]Hook, len(list))
	for i, e := range list {
		out[i] = e.hook
	}
	return out
}

// Count returns how many hooks are registered at point.
func (r *Registry) Count(point Point) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPoint[point.String()])
}
