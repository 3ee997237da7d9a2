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

package statestore

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
	"sync"
)

const shardCount = 32

// MemoryStore is a sharded, in-process Store. It never blocks across a
// suspension point: every lock is held only for a map read/write.
type MemoryStore struct {
	shards [shardCount]*shard
}

type shard struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{}
	for i := range ms.shards {
		ms.shards[i] = &shard{data: make(map[string]json.RawMessage)}
	}
	return ms
}

func (m *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()%shardCount]
}

func storageKey(scope Scope, key string) string {
	return scope.Prefix() + key
}

func (m *MemoryStore) Read(_ context.Context, scope Scope, key string) (json.RawMessage, bool, error) {
	sk := storageKey(scope, key)
	sh := m.shardFor(sk)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.data[sk]
	if !ok {
		return nil, false, nil
	}
	cp := make(json.RawMessage, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *MemoryStore) Write(_ context.Context, scope Scope, key string, value json.RawMessage) error {
	sk := storageKey(scope, key)
	sh := m.shardFor(sk)
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	sh.mu.Lock()
	sh.data[sk] = cp
	sh.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, scope Scope, key string) (bool, error) {
	sk := storageKey(scope, key)
	sh := m.shardFor(sk)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, existed := sh.data[sk]
	delete(sh.data, sk)
	return existed, nil
}

func (m *MemoryStore) ListKeys(_ context.Context, scope Scope, prefix string) ([]string, error) {
	full := scope.Prefix() + prefix
	var out []string
	for _, sh := range m.shards {
		sh.mu.RLock()
		for k := range sh.data {
			if strings.HasPrefix(k, full) {
				out = append(out, strings.TrimPrefix(k, scope.Prefix()))
			}
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
