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

package backend

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemConfig configures the embedded, zero-dependency chromem-go
// backend. Suited for single-process fallback when no external vector
// database is configured.
type ChromemConfig struct {
	PersistPath string
	Compress    bool
}

// ChromemBackend implements Provider over chromem-go.
type ChromemBackend struct {
	db          *chromem.DB
	cfg         ChromemConfig
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewChromemBackend builds a ChromemBackend, optionally persisting to disk.
func NewChromemBackend(cfg ChromemConfig) (*ChromemBackend, error) {
	var db *chromem.DB
	var err error
	if cfg.PersistPath != "" {
		db, err = chromem.NewPersistentDB(cfg.PersistPath, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("backend: open persistent chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	return &ChromemBackend{db: db, cfg: cfg, collections: make(map[string]*chromem.Collection)}, nil
}

func (b *ChromemBackend) getCollection(name string) (*chromem.Collection, error) {
	b.mu.RLock()
	if c, ok := b.collections[name]; ok {
		b.mu.RUnlock()
		return c, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.collections[name]; ok {
		return c, nil
	}
	identityEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("backend: chromem embedding func invoked but vectors are precomputed")
	}
	col, err := b.db.GetOrCreateCollection(name, nil, identityEmbed)
	if err != nil {
		return nil, fmt.Errorf("backend: get or create collection %q: %w", name, err)
	}
	b.collections[name] = col
	return col, nil
}

func (b *ChromemBackend) Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error {
	col, err := b.getCollection(collection)
	if err != nil {
		return err
	}
	strMetadata := make(map[string]string, len(metadata))
	for k, v := range metadata {
		strMetadata[k] = fmt.Sprint(v)
	}
	doc := chromem.Document{ID: id, Metadata: strMetadata, Embedding: vector}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("backend: chromem upsert: %w", err)
	}
	return nil
}

func (b *ChromemBackend) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Match, error) {
	col, err := b.getCollection(collection)
	if err != nil {
		return nil, err
	}
	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: chromem search: %w", err)
	}
	out := make([]Match, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		out = append(out, Match{ID: r.ID, Score: r.Similarity, Metadata: metadata})
	}
	return out, nil
}

func (b *ChromemBackend) Delete(ctx context.Context, collection string, id string) error {
	col, err := b.getCollection(collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("backend: chromem delete: %w", err)
	}
	return nil
}

func (b *ChromemBackend) DeleteCollection(ctx context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db.DeleteCollection(collection)
	delete(b.collections, collection)
	return nil
}

func (b *ChromemBackend) Close() error { return nil }

var _ Provider = (*ChromemBackend)(nil)
