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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kadirpekel/hector/pkg/vectorstore"
)

// RAGCmd manages the vector store directly in terms of raw embeddings.
// No embedding model is wired into this CLI build, so callers supply
// vector values as a JSON float array; pkg/injection.VectorRAGAdapter is
// where a real embed func gets plugged in for scripting hosts.
type RAGCmd struct {
	Ingest RAGIngestCmd `cmd:"" help:"Insert a vector with metadata."`
	Search RAGSearchCmd `cmd:"" help:"Search the nearest vectors to a query."`
	Stats  RAGStatsCmd  `cmd:"" help:"Reconcile a scope's index; no entry count is reported."`
	Clear  RAGClearCmd  `cmd:"" help:"Delete every vector in a scope."`
	Index  RAGIndexCmd  `cmd:"" help:"Rebuild the in-memory index for a scope from persisted entries."`
}

func parseVector(raw string) ([]float32, error) {
	var floats []float64
	if err := json.Unmarshal([]byte(raw), &floats); err != nil {
		return nil, fmt.Errorf("vector must be a JSON float array: %w", err)
	}
	values := make([]float32, len(floats))
	for i, f := range floats {
		values[i] = float32(f)
	}
	return values, nil
}

type RAGIngestCmd struct {
	ScopeKind string `arg:"" help:"Scope kind."`
	ScopeID   string `arg:"" help:"Scope id."`
	ID        string `arg:"" help:"Vector entry id."`
	Vector    string `arg:"" help:"JSON float array, e.g. [0.1,0.2,0.3]."`
	Content   string `arg:"" optional:"" help:"Text content to stash in metadata."`
}

func (c *RAGIngestCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.ScopeKind, c.ScopeID)
	if err != nil {
		return err
	}
	values, err := parseVector(c.Vector)
	if err != nil {
		return err
	}
	entry := vectorstore.VectorEntry{
		ID:        c.ID,
		Values:    values,
		Scope:     scope,
		CreatedAt: time.Now(),
	}
	if c.Content != "" {
		entry.Metadata = map[string]any{"content": c.Content}
	}
	return rt.vectors.Insert(context.Background(), []vectorstore.VectorEntry{entry})
}

type RAGSearchCmd struct {
	ScopeKind string `arg:"" help:"Scope kind."`
	ScopeID   string `arg:"" help:"Scope id."`
	Vector    string `arg:"" help:"JSON float array query vector."`
	K         int    `arg:"" default:"5" help:"Number of neighbors to return."`
}

func (c *RAGSearchCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.ScopeKind, c.ScopeID)
	if err != nil {
		return err
	}
	values, err := parseVector(c.Vector)
	if err != nil {
		return err
	}
	hits, err := rt.vectors.SearchScoped(context.Background(), vectorstore.VectorQuery{
		Values: values,
		K:      c.K,
	}, scope)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Printf("%s\t%.4f\t%v\n", h.Entry.ID, h.Distance, h.Entry.Metadata)
	}
	return nil
}

type RAGStatsCmd struct {
	ScopeKind string `arg:"" help:"Scope kind."`
	ScopeID   string `arg:"" help:"Scope id."`
}

func (c *RAGStatsCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.ScopeKind, c.ScopeID)
	if err != nil {
		return err
	}
	if err := rt.vectors.Reconcile(context.Background(), scope); err != nil {
		return err
	}
	fmt.Println("reconciled")
	return nil
}

type RAGClearCmd struct {
	ScopeKind string `arg:"" help:"Scope kind."`
	ScopeID   string `arg:"" help:"Scope id."`
}

func (c *RAGClearCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.ScopeKind, c.ScopeID)
	if err != nil {
		return err
	}
	return rt.vectors.DeleteScope(context.Background(), scope)
}

type RAGIndexCmd struct {
	ScopeKind string `arg:"" help:"Scope kind."`
	ScopeID   string `arg:"" help:"Scope id."`
}

func (c *RAGIndexCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.ScopeKind, c.ScopeID)
	if err != nil {
		return err
	}
	return rt.vectors.Reconcile(context.Background(), scope)
}
