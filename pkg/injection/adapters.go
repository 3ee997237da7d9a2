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

package injection

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kadirpekel/hector/pkg/artifact"
	"github.com/kadirpekel/hector/pkg/statestore"
	"github.com/kadirpekel/hector/pkg/vectorstore"
)

// StateScopeAdapter implements StateNamespace over a statestore.Store
// bound to one scope, so the scripting host never sees a raw Scope
// value -- Global, per-Session and no-prefix workflow-internal bindings
// are all just different Scope values passed at construction.
type StateScopeAdapter struct {
	store statestore.Store
	scope statestore.Scope
}

// NewStateScopeAdapter binds a StateNamespace to one scope.
func NewStateScopeAdapter(store statestore.Store, scope statestore.Scope) *StateScopeAdapter {
	return &StateScopeAdapter{store: store, scope: scope}
}

func (a *StateScopeAdapter) Read(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := a.store.Read(ctx, a.scope, key)
	return []byte(raw), ok, err
}

func (a *StateScopeAdapter) Write(ctx context.Context, key string, value []byte) error {
	return a.store.Write(ctx, a.scope, key, json.RawMessage(value))
}

func (a *StateScopeAdapter) Delete(ctx context.Context, key string) (bool, error) {
	return a.store.Delete(ctx, a.scope, key)
}

func (a *StateScopeAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	return a.store.ListKeys(ctx, a.scope, prefix)
}

var _ StateNamespace = (*StateScopeAdapter)(nil)

// VectorRAGAdapter implements RAGNamespace over a vectorstore.Store. It
// does not choose an embedding model itself -- Ingest and Search turn
// text into vectors through the embed func supplied by the caller,
// matching this package's don't-guess-the-embedding-model stance; the
// content string is stored verbatim in metadata under "content" for
// retrieval.
type VectorRAGAdapter struct {
	store *vectorstore.Store
	embed func(ctx context.Context, text string) ([]float32, error)
	scope statestore.Scope
}

// NewVectorRAGAdapter builds a RAGNamespace bound to one scope, using
// embed to turn text into vectors for both ingest and search.
func NewVectorRAGAdapter(store *vectorstore.Store, scope statestore.Scope, embed func(ctx context.Context, text string) ([]float32, error)) *VectorRAGAdapter {
	return &VectorRAGAdapter{store: store, embed: embed, scope: scope}
}

func (a *VectorRAGAdapter) Ingest(ctx context.Context, id string, content string, metadata map[string]any) error {
	values, err := a.embed(ctx, content)
	if err != nil {
		return err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["content"] = content
	return a.store.Insert(ctx, []vectorstore.VectorEntry{{
		ID: id, Values: values, Scope: a.scope, Metadata: metadata,
	}})
}

func (a *VectorRAGAdapter) Search(ctx context.Context, query string, k int, filter func(map[string]any) bool) ([]SearchResult, error) {
	values, err := a.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := a.store.SearchScoped(ctx, vectorstore.VectorQuery{Values: values, K: k, Filter: filter}, a.scope)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchResult{ID: h.Entry.ID, Score: h.Distance, Metadata: h.Entry.Metadata})
	}
	return out, nil
}

func (a *VectorRAGAdapter) DeleteScope(ctx context.Context, scope string) error {
	parts := strings.SplitN(scope, ":", 2)
	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}
	return a.store.DeleteScope(ctx, statestore.Scope{Kind: statestore.ScopeKind(parts[0]), ID: id})
}

var _ RAGNamespace = (*VectorRAGAdapter)(nil)

// ArtifactSessionAdapter implements SessionNamespace over
// artifact.Manager, covering create/delete. List/show need an enumerable
// session index and export/replay need a checkpoint format, so all four
// return a not-implemented error here.
type ArtifactSessionAdapter struct {
	manager *artifact.Manager
}

// NewArtifactSessionAdapter builds a SessionNamespace backed by an
// artifact.Manager.
func NewArtifactSessionAdapter(manager *artifact.Manager) *ArtifactSessionAdapter {
	return &ArtifactSessionAdapter{manager: manager}
}

func (a *ArtifactSessionAdapter) Create(ctx context.Context, name, createdBy string) (SessionInfo, error) {
	s, err := a.manager.CreateSession(ctx, name, createdBy)
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{ID: s.ID, Name: s.Name, CreatedBy: s.CreatedBy}, nil
}

func (a *ArtifactSessionAdapter) List(ctx context.Context) ([]SessionInfo, error) {
	return nil, errNotImplemented("session.list requires an enumerable session index")
}

func (a *ArtifactSessionAdapter) Show(ctx context.Context, id string) (SessionInfo, error) {
	return SessionInfo{}, errNotImplemented("session.show requires an enumerable session index")
}

func (a *ArtifactSessionAdapter) Delete(ctx context.Context, id string) error {
	return a.manager.DeleteSession(ctx, id)
}

func (a *ArtifactSessionAdapter) Export(ctx context.Context, id string) ([]byte, error) {
	return nil, errNotImplemented("session.export requires a checkpoint encoder")
}

func (a *ArtifactSessionAdapter) Replay(ctx context.Context, snapshot []byte) (SessionInfo, error) {
	return SessionInfo{}, errNotImplemented("session.replay requires a checkpoint decoder")
}

var _ SessionNamespace = (*ArtifactSessionAdapter)(nil)
