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

// Package injection defines the surface a scripting host receives from
// the runtime: Tool, Agent, Workflow, State, RAG and Session namespaces.
// Each is a distinct, small interface -- per the design note against
// "any"-typed optional dependencies -- rather than one opaque bundle
// object the host downcasts at runtime.
package injection

import "context"

// ToolInfo describes a tool for discovery purposes.
type ToolInfo struct {
	Name        string
	Category    string
	Tags        []string
	Description string
}

// DiscoverQuery narrows Tool.Discover.
type DiscoverQuery struct {
	Category string
	Tag      string
}

// ToolNamespace is the `Tool.*` surface.
type ToolNamespace interface {
	List(ctx context.Context) ([]ToolInfo, error)
	Get(ctx context.Context, name string) (ToolInfo, bool, error)
	Invoke(ctx context.Context, name string, params map[string]any) (any, error)
	Exists(ctx context.Context, name string) (bool, error)
	Categories(ctx context.Context) ([]string, error)
	Discover(ctx context.Context, q DiscoverQuery) ([]ToolInfo, error)
}

// AgentNamespace is the `Agent.*` surface.
type AgentNamespace interface {
	Create(ctx context.Context, config map[string]any) (string, error)
	Execute(ctx context.Context, id string, input string) (string, error)
	Compose(ctx context.Context, ids []string) (string, error)
}

// WorkflowNamespace is the `Workflow.*` surface.
type WorkflowNamespace interface {
	Create(ctx context.Context, kind string, params map[string]any) (string, error)
	Execute(ctx context.Context, id string, input string) (string, error)
	Remove(ctx context.Context, id string) error
}

// StateNamespace is the `State.*` surface, bound to a single scope
// adapter (Global, per-Session, or no-prefix for workflow internals) at
// construction time.
type StateNamespace interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// SearchResult is one RAG.search hit.
type SearchResult struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// RAGNamespace is the `RAG.*` surface.
type RAGNamespace interface {
	Ingest(ctx context.Context, id string, content string, metadata map[string]any) error
	Search(ctx context.Context, query string, k int, filter func(map[string]any) bool) ([]SearchResult, error)
	DeleteScope(ctx context.Context, scope string) error
}

// SessionInfo summarizes a session for Session.list/show.
type SessionInfo struct {
	ID        string
	Name      string
	CreatedBy string
}

// SessionNamespace is the `Session.*` surface.
type SessionNamespace interface {
	Create(ctx context.Context, name, createdBy string) (SessionInfo, error)
	List(ctx context.Context) ([]SessionInfo, error)
	Show(ctx context.Context, id string) (SessionInfo, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id string) ([]byte, error)
	Replay(ctx context.Context, snapshot []byte) (SessionInfo, error)
}

// Bundle is what gets handed to a scripting host. Session, State and RAG
// are optional and left nil when the host has no use for them -- the
// host type-switches on interface satisfaction, not on an opaque "any".
type Bundle struct {
	Tool     ToolNamespace
	Agent    AgentNamespace
	Workflow WorkflowNamespace
	State    StateNamespace
	Session  SessionNamespace
	RAG      RAGNamespace
}
