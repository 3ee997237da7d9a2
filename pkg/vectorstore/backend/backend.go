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

// Package backend adapts external vector databases to a common Provider
// interface. The built-in HNSW+table vectorstore.Store does not route
// through Provider; code that wants a managed service calls a Provider
// directly.
// Grounded on the teacher's pkg/vector provider adapters.
package backend

import "context"

// Match mirrors vectorstore.ScoredEntry without importing vectorstore,
// keeping this package free of a dependency on the in-process index.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Provider is implemented by each concrete external backend.
type Provider interface {
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Match, error)
	Delete(ctx context.Context, collection string, id string) error
	DeleteCollection(ctx context.Context, collection string) error
	Close() error
}
