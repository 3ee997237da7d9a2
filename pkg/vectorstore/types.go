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

// Package vectorstore implements the hybrid HNSW+table vector store
// (spec 4.8): a content-addressable persistence table grouped by
// dimension, and a per-namespace in-memory HNSW index for ANN search,
// with pluggable external Backend adapters as alternates to the
// built-in index.
package vectorstore

import (
	"time"

	"github.com/kadirpekel/hector/pkg/statestore"
)

// Metric is the closed set of distance functions an index can use.
// Manhattan is not implemented natively and falls back to L2, per spec.
type Metric string

const (
	Cosine       Metric = "cosine"
	L2           Metric = "l2"
	InnerProduct Metric = "inner_product"
	Manhattan    Metric = "manhattan" // falls back to L2
)

// VectorEntry is one stored vector (spec 4.1 GLOSSARY / 4.8).
type VectorEntry struct {
	ID        string
	Values    []float32
	Scope     statestore.Scope
	Metadata  map[string]any
	CreatedAt time.Time
}

// VectorQuery is one K-NN search request.
type VectorQuery struct {
	Values []float32
	K      int
	Scope  *statestore.Scope
	Filter func(metadata map[string]any) bool
}

// ScoredEntry is one search result: an entry plus its distance to the
// query vector, ascending.
type ScoredEntry struct {
	Entry    VectorEntry
	Distance float32
}

// IndexParams configures one namespace's HNSW index.
type IndexParams struct {
	M              int
	EfConstruction int
	EfSearch       int
	MaxElements    int
	Metric         Metric
}

// DefaultIndexParams mirrors commonly-used HNSW defaults.
func DefaultIndexParams() IndexParams {
	return IndexParams{
		M:              16,
		EfConstruction: 200,
		EfSearch:       64,
		MaxElements:    100_000,
		Metric:         Cosine,
	}
}

// Namespace derives the HNSW namespace key for a scope (spec 4.8: "user:
// {id}", "tenant:{id}", "__global__" for Global).
func Namespace(scope statestore.Scope) string {
	switch scope.Kind {
	case statestore.ScopeGlobal:
		return "__global__"
	case statestore.ScopeUser:
		return "user:" + scope.ID
	default:
		return scope.String()
	}
}
