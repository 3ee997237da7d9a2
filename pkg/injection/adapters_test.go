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
	"testing"

	"github.com/kadirpekel/hector/pkg/statestore"
	"github.com/kadirpekel/hector/pkg/vectorstore"
)

func TestStateScopeAdapter_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	adapter := NewStateScopeAdapter(statestore.NewMemoryStore(), statestore.Agent("a1"))

	if err := adapter.Write(ctx, "k", []byte(`"v"`)); err != nil {
		t.Fatal(err)
	}
	val, ok, err := adapter.Read(ctx, "k")
	if err != nil || !ok || string(val) != `"v"` {
		t.Fatalf("got %q ok=%v err=%v", val, ok, err)
	}
	keys, err := adapter.List(ctx, "")
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one key, got %v err=%v", keys, err)
	}
	if ok, err := adapter.Delete(ctx, "k"); err != nil || !ok {
		t.Fatalf("expected deletion, got ok=%v err=%v", ok, err)
	}
}

func TestVectorRAGAdapter_IngestAndSearch(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.New(statestore.NewMemoryStore(), vectorstore.DefaultIndexParams())
	scope := statestore.User("u1")
	embed := func(ctx context.Context, text string) ([]float32, error) {
		if text == "cats" {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}
	adapter := NewVectorRAGAdapter(store, scope, embed)

	if err := adapter.Ingest(ctx, "doc1", "cats", nil); err != nil {
		t.Fatal(err)
	}
	results, err := adapter.Search(ctx, "cats", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "doc1" {
		t.Fatalf("got %+v", results)
	}
	if results[0].Metadata["content"] != "cats" {
		t.Fatalf("expected content metadata to be preserved, got %+v", results[0].Metadata)
	}
}
