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

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeConfig configures the managed Pinecone backend.
type PineconeConfig struct {
	APIKey    string
	Host      string
	IndexName string
}

// PineconeBackend implements Provider over the Pinecone managed service.
type PineconeBackend struct {
	client    *pinecone.Client
	indexName string
}

// NewPineconeBackend builds a PineconeBackend.
func NewPineconeBackend(cfg PineconeConfig) (*PineconeBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("backend: pinecone API key is required")
	}
	params := pinecone.NewClientParams{ApiKey: cfg.APIKey}
	if cfg.Host != "" {
		params.Host = cfg.Host
	}
	client, err := pinecone.NewClient(params)
	if err != nil {
		return nil, fmt.Errorf("backend: create pinecone client: %w", err)
	}
	indexName := cfg.IndexName
	if indexName == "" {
		indexName = "agentkit-index"
	}
	return &PineconeBackend{client: client, indexName: indexName}, nil
}

func (b *PineconeBackend) connect(ctx context.Context, collection string) (*pinecone.IndexConnection, error) {
	indexName := collection
	if indexName == "" {
		indexName = b.indexName
	}
	index, err := b.client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("backend: describe pinecone index %s: %w", indexName, err)
	}
	conn, err := b.client.Index(pinecone.NewIndexConnParams{Host: index.Host})
	if err != nil {
		return nil, fmt.Errorf("backend: connect pinecone index: %w", err)
	}
	return conn, nil
}

func (b *PineconeBackend) Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error {
	conn, err := b.connect(ctx, collection)
	if err != nil {
		return err
	}
	defer conn.Close()

	var pbMeta *pinecone.Metadata
	if len(metadata) > 0 {
		pbMeta, err = structpb.NewStruct(metadata)
		if err != nil {
			return fmt.Errorf("backend: convert pinecone metadata: %w", err)
		}
	}
	_, err = conn.UpsertVectors(ctx, []*pinecone.Vector{{Id: id, Values: vector, Metadata: pbMeta}})
	if err != nil {
		return fmt.Errorf("backend: pinecone upsert: %w", err)
	}
	return nil
}

func (b *PineconeBackend) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Match, error) {
	conn, err := b.connect(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: pinecone query: %w", err)
	}
	out := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		metadata := map[string]any{}
		if m.Vector != nil && m.Vector.Metadata != nil {
			for k, v := range m.Vector.Metadata.AsMap() {
				metadata[k] = v
			}
		}
		out = append(out, Match{ID: m.Vector.Id, Score: m.Score, Metadata: metadata})
	}
	return out, nil
}

func (b *PineconeBackend) Delete(ctx context.Context, collection string, id string) error {
	conn, err := b.connect(ctx, collection)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.DeleteVectorsById(ctx, []string{id}); err != nil {
		return fmt.Errorf("backend: pinecone delete: %w", err)
	}
	return nil
}

func (b *PineconeBackend) DeleteCollection(ctx context.Context, collection string) error {
	return b.client.DeleteIndex(ctx, collection)
}

func (b *PineconeBackend) Close() error { return nil }

var _ Provider = (*PineconeBackend)(nil)
