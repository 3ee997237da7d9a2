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
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig configures the Qdrant backend.
type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// QdrantBackend implements Provider over a Qdrant gRPC client.
type QdrantBackend struct {
	client *qdrant.Client
}

// NewQdrantBackend dials a Qdrant server.
func NewQdrantBackend(cfg QdrantConfig) (*QdrantBackend, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: create qdrant client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &QdrantBackend{client: client}, nil
}

func (b *QdrantBackend) ensureCollection(ctx context.Context, collection string, dim int) error {
	exists, err := b.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("backend: check qdrant collection: %w", err)
	}
	if exists {
		return nil
	}
	err = b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("backend: create qdrant collection: %w", err)
	}
	return nil
}

func (b *QdrantBackend) Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error {
	if err := b.ensureCollection(ctx, collection, len(vector)); err != nil {
		return err
	}
	payload := make(map[string]*qdrant.Value, len(metadata))
	for k, v := range metadata {
		val, err := qdrant.NewValue(v)
		if err != nil {
			return fmt.Errorf("backend: convert qdrant payload value %q: %w", k, err)
		}
		payload[k] = val
	}
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(id),
		Vectors: qdrant.NewVectors(vector...),
		Payload: payload,
	}
	_, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: collection, Points: []*qdrant.PointStruct{point}})
	if err != nil {
		return fmt.Errorf("backend: qdrant upsert: %w", err)
	}
	return nil
}

func (b *QdrantBackend) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Match, error) {
	pointsClient := b.client.GetPointsClient()
	result, err := pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("backend: qdrant search: %w", err)
	}
	out := make([]Match, 0, len(result.Result))
	for _, p := range result.Result {
		metadata := make(map[string]any, len(p.Payload))
		for k, v := range p.Payload {
			metadata[k] = v.String()
		}
		out = append(out, Match{ID: pointIDString(p.Id), Score: p.Score, Metadata: metadata})
	}
	return out, nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

func (b *QdrantBackend) Delete(ctx context.Context, collection string, id string) error {
	_, err := b.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("backend: qdrant delete %s: %w", id, err)
	}
	return nil
}

func (b *QdrantBackend) DeleteCollection(ctx context.Context, collection string) error {
	if err := b.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("backend: qdrant delete collection: %w", err)
	}
	return nil
}

func (b *QdrantBackend) Close() error { return nil }

var _ Provider = (*QdrantBackend)(nil)
