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

// Package artifact implements session-scoped artifact storage with
// enforced quotas, layered on statestore.Store.
package artifact

import "time"

// SessionState is the lifecycle state of a Session.
type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionDeleted SessionState = "deleted"
)

// Session groups a set of artifacts under one owner.
type Session struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	CreatedBy string       `json:"created_by,omitempty"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	Artifacts []string     `json:"artifacts"`
}

// Artifact is a single stored blob plus its metadata.
type Artifact struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Name        string         `json:"name"`
	ContentType string         `json:"content_type,omitempty"`
	Size        int64          `json:"size"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Quota bounds how much a single session may store.
type Quota struct {
	MaxStorageSizeBytes int64
	MaxArtifacts        int
	MaxArtifactSize     int64
}

// DefaultQuota matches the conservative storage ceilings the teacher
// applies elsewhere in its session/document handling.
func DefaultQuota() Quota {
	return Quota{
		MaxStorageSizeBytes: 100 * 1024 * 1024,
		MaxArtifacts:        1000,
		MaxArtifactSize:     10 * 1024 * 1024,
	}
}

// usage tracks a session's accounted consumption against its Quota.
type usage struct {
	StorageBytes int64 `json:"storage_bytes"`
	Count        int   `json:"count"`
}
