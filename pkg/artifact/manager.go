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

package artifact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/statestore"
)

const (
	sessionsKeyPrefix = "session:"
	artifactKeyPrefix = "artifact:"
	usageKey          = "usage"
	contentKeyPrefix  = "content:"
)

// scope is the one statestore.Scope artifact storage lives under,
// independent of the session/agent scopes the runtime uses elsewhere --
// artifacts are addressed by session id inside the stored key, not by
// statestore.Scope, since cross-session isolation here is enforced by
// the manager itself (see GetArtifact) rather than by the isolation
// manager.
var scope = statestore.Custom("artifact")

// Manager implements session-scoped artifact storage with quota
// enforcement, grounded on the shape of the teacher's pkg/session
// manager (a statestore.Store-backed registry keyed by id) generalized
// from conversation state to binary artifacts.
type Manager struct {
	store statestore.Store
	quota Quota
	mu    sync.Mutex
}

// NewManager builds a Manager with the given quota applied uniformly to
// every session.
func NewManager(store statestore.Store, quota Quota) *Manager {
	return &Manager{store: store, quota: quota}
}

// CreateSession registers a new session and returns it.
func (m *Manager) CreateSession(ctx context.Context, name, createdBy string) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: createdBy,
		State:     SessionActive,
		CreatedAt: time.Now(),
		Artifacts: []string{},
	}
	if err := statestore.WriteValue(ctx, m.store, scope, sessionsKeyPrefix+s.ID, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) getSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	ok, err := statestore.ReadInto(ctx, m.store, scope, sessionsKeyPrefix+id, &s)
	if err != nil {
		return nil, err
	}
	if !ok || s.State == SessionDeleted {
		return nil, corerr.NotFoundf("get_session", "session %q not found", id)
	}
	return &s, nil
}

// DeleteSession tombstones a session: its record flips to SessionDeleted
// and its artifact content is purged eagerly, so both get_artifact and
// list_artifacts treat it as gone immediately. The spec leaves
// purge-vs-tombstone to the implementation (§9); purging content here
// bounds storage growth instead of leaking deleted blobs indefinitely.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.getSession(ctx, id)
	if err != nil {
		return err
	}
	for _, artifactID := range s.Artifacts {
		_, _ = m.store.Delete(ctx, scope, contentKeyPrefix+artifactID)
		_, _ = m.store.Delete(ctx, scope, artifactKeyPrefix+artifactID)
	}
	_, _ = m.store.Delete(ctx, scope, usageKey+":"+id)
	s.State = SessionDeleted
	s.Artifacts = nil
	return statestore.WriteValue(ctx, m.store, scope, sessionsKeyPrefix+id, s)
}

func (m *Manager) getUsage(ctx context.Context, sessionID string) (usage, error) {
	var u usage
	_, err := statestore.ReadInto(ctx, m.store, scope, usageKey+":"+sessionID, &u)
	return u, err
}

// PutArtifact sanitizes name, enforces quota, and stores data under the
// session. Per-operation and aggregate checks both run before any write
// lands, so a rejected write leaves totals unchanged (P7).
func (m *Manager) PutArtifact(ctx context.Context, sessionID, name, contentType string, data []byte, metadata map[string]any) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cleanName, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	size := int64(len(data))
	if size == 0 {
		return nil, corerr.Validationf("put_artifact", "artifact %q has no content", cleanName)
	}
	if m.quota.MaxArtifactSize > 0 && size > m.quota.MaxArtifactSize {
		return nil, corerr.New(corerr.QuotaExceeded, "put_artifact",
			fmt.Errorf("artifact %q (%d bytes) exceeds per-artifact cap %d", cleanName, size, m.quota.MaxArtifactSize))
	}

	u, err := m.getUsage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if m.quota.MaxArtifacts > 0 && u.Count+1 > m.quota.MaxArtifacts {
		return nil, corerr.New(corerr.QuotaExceeded, "put_artifact", nil)
	}
	if m.quota.MaxStorageSizeBytes > 0 && u.StorageBytes+size > m.quota.MaxStorageSizeBytes {
		return nil, corerr.New(corerr.QuotaExceeded, "put_artifact", nil)
	}

	a := &Artifact{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Name:        cleanName,
		ContentType: contentType,
		Size:        size,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if err := statestore.WriteValue(ctx, m.store, scope, artifactKeyPrefix+a.ID, a); err != nil {
		return nil, err
	}
	if err := m.store.Write(ctx, scope, contentKeyPrefix+a.ID, data); err != nil {
		return nil, err
	}
	u.Count++
	u.StorageBytes += size
	if err := statestore.WriteValue(ctx, m.store, scope, usageKey+":"+sessionID, u); err != nil {
		return nil, err
	}
	session.Artifacts = append(session.Artifacts, a.ID)
	if err := statestore.WriteValue(ctx, m.store, scope, sessionsKeyPrefix+sessionID, session); err != nil {
		return nil, err
	}
	return a, nil
}

// GetArtifact resolves an artifact by id, scoped to sessionID. If the
// artifact belongs to a different session (or doesn't exist at all), it
// returns NotFound either way -- never PermissionDenied -- so a caller
// cannot distinguish "wrong session" from "never existed".
func (m *Manager) GetArtifact(ctx context.Context, sessionID, artifactID string) (*Artifact, []byte, error) {
	if _, err := m.getSession(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	var a Artifact
	ok, err := statestore.ReadInto(ctx, m.store, scope, artifactKeyPrefix+artifactID, &a)
	if err != nil {
		return nil, nil, err
	}
	if !ok || a.SessionID != sessionID {
		return nil, nil, corerr.NotFoundf("get_artifact", "artifact %q not found", artifactID)
	}
	raw, ok, err := m.store.Read(ctx, scope, contentKeyPrefix+artifactID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, corerr.NotFoundf("get_artifact", "artifact %q not found", artifactID)
	}
	return &a, []byte(raw), nil
}

// ListArtifacts lists every artifact belonging to sessionID.
func (m *Manager) ListArtifacts(ctx context.Context, sessionID string) ([]*Artifact, error) {
	session, err := m.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*Artifact, 0, len(session.Artifacts))
	for _, id := range session.Artifacts {
		var a Artifact
		ok, err := statestore.ReadInto(ctx, m.store, scope, artifactKeyPrefix+id, &a)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

// DeleteArtifact removes a single artifact, accounting its size back out
// of the session's usage.
func (m *Manager) DeleteArtifact(ctx context.Context, sessionID, artifactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, _, err := m.GetArtifact(ctx, sessionID, artifactID)
	if err != nil {
		return err
	}
	if _, err := m.store.Delete(ctx, scope, contentKeyPrefix+artifactID); err != nil {
		return err
	}
	if _, err := m.store.Delete(ctx, scope, artifactKeyPrefix+artifactID); err != nil {
		return err
	}
	session, err := m.getSession(ctx, sessionID)
	if err != nil {
		return err
	}
	filtered := session.Artifacts[:0]
	for _, id := range session.Artifacts {
		if id != artifactID {
			filtered = append(filtered, id)
		}
	}
	session.Artifacts = filtered
	if err := statestore.WriteValue(ctx, m.store, scope, sessionsKeyPrefix+sessionID, session); err != nil {
		return err
	}
	u, err := m.getUsage(ctx, sessionID)
	if err != nil {
		return err
	}
	u.Count--
	u.StorageBytes -= a.Size
	return statestore.WriteValue(ctx, m.store, scope, usageKey+":"+sessionID, u)
}
