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
	"testing"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/statestore"
)

func TestManager_PutAndGetArtifactRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(statestore.NewMemoryStore(), DefaultQuota())

	s, err := m.CreateSession(ctx, "demo", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	a, err := m.PutArtifact(ctx, s.ID, "notes/report.txt", "text/plain", []byte("hello"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "notes_report.txt" {
		t.Fatalf("expected separator replaced, got %q", a.Name)
	}

	got, data, err := m.GetArtifact(ctx, s.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" || got.ID != a.ID {
		t.Fatalf("round trip mismatch: %+v %q", got, data)
	}
}

func TestManager_SanitizeRejectsTraversalAndAbsolute(t *testing.T) {
	ctx := context.Background()
	m := NewManager(statestore.NewMemoryStore(), DefaultQuota())
	s, _ := m.CreateSession(ctx, "demo", "user-1")

	for _, name := range []string{"../etc/passwd", "/etc/passwd", "C:\\windows", "s3://bucket/key"} {
		if _, err := m.PutArtifact(ctx, s.ID, name, "", []byte("x"), nil); err == nil {
			t.Fatalf("expected rejection for name %q", name)
		}
	}
}

func TestManager_QuotaExceededLeavesTotalsUnchanged(t *testing.T) {
	ctx := context.Background()
	m := NewManager(statestore.NewMemoryStore(), Quota{MaxStorageSizeBytes: 10, MaxArtifacts: 10, MaxArtifactSize: 10})
	s, _ := m.CreateSession(ctx, "demo", "user-1")

	if _, err := m.PutArtifact(ctx, s.ID, "small.txt", "", []byte("12345"), nil); err != nil {
		t.Fatal(err)
	}
	before, err := m.getUsage(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.PutArtifact(ctx, s.ID, "big.txt", "", []byte("1234567890"), nil)
	if !corerr.IsKind(err, corerr.QuotaExceeded) {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
	after, err := m.getUsage(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Fatalf("usage changed after rejected write: before=%+v after=%+v", before, after)
	}
}

func TestManager_DeleteSessionMakesArtifactsUnreachable(t *testing.T) {
	ctx := context.Background()
	m := NewManager(statestore.NewMemoryStore(), DefaultQuota())
	s, _ := m.CreateSession(ctx, "demo", "user-1")
	a, err := m.PutArtifact(ctx, s.ID, "report.txt", "", []byte("hello"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteSession(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.GetArtifact(ctx, s.ID, a.ID); !corerr.IsKind(err, corerr.NotFound) {
		t.Fatalf("expected NotFound after session delete, got %v", err)
	}
	if _, err := m.ListArtifacts(ctx, s.ID); !corerr.IsKind(err, corerr.NotFound) {
		t.Fatalf("expected NotFound listing deleted session, got %v", err)
	}
}

func TestManager_CrossSessionAccessReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewManager(statestore.NewMemoryStore(), DefaultQuota())
	sa, _ := m.CreateSession(ctx, "a", "user-a")
	sb, _ := m.CreateSession(ctx, "b", "user-b")
	a, err := m.PutArtifact(ctx, sa.ID, "secret.txt", "", []byte("hello"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.GetArtifact(ctx, sb.ID, a.ID); !corerr.IsKind(err, corerr.NotFound) {
		t.Fatalf("expected NotFound for cross-session access, got %v", err)
	}
}
