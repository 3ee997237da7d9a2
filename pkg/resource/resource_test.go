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

package resource

import (
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/corerr"
)

func TestTracker_RecordMemoryExceedsCap(t *testing.T) {
	tr := NewTracker(Limits{MaxMemoryBytes: 100})
	if err := tr.RecordMemory(50); err != nil {
		t.Fatal(err)
	}
	err := tr.RecordMemory(60)
	if !corerr.IsKind(err, corerr.QuotaExceeded) {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
}

func TestTracker_ConcurrentOpsCap(t *testing.T) {
	tr := NewTracker(Limits{MaxConcurrentOps: 1})
	release1, err := tr.BeginOp()
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.BeginOp()
	if !corerr.IsKind(err, corerr.QuotaExceeded) {
		t.Fatalf("expected QuotaExceeded on second concurrent op, got %v", err)
	}
	release1()
	release2, err := tr.BeginOp()
	if err != nil {
		t.Fatalf("expected slot to free up after release: %v", err)
	}
	release2()
}

func TestTracker_WallTimeCap(t *testing.T) {
	tr := NewTracker(Limits{MaxWallTime: 10 * time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	if err := tr.CheckWallTime(); !corerr.IsKind(err, corerr.QuotaExceeded) {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
}
