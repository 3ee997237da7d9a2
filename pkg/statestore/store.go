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

package statestore

import (
	"context"
	"encoding/json"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// Store is the contract every StateStore backend must satisfy. Reads never
// fail for missing keys -- they return (nil, false, nil). All other
// failures are returned as *corerr.Error with Kind == corerr.Storage, and
// Op distinguishes "read"/"write"/"delete"/"list_keys".
type Store interface {
	Read(ctx context.Context, scope Scope, key string) (json.RawMessage, bool, error)
	Write(ctx context.Context, scope Scope, key string, value json.RawMessage) error
	Delete(ctx context.Context, scope Scope, key string) (bool, error)
	ListKeys(ctx context.Context, scope Scope, prefix string) ([]string, error)
}

// ReadInto is a convenience wrapper that unmarshals the stored value.
func ReadInto(ctx context.Context, s Store, scope Scope, key string, out any) (bool, error) {
	raw, ok, err := s.Read(ctx, scope, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, corerr.New(corerr.Storage, "read", err)
	}
	return true, nil
}

// WriteValue is a convenience wrapper that marshals value before writing.
func WriteValue(ctx context.Context, s Store, scope Scope, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return corerr.New(corerr.Storage, "write", err)
	}
	return s.Write(ctx, scope, key, raw)
}
