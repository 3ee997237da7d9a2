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

// Package sql implements statestore.Store over database/sql, for
// deployments that need durability beyond a single process. Callers open
// the *sql.DB with their own driver and hand it to New. The queries use
// "?" placeholders and an INSERT ... ON CONFLICT ... DO UPDATE upsert, so
// they run on drivers that accept both (such as sqlite3); drivers that
// need "$n" placeholders or lack ON CONFLICT are not supported.
package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/statestore"
)

// Store is a SQL-backed statestore.Store. The table is created lazily on
// first use via EnsureSchema.
type Store struct {
	db        *sql.DB
	tableName string
}

// New wraps an existing *sql.DB. tableName defaults to "state_entries".
func New(db *sql.DB, tableName string) *Store {
	if tableName == "" {
		tableName = "state_entries"
	}
	return &Store{db: db, tableName: tableName}
}

// EnsureSchema creates the backing table if it does not already exist.
// Uses a portable subset of SQL that sqlite3, mysql and postgres all accept.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := "CREATE TABLE IF NOT EXISTS " + s.tableName + " (" +
		"scope_prefix VARCHAR(255) NOT NULL, " +
		"entry_key VARCHAR(512) NOT NULL, " +
		"entry_value TEXT NOT NULL, " +
		"PRIMARY KEY (scope_prefix, entry_key))"
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return corerr.New(corerr.Storage, "schema", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, scope statestore.Scope, key string) (json.RawMessage, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT entry_value FROM "+s.tableName+" WHERE scope_prefix = ? AND entry_key = ?",
		scope.Prefix(), key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, corerr.New(corerr.Storage, "read", err)
	}
	return json.RawMessage(value), true, nil
}

func (s *Store) Write(ctx context.Context, scope statestore.Scope, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.tableName+" (scope_prefix, entry_key, entry_value) VALUES (?, ?, ?) "+
			"ON CONFLICT (scope_prefix, entry_key) DO UPDATE SET entry_value = excluded.entry_value",
		scope.Prefix(), key, string(value))
	if err != nil {
		return corerr.New(corerr.Storage, "write", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, scope statestore.Scope, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+s.tableName+" WHERE scope_prefix = ? AND entry_key = ?",
		scope.Prefix(), key)
	if err != nil {
		return false, corerr.New(corerr.Storage, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, corerr.New(corerr.Storage, "delete", err)
	}
	return n > 0, nil
}

func (s *Store) ListKeys(ctx context.Context, scope statestore.Scope, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_key FROM "+s.tableName+" WHERE scope_prefix = ?",
		scope.Prefix())
	if err != nil {
		return nil, corerr.New(corerr.Storage, "list_keys", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, corerr.New(corerr.Storage, "list_keys", err)
		}
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, corerr.New(corerr.Storage, "list_keys", err)
	}
	return out, nil
}

var _ statestore.Store = (*Store)(nil)
