// Lumen Core
// Copyright (c) 2026 The Lumen Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lumen Core.
//
// Lumen Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lumen Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lumen Core.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/metadb"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// TestEpoch is the fake clock's starting time in store fixtures.
var TestEpoch = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// TestStore bundles a real SQLite store with the fake clock and in-memory
// filesystem it was opened with.
type TestStore struct {
	DB    *metadb.MetaDB
	Clock *clockwork.FakeClock
	Fs    afero.Fs
	Path  string
}

// NewTestMetaDB opens a migrated store in a temp dir. The store is closed
// when the test ends.
func NewTestMetaDB(t *testing.T) *TestStore {
	t.Helper()

	clock := clockwork.NewFakeClockAt(TestEpoch)
	fs := afero.NewMemMapFs()
	dbPath := filepath.Join(t.TempDir(), "metadb_test.db")

	db, err := metadb.OpenMetaDB(context.Background(), dbPath, metadb.Options{
		Clock: clock,
		Fs:    fs,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close MetaDB: %v", err)
		}
	})

	return &TestStore{DB: db, Clock: clock, Fs: fs, Path: dbPath}
}

// NewTestOpener returns an opener for the dispatcher that opens stores on
// the given clock and filesystem. Stores it opens are closed by their owner.
func NewTestOpener(clock clockwork.Clock, fs afero.Fs) func(context.Context, string) (database.MetaDBI, error) {
	return func(ctx context.Context, path string) (database.MetaDBI, error) {
		db, err := metadb.OpenMetaDB(ctx, path, metadb.Options{
			Clock: clock,
			Fs:    fs,
		})
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}
