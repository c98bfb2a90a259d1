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

package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var testMigrations = fstest.MapFS{
	"00001_settings.sql": {Data: []byte(`-- +goose Up
CREATE TABLE Settings (Key text PRIMARY KEY, Value text);
-- +goose Down
DROP TABLE Settings;
`)},
	"00002_settings_updated.sql": {Data: []byte(`-- +goose Up
ALTER TABLE Settings ADD COLUMN UpdatedAt integer;
-- +goose Down
ALTER TABLE Settings DROP COLUMN UpdatedAt;
`)},
}

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateUp_AppliesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestSQLite(t)

	version, err := MigrateUp(ctx, db, testMigrations)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	_, err = db.ExecContext(ctx, `INSERT INTO Settings (Key, Value, UpdatedAt) VALUES ('a', 'b', 1);`)
	require.NoError(t, err)

	version, err = MigrateUp(ctx, db, testMigrations)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestMigrateUp_IndependentStoresConcurrently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var g errgroup.Group
	for range 4 {
		db := openTestSQLite(t)
		g.Go(func() error {
			_, err := MigrateUp(ctx, db, testMigrations)
			return err
		})
	}
	require.NoError(t, g.Wait())
}

func TestMigrateUp_BadMigrationFails(t *testing.T) {
	t.Parallel()
	db := openTestSQLite(t)

	_, err := MigrateUp(context.Background(), db, fstest.MapFS{
		"00001_broken.sql": {Data: []byte("-- +goose Up\nCREATE TABLEX nope;\n")},
	})
	require.Error(t, err)
}
