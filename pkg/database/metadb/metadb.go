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

package metadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/batch"
	"github.com/LumenProject/lumen-core/pkg/database/identity"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
)

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// DefaultPendingLimit caps a single pending-extraction read.
const DefaultPendingLimit = 100

type Options struct {
	Clock           clockwork.Clock
	Fs              afero.Fs
	ChunkSize       int
	StatConcurrency int
	PendingLimit    int
}

type MetaDB struct {
	sql          *sql.DB
	ctx          context.Context
	clock        clockwork.Clock
	resolver     *identity.Resolver
	stmts        *stmtCache
	path         string
	chunkSize    int
	pendingLimit int
}

var _ database.MetaDBI = (*MetaDB)(nil)

func newMetaDB(ctx context.Context, dbPath string, opts Options) *MetaDB {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = batch.DefaultChunkSize
	}
	if opts.PendingLimit <= 0 || opts.PendingLimit > DefaultPendingLimit {
		opts.PendingLimit = DefaultPendingLimit
	}
	return &MetaDB{
		ctx:          ctx,
		path:         dbPath,
		clock:        opts.Clock,
		resolver:     identity.NewResolver(opts.Fs, opts.StatConcurrency),
		chunkSize:    opts.ChunkSize,
		pendingLimit: opts.PendingLimit,
	}
}

// OpenMetaDB opens the database at dbPath, bringing its schema up to date
// and preparing the statement cache.
func OpenMetaDB(ctx context.Context, dbPath string, opts Options) (*MetaDB, error) {
	db := newMetaDB(ctx, dbPath, opts)
	if err := db.Open(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *MetaDB) Open() error {
	if err := os.MkdirAll(filepath.Dir(db.path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}

	sqlInstance, err := sql.Open("sqlite3", db.path+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	db.stmts = newStmtCache(sqlInstance)

	if err := db.MigrateUp(); err != nil {
		return errors.Join(err, db.Close())
	}

	// the worker is the only owner of the file, one connection serves
	// every operation from here on
	sqlInstance.SetMaxOpenConns(1)
	sqlInstance.SetConnMaxLifetime(0)

	if err := db.stmts.warm(db.ctx, db.staticQueries()); err != nil {
		return errors.Join(err, db.Close())
	}
	return nil
}

func (db *MetaDB) GetDBPath() string {
	return db.path
}

func (db *MetaDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func (db *MetaDB) Allocate() error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlAllocate(db.ctx, db.sql)
}

func (db *MetaDB) MigrateUp() error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlMigrateUp(db.ctx, db.sql)
}

func (db *MetaDB) Vacuum() error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlVacuum(db.ctx, db.sql)
}

func (db *MetaDB) Close() error {
	if db.sql == nil {
		return nil
	}
	var errs []error
	if db.stmts != nil {
		errs = append(errs, db.stmts.close())
	}
	if err := db.sql.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	db.sql = nil
	return errors.Join(errs...)
}

// SetSQLForTesting allows injection of a sql.DB instance for testing purposes.
// The schema is not touched, callers set up whatever the test expects.
func (db *MetaDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) {
	db.sql = sqlDB
	db.ctx = ctx
	db.stmts = newStmtCache(sqlDB)
}

// staticQueries lists every statement that can run inside a transaction,
// plus the chunked lookups at the configured width.
func (db *MetaDB) staticQueries() []namedQuery {
	queries := []namedQuery{
		{name: stmtViewInsert, query: queryViewInsert},
		{name: stmtViewUpdate, query: queryViewUpdate},
		{name: stmtViewCountOnly, query: queryViewCountOnly},
		{name: stmtViewCountByPath, query: queryViewCountByPath},
		{name: stmtRecentlyViewed, query: queryRecentlyViewed},
		{name: stmtMetadataUpsert, query: queryMetadataUpsert},
		{name: stmtMetadataAll, query: queryMetadataAll},
		{name: stmtMetadataDetail, query: queryMetadataDetail},
		{name: stmtPendingExtractions, query: queryPendingExtractions},
		{name: stmtDirectoryUpsert, query: queryDirectoryUpsert},
		{name: stmtDirectoryByPath, query: queryDirectoryByPath},
		{name: stmtDirectoryDelete, query: queryDirectoryDelete},
		{name: stmtDirectoryList, query: queryDirectoryList},
		{name: stmtDirectorySetActive, query: queryDirectorySetActive},
		{name: stmtPlaylistInsert, query: queryPlaylistInsert},
		{name: stmtPlaylistList, query: queryPlaylistList},
		{name: stmtPlaylistGet, query: queryPlaylistGet},
		{name: stmtPlaylistUpdate, query: queryPlaylistUpdate},
		{name: stmtPlaylistDelete, query: queryPlaylistDelete},
		{name: stmtSettingGet, query: querySettingGet},
		{name: stmtSettingSet, query: querySettingSet},
		{name: stmtCacheGet, query: queryCacheGet},
		{name: stmtCacheSet, query: queryCacheSet},
	}
	for _, chunked := range chunkedQueries {
		queries = append(queries, namedQuery{
			name:  chunkedName(chunked.name, db.chunkSize),
			query: chunkedQuery(chunked.query, db.chunkSize),
		})
	}
	return queries
}
