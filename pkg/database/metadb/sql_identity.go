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
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/batch"
)

// Chunked lookups bind a full-width IN list; %s is replaced by the
// placeholders.
const (
	stmtKnownFromViews    = "knownFromViews"
	stmtKnownFromMetadata = "knownFromMetadata"
	stmtViewCountsByHash  = "viewCountsByHash"
	stmtMetadataByHash    = "metadataByHash"
)

var chunkedQueries = []namedQuery{
	{
		name:  stmtKnownFromViews,
		query: `SELECT FilePath, FileHash FROM MediaViews WHERE FilePath IN (%s);`,
	},
	{
		// newest row first so a replaced file resolves to its latest identity
		name: stmtKnownFromMetadata,
		query: `SELECT FilePath, FileHash FROM MediaMetadata
			WHERE FilePath IN (%s) ORDER BY rowid DESC;`,
	},
	{
		name:  stmtViewCountsByHash,
		query: `SELECT FileHash, ViewCount FROM MediaViews WHERE FileHash IN (%s);`,
	},
	{
		name: stmtMetadataByHash,
		query: `SELECT ` + metadataLightColumns + ` FROM MediaMetadata
			WHERE FileHash IN (%s);`,
	},
}

func chunkedName(name string, width int) string {
	return name + "/" + strconv.Itoa(width)
}

func chunkedQuery(tmpl string, width int) string {
	return fmt.Sprintf(tmpl, batch.Placeholders(width))
}

func chunkedTemplate(name string) string {
	for _, q := range chunkedQueries {
		if q.name == name {
			return q.query
		}
	}
	panic("unknown chunked query: " + name)
}

// queryChunks runs the named full-width lookup once per padded chunk of
// values and hands every row to scan.
func (db *MetaDB) queryChunks(name string, values []string, scan func(*sql.Rows) error) error {
	if len(values) == 0 {
		return nil
	}

	stmt, err := db.stmts.get(db.ctx,
		chunkedName(name, db.chunkSize),
		chunkedQuery(chunkedTemplate(name), db.chunkSize),
	)
	if err != nil {
		return err
	}

	for _, args := range batch.PaddedChunks(values, db.chunkSize) {
		rows, err := stmt.QueryContext(db.ctx, args...)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", name, err)
		}
		if err := scanRows(rows, scan); err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	return nil
}

// scanRows feeds every row to scan and always closes rows.
func scanRows(rows *sql.Rows, scan func(*sql.Rows) error) error {
	defer closeRows(rows)
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}

// knownLookup returns a lookup of identities already stored for paths,
// trying each named table query in order, without touching the filesystem.
func (db *MetaDB) knownLookup(order ...string) func([]string) (map[string]string, error) {
	return func(paths []string) (map[string]string, error) {
		found := make(map[string]string, len(paths))
		collect := func(rows *sql.Rows) error {
			var path, hash string
			if err := rows.Scan(&path, &hash); err != nil {
				return fmt.Errorf("failed to scan identity: %w", err)
			}
			if _, ok := found[path]; !ok {
				found[path] = hash
			}
			return nil
		}

		remaining := paths
		for _, name := range order {
			if err := db.queryChunks(name, remaining, collect); err != nil {
				return nil, err
			}
			next := make([]string, 0, len(remaining))
			for _, p := range remaining {
				if _, ok := found[p]; !ok {
					next = append(next, p)
				}
			}
			remaining = next
		}
		return found, nil
	}
}

// knownViewIdentities prefers the view table, for reads of view counts.
func (db *MetaDB) knownViewIdentities(paths []string) (map[string]string, error) {
	return db.knownLookup(stmtKnownFromViews, stmtKnownFromMetadata)(paths)
}

// knownMetadataIdentities prefers the newest metadata row, for metadata
// reads and writes.
func (db *MetaDB) knownMetadataIdentities(paths []string) (map[string]string, error) {
	return db.knownLookup(stmtKnownFromMetadata, stmtKnownFromViews)(paths)
}

// resolveAll resolves every path for a metadata write, failing when any of
// them comes back without an identity.
func (db *MetaDB) resolveAll(paths []string) (map[string]string, error) {
	ids, err := db.resolver.ResolveMany(paths, db.knownMetadataIdentities)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identities: %w", err)
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" || ids[p] == "" {
			return nil, fmt.Errorf("%w: %q", database.ErrIdentityMissing, p)
		}
	}
	return ids, nil
}

func invertIdentities(ids map[string]string) (hashes []string, paths map[string][]string) {
	paths = make(map[string][]string, len(ids))
	hashes = make([]string, 0, len(ids))
	for p, h := range ids {
		if _, ok := paths[h]; !ok {
			hashes = append(hashes, h)
		}
		paths[h] = append(paths[h], p)
	}
	return hashes, paths
}
