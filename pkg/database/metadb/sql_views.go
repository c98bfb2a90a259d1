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
	"time"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/rs/zerolog/log"
)

const (
	stmtViewInsert      = "viewInsert"
	stmtViewUpdate      = "viewUpdate"
	stmtViewCountOnly   = "viewCountOnly"
	stmtViewCountByPath = "viewCountByPath"
	stmtRecentlyViewed  = "recentlyViewed"
)

const (
	queryViewInsert = `
		INSERT INTO MediaViews (FileHash, FilePath, ViewCount, LastViewed)
		VALUES (?, ?, 0, NULL)
		ON CONFLICT DO NOTHING;
	`
	queryViewUpdate = `
		UPDATE MediaViews
		SET FilePath = ?, ViewCount = ViewCount + 1, LastViewed = ?
		WHERE FileHash = ?;
	`
	queryViewCountOnly = `
		UPDATE MediaViews
		SET ViewCount = ViewCount + 1, LastViewed = ?
		WHERE FileHash = ?;
	`
	queryViewCountByPath = `
		UPDATE MediaViews
		SET ViewCount = ViewCount + 1, LastViewed = ?
		WHERE FilePath = ?;
	`
	queryRecentlyViewed = `
		SELECT FileHash, FilePath, ViewCount, LastViewed
		FROM MediaViews
		WHERE LastViewed IS NOT NULL
		ORDER BY LastViewed DESC, FilePath
		LIMIT ?;
	`
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// RecordView counts one view of the file at path.
//
// The row for the file's identity takes over the path. When the path is
// still held by another identity the count goes to the row that already
// owns the identity, or failing that the row that owns the path, so a view
// is never lost to the uniqueness constraint.
func (db *MetaDB) RecordView(path string) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	if path == "" {
		return fmt.Errorf("%w: empty path", database.ErrIdentityMissing)
	}

	hash := db.resolver.Resolve(path)
	now := db.clock.Now().Unix()

	return withTx(db.ctx, db.sql, func(tx *sql.Tx) error {
		insert, err := db.stmts.forTx(db.ctx, tx, stmtViewInsert, queryViewInsert)
		if err != nil {
			return err
		}
		if _, err := insert.ExecContext(db.ctx, hash, path); err != nil {
			return fmt.Errorf("failed to insert view: %w", err)
		}

		update, err := db.stmts.forTx(db.ctx, tx, stmtViewUpdate, queryViewUpdate)
		if err != nil {
			return err
		}
		res, err := update.ExecContext(db.ctx, path, now, hash)
		switch {
		case err == nil:
		case isUniqueViolation(err):
			log.Debug().
				Str("path", path).
				Str("hash", hash).
				Msg("path owned by another identity, counting view without moving it")
			countOnly, err := db.stmts.forTx(db.ctx, tx, stmtViewCountOnly, queryViewCountOnly)
			if err != nil {
				return err
			}
			res, err = countOnly.ExecContext(db.ctx, now, hash)
			if err != nil {
				return fmt.Errorf("failed to update view count: %w", err)
			}
		default:
			return fmt.Errorf("failed to update view: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected > 0 {
			return nil
		}

		// the insert was skipped because a stale identity holds the path
		log.Debug().
			Str("path", path).
			Str("hash", hash).
			Msg("identity has no view row, counting view on path owner")
		byPath, err := db.stmts.forTx(db.ctx, tx, stmtViewCountByPath, queryViewCountByPath)
		if err != nil {
			return err
		}
		if _, err := byPath.ExecContext(db.ctx, now, path); err != nil {
			return fmt.Errorf("failed to update view count by path: %w", err)
		}
		return nil
	})
}

// GetViewCounts returns a count for every path, zero for unseen files.
func (db *MetaDB) GetViewCounts(paths []string) (map[string]int64, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}

	counts := make(map[string]int64, len(paths))
	for _, p := range paths {
		counts[p] = 0
	}
	if len(paths) == 0 {
		return counts, nil
	}

	ids, err := db.resolver.ResolveMany(paths, db.knownViewIdentities)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identities: %w", err)
	}
	hashes, byHash := invertIdentities(ids)

	err = db.queryChunks(stmtViewCountsByHash, hashes, func(rows *sql.Rows) error {
		var hash string
		var count int64
		if err := rows.Scan(&hash, &count); err != nil {
			return fmt.Errorf("failed to scan view count: %w", err)
		}
		for _, p := range byHash[hash] {
			counts[p] = count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// GetRecentlyViewed returns the most recently viewed files, newest first.
func (db *MetaDB) GetRecentlyViewed(limit int) ([]database.ViewRecord, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	stmt, err := db.stmts.get(db.ctx, stmtRecentlyViewed, queryRecentlyViewed)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(db.ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently viewed: %w", err)
	}

	records := make([]database.ViewRecord, 0, limit)
	err = scanRows(rows, func(rows *sql.Rows) error {
		var r database.ViewRecord
		var lastViewed sql.NullInt64
		if err := rows.Scan(&r.FileHash, &r.FilePath, &r.ViewCount, &lastViewed); err != nil {
			return fmt.Errorf("failed to scan view: %w", err)
		}
		r.LastViewed = unixTime(lastViewed)
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func unixTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
