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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/rs/zerolog/log"
)

const (
	stmtMetadataUpsert     = "metadataUpsert"
	stmtMetadataAll        = "metadataAll"
	stmtMetadataDetail     = "metadataDetail"
	stmtPendingExtractions = "pendingExtractions"
)

// metadataLightColumns leaves out WatchedSegments, which only the detail
// lookup reads.
const metadataLightColumns = `FileHash, FilePath, Duration, Size, CreatedAt, Rating, ExtractionStatus`

const (
	// NULL parameters keep the stored value
	queryMetadataUpsert = `
		INSERT INTO MediaMetadata (
			FileHash, FilePath, Duration, Size, CreatedAt,
			Rating, ExtractionStatus, WatchedSegments
		) VALUES (?1, ?2, ?3, ?4, ?5, COALESCE(?6, 0), COALESCE(?7, 'pending'), ?8)
		ON CONFLICT(FileHash) DO UPDATE SET
			FilePath = ?2,
			Duration = COALESCE(?3, Duration),
			Size = COALESCE(?4, Size),
			CreatedAt = COALESCE(?5, CreatedAt),
			Rating = COALESCE(?6, Rating),
			ExtractionStatus = COALESCE(?7, ExtractionStatus),
			WatchedSegments = COALESCE(?8, WatchedSegments);
	`
	queryMetadataAll = `
		SELECT ` + metadataLightColumns + `
		FROM MediaMetadata
		ORDER BY rowid;
	`
	queryMetadataDetail = `
		SELECT ` + metadataLightColumns + `, WatchedSegments
		FROM MediaMetadata
		WHERE FileHash = ?;
	`
	queryPendingExtractions = `
		SELECT FilePath, FileHash
		FROM MediaMetadata
		WHERE ExtractionStatus IS NULL OR ExtractionStatus IN ('', 'pending')
		ORDER BY FilePath
		LIMIT ?;
	`
)

func upsertArgs(hash string, u *database.MetadataUpdate) ([]any, error) {
	var segments any
	if u.WatchedSegments != nil {
		b, err := json.Marshal(u.WatchedSegments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode watched segments: %w", err)
		}
		segments = string(b)
	}
	return []any{
		hash,
		u.FilePath,
		nullable(u.Duration),
		nullable(u.Size),
		nullable(u.CreatedAt),
		nullable(u.Rating),
		nullable(u.ExtractionStatus),
		segments,
	}, nil
}

// nullable turns a nil pointer into an untyped nil bind value.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func (db *MetaDB) execUpsert(tx *sql.Tx, hash string, u *database.MetadataUpdate) error {
	args, err := upsertArgs(hash, u)
	if err != nil {
		return err
	}
	stmt, err := db.stmts.forTx(db.ctx, tx, stmtMetadataUpsert, queryMetadataUpsert)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(db.ctx, args...); err != nil {
		return fmt.Errorf("failed to upsert metadata for %s: %w", u.FilePath, err)
	}
	return nil
}

// UpsertMetadata merges update into the stored record. Fields left nil keep
// their stored values.
func (db *MetaDB) UpsertMetadata(update *database.MetadataUpdate) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	if update == nil || update.FilePath == "" {
		return fmt.Errorf("%w: empty path", database.ErrIdentityMissing)
	}

	hash := db.resolver.Resolve(update.FilePath)
	return withTx(db.ctx, db.sql, func(tx *sql.Tx) error {
		return db.execUpsert(tx, hash, update)
	})
}

// BulkUpsertMetadata resolves every identity first and then applies all
// updates in one transaction. Nothing is written if any update fails.
func (db *MetaDB) BulkUpsertMetadata(updates []database.MetadataUpdate) (int, error) {
	if db.sql == nil {
		return 0, database.ErrNullSQL
	}
	if len(updates) == 0 {
		return 0, nil
	}

	paths := make([]string, len(updates))
	for i := range updates {
		paths[i] = updates[i].FilePath
	}
	ids, err := db.resolveAll(paths)
	if err != nil {
		return 0, err
	}

	err = withTx(db.ctx, db.sql, func(tx *sql.Tx) error {
		for i := range updates {
			if err := db.execUpsert(tx, ids[updates[i].FilePath], &updates[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int("count", len(updates)).Msg("bulk metadata upsert committed")
	return len(updates), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLightMetadata(row rowScanner, extra ...any) (database.MetadataRecord, error) {
	var (
		r         database.MetadataRecord
		duration  sql.NullFloat64
		size      sql.NullInt64
		createdAt sql.NullString
		status    sql.NullString
	)
	dest := append([]any{
		&r.FileHash, &r.FilePath, &duration, &size, &createdAt, &r.Rating, &status,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return r, fmt.Errorf("failed to scan metadata: %w", err)
	}
	if duration.Valid {
		r.Duration = &duration.Float64
	}
	if size.Valid {
		r.Size = &size.Int64
	}
	if createdAt.Valid {
		r.CreatedAt = &createdAt.String
	}
	r.ExtractionStatus = database.ExtractionPending
	if status.Valid && status.String != "" {
		r.ExtractionStatus = status.String
	}
	return r, nil
}

// GetMetadata returns the light record for each path that has one. Paths
// without stored metadata are left out.
func (db *MetaDB) GetMetadata(paths []string) (map[string]database.MetadataRecord, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}

	records := make(map[string]database.MetadataRecord, len(paths))
	if len(paths) == 0 {
		return records, nil
	}

	ids, err := db.resolver.ResolveMany(paths, db.knownMetadataIdentities)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identities: %w", err)
	}
	hashes, byHash := invertIdentities(ids)

	err = db.queryChunks(stmtMetadataByHash, hashes, func(rows *sql.Rows) error {
		r, err := scanLightMetadata(rows)
		if err != nil {
			return err
		}
		for _, p := range byHash[r.FileHash] {
			records[p] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetAllMetadata returns every light record keyed by its stored path. When
// two identities share a path the newer row wins.
func (db *MetaDB) GetAllMetadata() (map[string]database.MetadataRecord, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}

	stmt, err := db.stmts.get(db.ctx, stmtMetadataAll, queryMetadataAll)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(db.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}

	records := make(map[string]database.MetadataRecord)
	err = scanRows(rows, func(rows *sql.Rows) error {
		r, err := scanLightMetadata(rows)
		if err != nil {
			return err
		}
		records[r.FilePath] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetMetadataDetail returns the full record for path, including watched
// segments, or nil when nothing is stored.
func (db *MetaDB) GetMetadataDetail(path string) (*database.MetadataRecord, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}

	ids, err := db.resolver.ResolveMany([]string{path}, db.knownMetadataIdentities)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	stmt, err := db.stmts.get(db.ctx, stmtMetadataDetail, queryMetadataDetail)
	if err != nil {
		return nil, err
	}

	var segments sql.NullString
	r, err := scanLightMetadata(stmt.QueryRowContext(db.ctx, ids[path]), &segments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	if segments.Valid && segments.String != "" {
		if err := json.Unmarshal([]byte(segments.String), &r.WatchedSegments); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("ignoring malformed watched segments")
			r.WatchedSegments = nil
		}
	}
	return &r, nil
}

// GetPendingExtractions returns files still waiting for probe extraction.
func (db *MetaDB) GetPendingExtractions(limit int) ([]database.PendingExtraction, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	if limit <= 0 || limit > db.pendingLimit {
		limit = db.pendingLimit
	}

	stmt, err := db.stmts.get(db.ctx, stmtPendingExtractions, queryPendingExtractions)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(db.ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending extractions: %w", err)
	}

	pending := make([]database.PendingExtraction, 0, limit)
	err = scanRows(rows, func(rows *sql.Rows) error {
		var p database.PendingExtraction
		if err := rows.Scan(&p.FilePath, &p.FileHash); err != nil {
			return fmt.Errorf("failed to scan pending extraction: %w", err)
		}
		pending = append(pending, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}
