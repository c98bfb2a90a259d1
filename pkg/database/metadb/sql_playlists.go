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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/smartfilter"
	"github.com/rs/zerolog/log"
)

const (
	stmtPlaylistInsert = "playlistInsert"
	stmtPlaylistList   = "playlistList"
	stmtPlaylistGet    = "playlistGet"
	stmtPlaylistUpdate = "playlistUpdate"
	stmtPlaylistDelete = "playlistDelete"
)

const (
	queryPlaylistInsert = `
		INSERT INTO SmartPlaylists (Name, Criteria, CreatedAt)
		VALUES (?, ?, ?);
	`
	queryPlaylistList = `
		SELECT DBID, Name, Criteria, CreatedAt
		FROM SmartPlaylists
		ORDER BY DBID;
	`
	queryPlaylistGet = `
		SELECT DBID, Name, Criteria, CreatedAt
		FROM SmartPlaylists
		WHERE DBID = ?;
	`
	queryPlaylistUpdate = `UPDATE SmartPlaylists SET Name = ?, Criteria = ? WHERE DBID = ?;`
	queryPlaylistDelete = `DELETE FROM SmartPlaylists WHERE DBID = ?;`

	// evaluated against every metadata row, never-viewed files join as NULL
	queryPlaylistItems = `
		SELECT m.FilePath, m.FileHash, m.Duration, m.Size, m.Rating,
			COALESCE(v.ViewCount, 0), v.LastViewed
		FROM MediaMetadata m
		LEFT JOIN MediaViews v ON v.FileHash = m.FileHash
		%s
		ORDER BY m.FilePath;
	`
)

// CreateSmartPlaylist validates and stores a playlist, returning its id.
func (db *MetaDB) CreateSmartPlaylist(name, criteria string) (int64, error) {
	if db.sql == nil {
		return 0, database.ErrNullSQL
	}
	if _, err := smartfilter.ValidatePlaylist(name, criteria); err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)

	stmt, err := db.stmts.get(db.ctx, stmtPlaylistInsert, queryPlaylistInsert)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(db.ctx, name, criteria, db.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to create smart playlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get smart playlist id: %w", err)
	}
	return id, nil
}

func scanPlaylist(row rowScanner) (database.SmartPlaylist, error) {
	var p database.SmartPlaylist
	var createdAt int64
	if err := row.Scan(&p.DBID, &p.Name, &p.Criteria, &createdAt); err != nil {
		return p, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}

func (db *MetaDB) GetSmartPlaylists() ([]database.SmartPlaylist, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtPlaylistList, queryPlaylistList)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(db.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query smart playlists: %w", err)
	}

	playlists := make([]database.SmartPlaylist, 0)
	err = scanRows(rows, func(rows *sql.Rows) error {
		p, err := scanPlaylist(rows)
		if err != nil {
			return fmt.Errorf("failed to scan smart playlist: %w", err)
		}
		playlists = append(playlists, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

func (db *MetaDB) GetSmartPlaylist(id int64) (database.SmartPlaylist, error) {
	if db.sql == nil {
		return database.SmartPlaylist{}, database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtPlaylistGet, queryPlaylistGet)
	if err != nil {
		return database.SmartPlaylist{}, err
	}
	p, err := scanPlaylist(stmt.QueryRowContext(db.ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: %d", database.ErrPlaylistNotFound, id)
	} else if err != nil {
		return p, fmt.Errorf("failed to get smart playlist %d: %w", id, err)
	}
	return p, nil
}

// UpdateSmartPlaylist replaces the name and criteria of an existing
// playlist after validating them.
func (db *MetaDB) UpdateSmartPlaylist(id int64, name, criteria string) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	if _, err := smartfilter.ValidatePlaylist(name, criteria); err != nil {
		return err
	}
	name = strings.TrimSpace(name)

	stmt, err := db.stmts.get(db.ctx, stmtPlaylistUpdate, queryPlaylistUpdate)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(db.ctx, name, criteria, id)
	if err != nil {
		return fmt.Errorf("failed to update smart playlist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", database.ErrPlaylistNotFound, id)
	}
	return nil
}

// DeleteSmartPlaylist removes a playlist. Deleting an unknown id is not an
// error.
func (db *MetaDB) DeleteSmartPlaylist(id int64) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtPlaylistDelete, queryPlaylistDelete)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(db.ctx, id); err != nil {
		return fmt.Errorf("failed to delete smart playlist %d: %w", id, err)
	}
	return nil
}

// ExecuteSmartPlaylist evaluates serialized criteria against the stored
// metadata. Malformed criteria is rejected before any query runs.
func (db *MetaDB) ExecuteSmartPlaylist(criteria string) ([]database.PlaylistItem, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	c, err := smartfilter.ParseCriteria(criteria)
	if err != nil {
		return nil, err
	}

	where, args := smartfilter.BuildQuery(&c, db.clock.Now())
	if where != "" {
		where = "WHERE " + where
	}

	// shape depends on the criteria, so it is prepared per call
	stmt, err := db.sql.PrepareContext(db.ctx, fmt.Sprintf(queryPlaylistItems, where))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare smart playlist query: %w", err)
	}
	defer closeStmt(stmt)

	rows, err := stmt.QueryContext(db.ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run smart playlist query: %w", err)
	}

	items := make([]database.PlaylistItem, 0)
	err = scanRows(rows, func(rows *sql.Rows) error {
		var (
			item       database.PlaylistItem
			duration   sql.NullFloat64
			size       sql.NullInt64
			lastViewed sql.NullInt64
		)
		err := rows.Scan(
			&item.FilePath, &item.FileHash, &duration, &size,
			&item.Rating, &item.ViewCount, &lastViewed,
		)
		if err != nil {
			return fmt.Errorf("failed to scan smart playlist item: %w", err)
		}
		if duration.Valid {
			item.Duration = &duration.Float64
		}
		if size.Valid {
			item.Size = &size.Int64
		}
		item.LastViewed = unixTime(lastViewed)
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("where", where).
		Int("items", len(items)).
		Msg("smart playlist evaluated")
	return items, nil
}
