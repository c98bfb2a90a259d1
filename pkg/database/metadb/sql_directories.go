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
	"path/filepath"
	"strings"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/identity"
	"github.com/google/uuid"
)

const (
	stmtDirectoryUpsert    = "directoryUpsert"
	stmtDirectoryByPath    = "directoryByPath"
	stmtDirectoryDelete    = "directoryDelete"
	stmtDirectoryList      = "directoryList"
	stmtDirectorySetActive = "directorySetActive"
)

const (
	// ?4 is the caller's name, ?5 the fallback used for new rows
	queryDirectoryUpsert = `
		INSERT INTO MediaDirectories (ID, Path, Type, Name, IsActive)
		VALUES (?1, ?2, ?3, COALESCE(NULLIF(?4, ''), ?5), 1)
		ON CONFLICT(Path) DO UPDATE SET
			IsActive = 1,
			Type = ?3,
			Name = COALESCE(NULLIF(?4, ''), Name);
	`
	queryDirectoryByPath = `
		SELECT ID, Path, Type, COALESCE(Name, ''), IsActive
		FROM MediaDirectories
		WHERE Path = ?;
	`
	queryDirectoryDelete = `DELETE FROM MediaDirectories WHERE Path = ?;`
	queryDirectoryList   = `
		SELECT ID, Path, Type, COALESCE(Name, ''), IsActive
		FROM MediaDirectories
		ORDER BY Path;
	`
	queryDirectorySetActive = `UPDATE MediaDirectories SET IsActive = ? WHERE Path = ?;`
)

var errEmptyDirectoryPath = errors.New("directory path is required")

func directoryType(dir *database.MediaDirectory) string {
	if dir.Type != "" {
		return dir.Type
	}
	if identity.IsRemote(dir.Path) {
		return database.DirectoryTypeGoogleDrive
	}
	return database.DirectoryTypeLocal
}

func defaultDirectoryName(path string) string {
	if identity.IsRemote(path) {
		return strings.TrimPrefix(path, identity.RemoteScheme)
	}
	return filepath.Base(path)
}

func (db *MetaDB) addDirectory(tx *sql.Tx, dir database.MediaDirectory) (database.MediaDirectory, error) {
	if dir.Path == "" {
		return dir, errEmptyDirectoryPath
	}

	upsert, err := db.stmts.forTx(db.ctx, tx, stmtDirectoryUpsert, queryDirectoryUpsert)
	if err != nil {
		return dir, err
	}
	_, err = upsert.ExecContext(db.ctx,
		uuid.New().String(),
		dir.Path,
		directoryType(&dir),
		dir.Name,
		defaultDirectoryName(dir.Path),
	)
	if err != nil {
		return dir, fmt.Errorf("failed to add media directory %s: %w", dir.Path, err)
	}

	byPath, err := db.stmts.forTx(db.ctx, tx, stmtDirectoryByPath, queryDirectoryByPath)
	if err != nil {
		return dir, err
	}
	var stored database.MediaDirectory
	err = byPath.QueryRowContext(db.ctx, dir.Path).Scan(
		&stored.ID, &stored.Path, &stored.Type, &stored.Name, &stored.IsActive,
	)
	if err != nil {
		return dir, fmt.Errorf("failed to read media directory %s: %w", dir.Path, err)
	}
	return stored, nil
}

// AddMediaDirectory registers dir. Registering a known path reactivates
// it and keeps its id.
func (db *MetaDB) AddMediaDirectory(dir database.MediaDirectory) (database.MediaDirectory, error) {
	if db.sql == nil {
		return dir, database.ErrNullSQL
	}
	var stored database.MediaDirectory
	err := withTx(db.ctx, db.sql, func(tx *sql.Tx) error {
		var err error
		stored, err = db.addDirectory(tx, dir)
		return err
	})
	return stored, err
}

// AddMediaDirectories registers every directory in one transaction.
func (db *MetaDB) AddMediaDirectories(dirs []database.MediaDirectory) ([]database.MediaDirectory, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	stored := make([]database.MediaDirectory, 0, len(dirs))
	err := withTx(db.ctx, db.sql, func(tx *sql.Tx) error {
		for _, dir := range dirs {
			d, err := db.addDirectory(tx, dir)
			if err != nil {
				return err
			}
			stored = append(stored, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// RemoveMediaDirectory deletes the directory at path. Removing an unknown
// path is not an error.
func (db *MetaDB) RemoveMediaDirectory(path string) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtDirectoryDelete, queryDirectoryDelete)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(db.ctx, path); err != nil {
		return fmt.Errorf("failed to remove media directory %s: %w", path, err)
	}
	return nil
}

func (db *MetaDB) GetMediaDirectories() ([]database.MediaDirectory, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtDirectoryList, queryDirectoryList)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(db.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query media directories: %w", err)
	}

	dirs := make([]database.MediaDirectory, 0)
	err = scanRows(rows, func(rows *sql.Rows) error {
		var d database.MediaDirectory
		if err := rows.Scan(&d.ID, &d.Path, &d.Type, &d.Name, &d.IsActive); err != nil {
			return fmt.Errorf("failed to scan media directory: %w", err)
		}
		dirs = append(dirs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func (db *MetaDB) SetDirectoryActiveState(path string, active bool) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, stmtDirectorySetActive, queryDirectorySetActive)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(db.ctx, active, path)
	if err != nil {
		return fmt.Errorf("failed to update media directory %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", database.ErrDirectoryNotFound, path)
	}
	return nil
}
