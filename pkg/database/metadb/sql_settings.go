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

	"github.com/LumenProject/lumen-core/pkg/database"
)

const (
	stmtSettingGet = "settingGet"
	stmtSettingSet = "settingSet"
	stmtCacheGet   = "cacheGet"
	stmtCacheSet   = "cacheSet"
)

const (
	querySettingGet = `SELECT Value FROM Settings WHERE Key = ?;`
	querySettingSet = `
		INSERT INTO Settings (Key, Value, UpdatedAt) VALUES (?, ?, ?)
		ON CONFLICT(Key) DO UPDATE SET Value = excluded.Value, UpdatedAt = excluded.UpdatedAt;
	`
	queryCacheGet = `SELECT Value FROM CacheEntries WHERE Key = ?;`
	queryCacheSet = `
		INSERT INTO CacheEntries (Key, Value, UpdatedAt) VALUES (?, ?, ?)
		ON CONFLICT(Key) DO UPDATE SET Value = excluded.Value, UpdatedAt = excluded.UpdatedAt;
	`
)

func (db *MetaDB) getValue(name, query, key string) (string, bool, error) {
	if db.sql == nil {
		return "", false, database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, name, query)
	if err != nil {
		return "", false, err
	}
	var value sql.NullString
	err = stmt.QueryRowContext(db.ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value.String, value.Valid, nil
}

func (db *MetaDB) setValue(name, query, key, value string) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	stmt, err := db.stmts.get(db.ctx, name, query)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(db.ctx, key, value, db.clock.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// GetSetting returns the stored value for key and whether one exists.
func (db *MetaDB) GetSetting(key string) (string, bool, error) {
	return db.getValue(stmtSettingGet, querySettingGet, key)
}

func (db *MetaDB) SetSetting(key, value string) error {
	return db.setValue(stmtSettingSet, querySettingSet, key, value)
}

// GetCacheEntry returns a memoized value, such as the album tree.
func (db *MetaDB) GetCacheEntry(key string) (string, bool, error) {
	return db.getValue(stmtCacheGet, queryCacheGet, key)
}

func (db *MetaDB) SetCacheEntry(key, value string) error {
	return db.setValue(stmtCacheSet, queryCacheSet, key, value)
}
