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
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type columnStep struct {
	table      string
	column     string
	definition string
}

// columnSteps bring tables created by older releases up to the current
// shape. They run in order and each one is skipped when the column exists.
var columnSteps = []columnStep{
	{table: "MediaViews", column: "LastViewed", definition: "integer"},
	{table: "MediaMetadata", column: "CreatedAt", definition: "text"},
	{table: "MediaMetadata", column: "Rating", definition: "integer NOT NULL DEFAULT 0"},
	{table: "MediaMetadata", column: "ExtractionStatus", definition: "text DEFAULT 'pending'"},
	{table: "MediaMetadata", column: "WatchedSegments", definition: "text"},
	{table: "MediaDirectories", column: "Type", definition: "text NOT NULL DEFAULT 'local'"},
	{table: "MediaDirectories", column: "Name", definition: "text"},
	{table: "MediaDirectories", column: "IsActive", definition: "integer NOT NULL DEFAULT 1"},
}

// created after column steps since legacy tables may lack the columns
var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS MediaMetadataFilePathIdx ON MediaMetadata(FilePath);",
	"CREATE INDEX IF NOT EXISTS MediaMetadataExtractionStatusIdx ON MediaMetadata(ExtractionStatus);",
	"CREATE INDEX IF NOT EXISTS MediaViewsLastViewedIdx ON MediaViews(LastViewed);",
}

const createDirectoriesTable = `
CREATE TABLE MediaDirectories (
    ID text PRIMARY KEY,
    Path text NOT NULL UNIQUE,
    Type text NOT NULL DEFAULT 'local',
    Name text,
    IsActive integer NOT NULL DEFAULT 1
);`

func sqlMigrateUp(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	version, err := database.MigrateUp(ctx, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to run metadata database migrations: %w", err)
	}
	log.Debug().Int64("version", version).Msg("metadata schema version")

	if err := sqlRebuildLegacyDirectories(ctx, db); err != nil {
		return err
	}
	for _, step := range columnSteps {
		if err := sqlEnsureColumn(ctx, db, step); err != nil {
			return err
		}
	}
	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func sqlAllocate(ctx context.Context, db *sql.DB) error {
	return sqlMigrateUp(ctx, db)
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "vacuum;")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// sqlTableColumns returns the column names of table. The table name is
// never user input.
func sqlTableColumns(ctx context.Context, q queryer, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info("+table+");")
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan %s column: %w", table, err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", table, err)
	}
	return columns, nil
}

func sqlEnsureColumn(ctx context.Context, db *sql.DB, step columnStep) error {
	columns, err := sqlTableColumns(ctx, db, step.table)
	if err != nil {
		return err
	}
	if columns[step.column] {
		return nil
	}

	log.Info().
		Str("table", step.table).
		Str("column", step.column).
		Msg("adding missing column")

	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN %s %s;", step.table, step.column, step.definition,
	))
	if err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", step.table, step.column, err)
	}
	return nil
}

type legacyDirectory struct {
	path     string
	kind     sql.NullString
	name     sql.NullString
	isActive sql.NullBool
}

// sqlRebuildLegacyDirectories migrates a directory table from before
// directories had ids. Rows are copied into the current schema with a fresh
// id each.
func sqlRebuildLegacyDirectories(ctx context.Context, db *sql.DB) error {
	columns, err := sqlTableColumns(ctx, db, "MediaDirectories")
	if err != nil {
		return err
	}
	if columns["ID"] {
		return nil
	}

	log.Info().Msg("rebuilding legacy media directories table")

	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"ALTER TABLE MediaDirectories RENAME TO MediaDirectoriesLegacy;",
		); err != nil {
			return fmt.Errorf("failed to rename legacy directories table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, createDirectoriesTable); err != nil {
			return fmt.Errorf("failed to create directories table: %w", err)
		}

		dirs, err := sqlReadLegacyDirectories(ctx, tx, columns)
		if err != nil {
			return err
		}

		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO MediaDirectories (ID, Path, Type, Name, IsActive)
			VALUES (?, ?, ?, ?, ?);
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare directory copy statement: %w", err)
		}
		defer func() {
			if closeErr := insert.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("failed to close sql statement")
			}
		}()

		for _, d := range dirs {
			kind := database.DirectoryTypeLocal
			if d.kind.Valid && d.kind.String != "" {
				kind = d.kind.String
			}
			active := !d.isActive.Valid || d.isActive.Bool
			if _, err := insert.ExecContext(ctx,
				uuid.New().String(), d.path, kind, d.name, active,
			); err != nil {
				return fmt.Errorf("failed to copy directory %s: %w", d.path, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DROP TABLE MediaDirectoriesLegacy;"); err != nil {
			return fmt.Errorf("failed to drop legacy directories table: %w", err)
		}

		log.Info().Int("directories", len(dirs)).Msg("legacy media directories migrated")
		return nil
	})
}

func sqlReadLegacyDirectories(
	ctx context.Context,
	tx *sql.Tx,
	columns map[string]bool,
) ([]legacyDirectory, error) {
	selects := []string{"Path"}
	for _, col := range []string{"Type", "Name", "IsActive"} {
		if columns[col] {
			selects = append(selects, col)
		} else {
			selects = append(selects, "NULL")
		}
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT "+strings.Join(selects, ", ")+" FROM MediaDirectoriesLegacy;",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy directories: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var dirs []legacyDirectory
	for rows.Next() {
		var d legacyDirectory
		if err := rows.Scan(&d.path, &d.kind, &d.name, &d.isActive); err != nil {
			return nil, fmt.Errorf("failed to scan legacy directory: %w", err)
		}
		dirs = append(dirs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legacy directories: %w", err)
	}
	return dirs, nil
}
