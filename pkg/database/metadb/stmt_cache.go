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

	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// stmtCache holds one prepared statement per logical operation. Statements
// are prepared against the pool and rebound to transactions with
// tx.StmtContext, so a transaction never has to prepare on its own.
type stmtCache struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
	mu    syncutil.Mutex
}

type namedQuery struct {
	name  string
	query string
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
}

// get returns the cached statement for name, preparing query on first use.
// It must not be called while a transaction holds the only connection.
func (c *stmtCache) get(ctx context.Context, name, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stmt, ok := c.stmts[name]; ok {
		return stmt, nil
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s statement: %w", name, err)
	}
	c.stmts[name] = stmt
	return stmt, nil
}

// forTx returns the cached statement bound to tx. An uncached statement is
// prepared on the transaction itself and released when it ends.
func (c *stmtCache) forTx(ctx context.Context, tx *sql.Tx, name, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	stmt, ok := c.stmts[name]
	c.mu.Unlock()

	if ok {
		return tx.StmtContext(ctx, stmt), nil
	}

	log.Debug().Str("statement", name).Msg("statement not warmed, preparing on transaction")
	txStmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s statement: %w", name, err)
	}
	return txStmt, nil
}

// warm prepares every query up front so transactions always find their
// statements cached.
func (c *stmtCache) warm(ctx context.Context, queries []namedQuery) error {
	for _, q := range queries {
		if _, err := c.get(ctx, q.name, q.query); err != nil {
			return err
		}
	}
	return nil
}

func (c *stmtCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stmts)
}

// close releases every cached statement. The cache is empty afterwards and
// can be reused.
func (c *stmtCache) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for name, stmt := range c.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s statement: %w", name, err))
		}
	}
	clear(c.stmts)
	return errors.Join(errs...)
}
