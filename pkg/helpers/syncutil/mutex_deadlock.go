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

//go:build deadlock

// Package syncutil provides the mutex types used across the worker. Building
// with -tags=deadlock swaps them for go-deadlock instrumented versions.
package syncutil

import (
	"time"

	"github.com/rs/zerolog/log"
	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock-order checking is compiled in.
const DeadlockEnabled = true

func init() {
	// a single store operation over a large scan can legitimately hold the
	// dispatcher lock for a while
	deadlock.Opts.DeadlockTimeout = 2 * time.Minute
	deadlock.Opts.OnPotentialDeadlock = func() {
		log.Error().Msg("potential deadlock detected")
	}
}

// Mutex is a mutual exclusion lock.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a reader/writer mutual exclusion lock.
type RWMutex struct {
	deadlock.RWMutex
}
