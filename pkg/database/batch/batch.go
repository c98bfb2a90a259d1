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

// Package batch splits long value lists into pieces that are safe to bind
// into a single SQLite statement or to fan out to the filesystem.
package batch

import (
	"strings"
)

// DefaultChunkSize stays well under SQLite's SQLITE_MAX_VARIABLE_NUMBER,
// which is 999 on older builds and 32766 on current ones.
const DefaultChunkSize = 900

// DefaultWindowSize caps concurrent filesystem stats so large scans don't
// run the process out of file handles.
const DefaultWindowSize = 50

// Chunk splits items into consecutive slices of at most size elements. The
// returned slices share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// PaddedChunks splits values into bind lists of exactly width entries. The
// final chunk is filled with nil, which never matches in an IN (...) list,
// so one prepared statement of the full width serves every chunk.
func PaddedChunks[T any](values []T, width int) [][]any {
	if len(values) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultChunkSize
	}
	chunks := make([][]any, 0, (len(values)+width-1)/width)
	for _, chunk := range Chunk(values, width) {
		args := make([]any, width)
		for i, v := range chunk {
			args[i] = v
		}
		chunks = append(chunks, args)
	}
	return chunks
}

// Placeholders returns "?, ?, ..." with n markers.
func Placeholders(n int) string {
	if n < 1 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Unique returns values with duplicates removed, keeping first-seen order.
func Unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
