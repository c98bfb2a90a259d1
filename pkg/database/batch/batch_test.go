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

package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChunk_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Chunk([]string{}, 10))
}

func TestChunk_ExactAndRemainder(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	chunks := Chunk(items, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2}, chunks[0])
	assert.Equal(t, []int{3, 4}, chunks[1])
	assert.Equal(t, []int{5}, chunks[2])
}

func TestChunk_AppendDoesNotClobberNextChunk(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4}
	chunks := Chunk(items, 2)
	_ = append(chunks[0], 99)
	assert.Equal(t, []int{3, 4}, chunks[1])
}

func TestPaddedChunks_PadsFinalChunkWithNil(t *testing.T) {
	t.Parallel()

	values := make([]string, 950)
	for i := range values {
		values[i] = "p"
	}
	chunks := PaddedChunks(values, DefaultChunkSize)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], DefaultChunkSize)
	assert.Len(t, chunks[1], DefaultChunkSize)
	assert.Equal(t, "p", chunks[1][49])
	assert.Nil(t, chunks[1][50])
	assert.Nil(t, chunks[1][DefaultChunkSize-1])
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
}

func TestUnique_KeepsOrder(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
}

func TestPropertyPaddedChunksPreserveValues(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,8}`)).Draw(t, "values")
		width := rapid.IntRange(1, 64).Draw(t, "width")

		chunks := PaddedChunks(values, width)

		var flat []string
		for _, chunk := range chunks {
			if len(chunk) != width {
				t.Fatalf("chunk width %d, want %d", len(chunk), width)
			}
			for _, v := range chunk {
				if v == nil {
					continue
				}
				s, ok := v.(string)
				if !ok {
					t.Fatalf("unexpected value type %T", v)
				}
				flat = append(flat, s)
			}
		}
		if strings.Join(flat, ",") != strings.Join(values, ",") {
			t.Fatalf("values not preserved: got %v want %v", flat, values)
		}
		wantChunks := (len(values) + width - 1) / width
		if len(chunks) != wantChunks {
			t.Fatalf("got %d chunks, want %d", len(chunks), wantChunks)
		}
	})
}
