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

package smartfilter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ptr[T any](v T) *T {
	return &v
}

func TestBuildQuery_EmptyCriteria(t *testing.T) {
	t.Parallel()

	where, args := BuildQuery(&Criteria{}, time.Now())
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildQuery_AllFields(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := &Criteria{
		MinRating:        ptr(3.0),
		MinDuration:      ptr(10.0),
		MaxDuration:      ptr(600.0),
		MinViews:         ptr(int64(1)),
		MaxViews:         ptr(int64(20)),
		MinDaysSinceView: ptr(30.0),
	}

	where, args := BuildQuery(c, now)

	assert.Equal(t,
		"m.Rating >= ? AND m.Duration >= ? AND m.Duration <= ? AND "+
			"COALESCE(v.ViewCount, 0) >= ? AND COALESCE(v.ViewCount, 0) <= ? AND "+
			"(v.LastViewed IS NULL OR v.LastViewed <= ?)",
		where)
	assert.Equal(t, []any{3.0, 10.0, 600.0, int64(1), int64(20), int64(1_700_000_000 - 30*86400)}, args)
}

func TestBuildQuery_ZeroDaysSinceViewIsNoOp(t *testing.T) {
	t.Parallel()

	where, args := BuildQuery(&Criteria{MinDaysSinceView: ptr(0.0)}, time.Now())
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildQuery_ZeroRatingStillBinds(t *testing.T) {
	t.Parallel()

	where, args := BuildQuery(&Criteria{MinRating: ptr(0.0)}, time.Now())
	assert.Equal(t, "m.Rating >= ?", where)
	assert.Equal(t, []any{0.0}, args)
}

func TestBuildQuery_FromParsedCriteria(t *testing.T) {
	t.Parallel()

	c, err := ParseCriteria(`{"minViews": 2}`)
	require.NoError(t, err)

	where, args := BuildQuery(&c, time.Now())
	assert.Equal(t, "COALESCE(v.ViewCount, 0) >= ?", where)
	assert.Equal(t, []any{int64(2)}, args)
}

func TestPropertyBuildQueryPlaceholdersMatchArgs(t *testing.T) {
	t.Parallel()

	optFloat := func(t *rapid.T, label string) *float64 {
		if !rapid.Bool().Draw(t, label+"Set") {
			return nil
		}
		return ptr(rapid.Float64Range(0, 10000).Draw(t, label))
	}
	optInt := func(t *rapid.T, label string) *int64 {
		if !rapid.Bool().Draw(t, label+"Set") {
			return nil
		}
		return ptr(rapid.Int64Range(0, 10000).Draw(t, label))
	}

	rapid.Check(t, func(t *rapid.T) {
		c := &Criteria{
			MinRating:        optFloat(t, "minRating"),
			MinDuration:      optFloat(t, "minDuration"),
			MaxDuration:      optFloat(t, "maxDuration"),
			MinViews:         optInt(t, "minViews"),
			MaxViews:         optInt(t, "maxViews"),
			MinDaysSinceView: optFloat(t, "minDaysSinceView"),
		}

		where, args := BuildQuery(c, time.Unix(1_700_000_000, 0))

		if got := strings.Count(where, "?"); got != len(args) {
			t.Fatalf("%d placeholders for %d args in %q", got, len(args), where)
		}
		if where == "" {
			if !c.IsEmpty() {
				t.Fatalf("empty clause for non-empty criteria")
			}
			return
		}
		if got := strings.Count(where, " AND ") + 1; got != len(args) {
			t.Fatalf("%d clauses for %d args in %q", got, len(args), where)
		}
	})
}

func TestBuildQuery_HugeDaysSinceViewIsClamped(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	where, args := BuildQuery(&Criteria{MinDaysSinceView: ptr(1e300)}, now)
	assert.Equal(t, "(v.LastViewed IS NULL OR v.LastViewed <= ?)", where)
	require.Len(t, args, 1)
	assert.Equal(t, int64(1_700_000_000-MaxDaysSinceView*86400), args[0])
}
