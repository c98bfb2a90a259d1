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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteria_Valid(t *testing.T) {
	t.Parallel()

	c, err := ParseCriteria(`{"minRating": 3, "maxViews": 10, "minDaysSinceView": 30}`)
	require.NoError(t, err)
	require.NotNil(t, c.MinRating)
	require.NotNil(t, c.MaxViews)
	require.NotNil(t, c.MinDaysSinceView)
	assert.InDelta(t, 3.0, *c.MinRating, 0)
	assert.Equal(t, int64(10), *c.MaxViews)
	assert.InDelta(t, 30.0, *c.MinDaysSinceView, 0)
	assert.Nil(t, c.MinDuration)
}

func TestParseCriteria_EmptyObjectMatchesAll(t *testing.T) {
	t.Parallel()

	c, err := ParseCriteria(`{}`)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestParseCriteria_IgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	c, err := ParseCriteria(`{"sortBy": "rating", "minDuration": 60}`)
	require.NoError(t, err)
	require.NotNil(t, c.MinDuration)
	assert.InDelta(t, 60.0, *c.MinDuration, 0)
}

func TestParseCriteria_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
		errText string
	}{
		{name: "empty", raw: "", wantErr: ErrEmptyCriteria},
		{name: "whitespace", raw: "   ", wantErr: ErrEmptyCriteria},
		{name: "broken json", raw: "{bad json", errText: "invalid playlist criteria"},
		{name: "array", raw: "[1,2]", wantErr: ErrCriteriaNotObject},
		{name: "string", raw: `"minRating"`, wantErr: ErrCriteriaNotObject},
		{name: "null", raw: "null", wantErr: ErrCriteriaNotObject},
		{name: "wrong type", raw: `{"minRating": "high"}`, errText: "invalid playlist criteria"},
		{name: "fractional views", raw: `{"minViews": 1.5}`, errText: "invalid playlist criteria"},
		{name: "rating too high", raw: `{"minRating": 6}`, errText: "minRating must be at most 5"},
		{name: "negative duration", raw: `{"minDuration": -1}`, errText: "minDuration must be at least 0"},
		{
			name:    "too long",
			raw:     `{"x":"` + strings.Repeat("a", MaxCriteriaLength) + `"}`,
			wantErr: ErrCriteriaTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCriteria(tt.raw)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
		})
	}
}

func TestValidatePlaylist(t *testing.T) {
	t.Parallel()

	_, err := ValidatePlaylist("", "{}")
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = ValidatePlaylist("   ", "{}")
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = ValidatePlaylist(strings.Repeat("n", MaxNameLength+1), "{}")
	require.ErrorIs(t, err, ErrNameTooLong)

	_, err = ValidatePlaylist(strings.Repeat("é", MaxNameLength), "{}")
	require.NoError(t, err)

	_, err = ValidatePlaylist("ok", "{bad json")
	require.Error(t, err)

	c, err := ValidatePlaylist("Favourites", `{"minRating": 4}`)
	require.NoError(t, err)
	require.NotNil(t, c.MinRating)
}

func TestParseCriteria_DaysSinceViewBounded(t *testing.T) {
	t.Parallel()

	_, err := ParseCriteria(`{"minDaysSinceView": 36500}`)
	require.NoError(t, err)

	_, err = ParseCriteria(`{"minDaysSinceView": 1e300}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minDaysSinceView must be at most 36500")
}
