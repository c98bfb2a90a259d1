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

package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndUnmarshal_MissingAndInvalid(t *testing.T) {
	t.Parallel()

	var p models.FilePathParams
	require.ErrorIs(t, ValidateAndUnmarshal(nil, &p), ErrMissingParams)
	require.ErrorIs(t, ValidateAndUnmarshal(json.RawMessage("null"), &p), ErrMissingParams)
	require.ErrorIs(t, ValidateAndUnmarshal(json.RawMessage(`{"filePath":`), &p), ErrInvalidParams)
	require.ErrorIs(t, ValidateAndUnmarshal(json.RawMessage(`{"filePath": 3}`), &p), ErrInvalidParams)
}

func TestValidateAndUnmarshal_FieldMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		dest    func() any
		message string
	}{
		{
			name:    "required uses json name",
			payload: `{}`,
			dest:    func() any { return &models.FilePathParams{} },
			message: "filePath is required",
		},
		{
			name:    "rating above five",
			payload: `{"filePath":"/a.mp4","rating":6}`,
			dest:    func() any { return &models.SetRatingParams{} },
			message: "rating must be at most 5",
		},
		{
			name:    "rating missing",
			payload: `{"filePath":"/a.mp4"}`,
			dest:    func() any { return &models.SetRatingParams{} },
			message: "rating is required",
		},
		{
			name:    "extraction status",
			payload: `{"filePath":"/a.mp4","extractionStatus":"done"}`,
			dest:    func() any { return &models.MetadataParams{} },
			message: "extractionStatus must be one of: pending success failed",
		},
		{
			name:    "directory type",
			payload: `{"path":"/media","type":"s3"}`,
			dest:    func() any { return &models.AddMediaDirectoryParams{} },
			message: "type must be one of: local google-drive",
		},
		{
			name:    "segment order",
			payload: `{"filePath":"/a.mp4","watchedSegments":[{"start":10,"end":5}]}`,
			dest:    func() any { return &models.MetadataParams{} },
			message: "end must not be less than start",
		},
		{
			name:    "blank playlist name",
			payload: `{"name":"   ","criteria":{}}`,
			dest:    func() any { return &models.CreateSmartPlaylistParams{} },
			message: "name must be 1 to 100 characters",
		},
		{
			name:    "execute needs id or criteria",
			payload: `{}`,
			dest:    func() any { return &models.ExecuteSmartPlaylistParams{} },
			message: "id is required when criteria is not set",
		},
		{
			name:    "setting key length",
			payload: `{"key":"` + strings.Repeat("k", 256) + `"}`,
			dest:    func() any { return &models.GetSettingParams{} },
			message: "key must be at most 255",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateInto(json.RawMessage(tt.payload), tt.dest())
			require.Error(t, err)

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tt.message)
		})
	}
}

func TestValidateAndUnmarshal_Accepts(t *testing.T) {
	t.Parallel()

	var m models.MetadataParams
	err := ValidateAndUnmarshal(json.RawMessage(
		`{"filePath":"/a.mp4","rating":0,"extractionStatus":"success","watchedSegments":[]}`,
	), &m)
	require.NoError(t, err)
	require.NotNil(t, m.Rating)
	assert.Equal(t, 0, *m.Rating)
	assert.NotNil(t, m.WatchedSegments)

	var exec models.ExecuteSmartPlaylistParams
	require.NoError(t, ValidateAndUnmarshal(json.RawMessage(`{"criteria":{"minRating":3}}`), &exec))
	require.NotNil(t, exec.Criteria)
	assert.JSONEq(t, `{"minRating":3}`, string(*exec.Criteria))

	var create models.CreateSmartPlaylistParams
	require.NoError(t, ValidateAndUnmarshal(
		json.RawMessage(`{"name":"Unwatched","criteria":"{\"maxViews\":0}"}`), &create))
	assert.Equal(t, models.CriteriaParam(`{"maxViews":0}`), create.Criteria)
}

func TestUnmarshalOptional(t *testing.T) {
	t.Parallel()

	var p models.LimitParams
	require.NoError(t, UnmarshalOptional(nil, &p))
	assert.Nil(t, p.Limit)

	require.NoError(t, UnmarshalOptional(json.RawMessage(`{"limit":5}`), &p))
	require.NotNil(t, p.Limit)
	assert.Equal(t, 5, *p.Limit)

	require.Error(t, UnmarshalOptional(json.RawMessage(`{"limit":-1}`), &p))
}

func validateInto(params json.RawMessage, dest any) error {
	if err := json.Unmarshal(params, dest); err != nil {
		return err
	}
	return DefaultValidator.Validate(dest)
}
