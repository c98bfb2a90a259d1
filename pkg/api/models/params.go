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

package models

import (
	"bytes"
	"encoding/json"
)

type InitParams struct {
	DBPath string `json:"dbPath"`
}

type FilePathParams struct {
	FilePath string `json:"filePath" validate:"required"`
}

type FilePathsParams struct {
	FilePaths []string `json:"filePaths" validate:"required"`
}

type LimitParams struct {
	Limit *int `json:"limit" validate:"omitempty,gte=0"`
}

type WatchedSegmentParams struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtefield=Start"`
}

type MetadataParams struct {
	Duration         *float64               `json:"duration" validate:"omitempty,gte=0"`
	Size             *int64                 `json:"size" validate:"omitempty,gte=0"`
	CreatedAt        *string                `json:"createdAt"`
	Rating           *int                   `json:"rating" validate:"omitempty,min=0,max=5"`
	ExtractionStatus *string                `json:"extractionStatus" validate:"omitempty,oneof=pending success failed"`
	FilePath         string                 `json:"filePath" validate:"required"`
	WatchedSegments  []WatchedSegmentParams `json:"watchedSegments" validate:"omitempty,dive"`
}

type BulkUpsertMetadataParams struct {
	Items []MetadataParams `json:"items" validate:"required,dive"`
}

type SetRatingParams struct {
	Rating   *int   `json:"rating" validate:"required,min=0,max=5"`
	FilePath string `json:"filePath" validate:"required"`
}

type AddMediaDirectoryParams struct {
	Path string `json:"path" validate:"required"`
	Type string `json:"type" validate:"omitempty,oneof=local google-drive"`
	Name string `json:"name"`
}

type AddMediaDirectoriesParams struct {
	Directories []AddMediaDirectoryParams `json:"directories" validate:"required,dive"`
}

type DirectoryPathParams struct {
	Path string `json:"path" validate:"required"`
}

type SetDirectoryActiveStateParams struct {
	IsActive *bool  `json:"isActive" validate:"required"`
	Path     string `json:"path" validate:"required"`
}

// CriteriaParam accepts playlist criteria either as a JSON object or as a
// string holding the serialized object.
type CriteriaParam string

func (c *CriteriaParam) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = CriteriaParam(s)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*c = ""
		return nil
	}
	*c = CriteriaParam(trimmed)
	return nil
}

type CreateSmartPlaylistParams struct {
	Name     string        `json:"name" validate:"required,playlistname"`
	Criteria CriteriaParam `json:"criteria" validate:"required"`
}

type UpdateSmartPlaylistParams struct {
	Name     string        `json:"name" validate:"required,playlistname"`
	Criteria CriteriaParam `json:"criteria" validate:"required"`
	ID       int64         `json:"id" validate:"gt=0"`
}

type SmartPlaylistIDParams struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type ExecuteSmartPlaylistParams struct {
	ID       *int64         `json:"id" validate:"required_without=Criteria"`
	Criteria *CriteriaParam `json:"criteria" validate:"required_without=ID"`
}

type GetSettingParams struct {
	Key string `json:"key" validate:"required,max=255"`
}

type SetSettingParams struct {
	Key   string `json:"key" validate:"required,max=255"`
	Value string `json:"value"`
}

type CacheAlbumsParams struct {
	Albums json.RawMessage `json:"albums" validate:"required"`
}
