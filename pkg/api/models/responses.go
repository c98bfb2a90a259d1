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
	"time"
)

type ViewRecordResponse struct {
	LastViewed *time.Time `json:"lastViewed"`
	FilePath   string     `json:"filePath"`
	FileHash   string     `json:"fileHash"`
	ViewCount  int64      `json:"viewCount"`
}

type WatchedSegmentResponse struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type MetadataResponse struct {
	Duration         *float64                 `json:"duration"`
	Size             *int64                   `json:"size"`
	CreatedAt        *string                  `json:"createdAt"`
	FilePath         string                   `json:"filePath"`
	FileHash         string                   `json:"fileHash"`
	ExtractionStatus string                   `json:"extractionStatus"`
	WatchedSegments  []WatchedSegmentResponse `json:"watchedSegments,omitempty"`
	Rating           int                      `json:"rating"`
}

type BulkUpsertMetadataResponse struct {
	Count int `json:"count"`
}

type PendingExtractionResponse struct {
	FilePath string `json:"filePath"`
	FileHash string `json:"fileHash"`
}

type MediaDirectoryResponse struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type CreateSmartPlaylistResponse struct {
	ID int64 `json:"id"`
}

type SmartPlaylistResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Criteria  string    `json:"criteria"`
	ID        int64     `json:"id"`
}

type PlaylistItemResponse struct {
	Duration   *float64   `json:"duration"`
	Size       *int64     `json:"size"`
	LastViewed *time.Time `json:"lastViewed"`
	FilePath   string     `json:"filePath"`
	FileHash   string     `json:"fileHash"`
	Rating     int        `json:"rating"`
	ViewCount  int64      `json:"viewCount"`
}
