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
	"encoding/json"
)

const (
	OperationInit  = "init"
	OperationClose = "close"

	OperationRecordMediaView    = "recordMediaView"
	OperationGetMediaViewCounts = "getMediaViewCounts"
	OperationGetRecentlyViewed  = "getRecentlyViewed"

	OperationUpsertMetadata        = "upsertMetadata"
	OperationBulkUpsertMetadata    = "bulkUpsertMetadata"
	OperationGetMetadata           = "getMetadata"
	OperationGetAllMetadata        = "getAllMetadata"
	OperationGetMetadataDetail     = "getMetadataDetail"
	OperationSetRating             = "setRating"
	OperationGetPendingExtractions = "getPendingExtractions"

	OperationAddMediaDirectory       = "addMediaDirectory"
	OperationAddMediaDirectories     = "addMediaDirectories"
	OperationRemoveMediaDirectory    = "removeMediaDirectory"
	OperationGetMediaDirectories     = "getMediaDirectories"
	OperationSetDirectoryActiveState = "setDirectoryActiveState"

	OperationCreateSmartPlaylist  = "createSmartPlaylist"
	OperationGetSmartPlaylists    = "getSmartPlaylists"
	OperationUpdateSmartPlaylist  = "updateSmartPlaylist"
	OperationDeleteSmartPlaylist  = "deleteSmartPlaylist"
	OperationExecuteSmartPlaylist = "executeSmartPlaylist"

	OperationGetSetting      = "getSetting"
	OperationSetSetting      = "setSetting"
	OperationGetCachedAlbums = "getCachedAlbums"
	OperationCacheAlbums     = "cacheAlbums"

	OperationVacuum = "vacuum"
)

// Request is an inbound message. Payload is decoded by the handler that
// owns the operation.
type Request struct {
	ID        MessageID       `json:"id"`
	Operation string          `json:"operation"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Result is the uniform outcome of every operation. Data is omitted for
// operations with nothing to return and Error is only set on failure.
type Result struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

type Response struct {
	ID     MessageID `json:"id"`
	Result Result    `json:"result"`
}

func SuccessResult(data any) Result {
	return Result{Success: true, Data: data}
}

func ErrorResult(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
