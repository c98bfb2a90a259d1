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

package database

import (
	"database/sql"
	"errors"
	"time"
)

/*
 * Shared record types and the store interface. The concrete store lives in
 * metadb, handlers only ever see MetaDBI.
 */

const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"
)

const (
	DirectoryTypeLocal       = "local"
	DirectoryTypeGoogleDrive = "google-drive"
)

var (
	ErrNotInitialized    = errors.New("database not initialized")
	ErrNullSQL           = errors.New("MetaDB is not connected")
	ErrPlaylistNotFound  = errors.New("smart playlist not found")
	ErrDirectoryNotFound = errors.New("media directory not found")
	ErrIdentityMissing   = errors.New("could not resolve file identity")
)

/*
 * Structs for SQL records
 */

type ViewRecord struct {
	LastViewed *time.Time
	FileHash   string
	FilePath   string
	ViewCount  int64
}

// WatchedSegment is a played interval in seconds.
type WatchedSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// MetadataRecord is a stored metadata row. WatchedSegments is only populated
// by the detail lookup.
type MetadataRecord struct {
	Duration         *float64
	Size             *int64
	CreatedAt        *string
	FileHash         string
	FilePath         string
	ExtractionStatus string
	WatchedSegments  []WatchedSegment
	Rating           int
}

// MetadataUpdate is a partial metadata write. Nil fields leave the stored
// value untouched, a nil WatchedSegments slice means "not provided" while an
// empty one clears the list.
type MetadataUpdate struct {
	Duration         *float64
	Size             *int64
	CreatedAt        *string
	Rating           *int
	ExtractionStatus *string
	FilePath         string
	WatchedSegments  []WatchedSegment
}

type MediaDirectory struct {
	ID       string
	Path     string
	Type     string
	Name     string
	IsActive bool
}

type SmartPlaylist struct {
	CreatedAt time.Time
	Name      string
	Criteria  string
	DBID      int64
}

type PlaylistItem struct {
	Duration   *float64
	Size       *int64
	LastViewed *time.Time
	FilePath   string
	FileHash   string
	Rating     int
	ViewCount  int64
}

type PendingExtraction struct {
	FilePath string
	FileHash string
}

/*
 * Interfaces for external deps
 */

type GenericDBI interface {
	Open() error
	UnsafeGetSQLDb() *sql.DB
	Allocate() error
	MigrateUp() error
	Vacuum() error
	Close() error
	GetDBPath() string
}

type MetaDBI interface {
	GenericDBI

	RecordView(path string) error
	GetViewCounts(paths []string) (map[string]int64, error)
	GetRecentlyViewed(limit int) ([]ViewRecord, error)

	UpsertMetadata(update *MetadataUpdate) error
	BulkUpsertMetadata(updates []MetadataUpdate) (int, error)
	GetMetadata(paths []string) (map[string]MetadataRecord, error)
	GetAllMetadata() (map[string]MetadataRecord, error)
	GetMetadataDetail(path string) (*MetadataRecord, error)
	GetPendingExtractions(limit int) ([]PendingExtraction, error)

	AddMediaDirectory(dir MediaDirectory) (MediaDirectory, error)
	AddMediaDirectories(dirs []MediaDirectory) ([]MediaDirectory, error)
	RemoveMediaDirectory(path string) error
	GetMediaDirectories() ([]MediaDirectory, error)
	SetDirectoryActiveState(path string, active bool) error

	CreateSmartPlaylist(name, criteria string) (int64, error)
	GetSmartPlaylists() ([]SmartPlaylist, error)
	GetSmartPlaylist(id int64) (SmartPlaylist, error)
	UpdateSmartPlaylist(id int64, name, criteria string) error
	DeleteSmartPlaylist(id int64) error
	ExecuteSmartPlaylist(criteria string) ([]PlaylistItem, error)

	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	GetCacheEntry(key string) (string, bool, error)
	SetCacheEntry(key, value string) error
}
