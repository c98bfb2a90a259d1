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

package fixtures

import (
	"github.com/LumenProject/lumen-core/pkg/database"
)

func ptr[T any](v T) *T {
	return &v
}

// Metadata fixture collections for testing

// MetadataUpdates provides sample partial metadata writes
var MetadataUpdates = struct {
	Feature      database.MetadataUpdate
	Short        database.MetadataUpdate
	Pending      database.MetadataUpdate
	RatingOnly   database.MetadataUpdate
	WithSegments database.MetadataUpdate
	Collection   []database.MetadataUpdate
}{
	Feature: database.MetadataUpdate{
		FilePath:         "/media/films/nosferatu.mkv",
		Duration:         ptr(5640.0),
		Size:             ptr(int64(2_147_483_648)),
		CreatedAt:        ptr("2024-11-02T19:30:00Z"),
		Rating:           ptr(5),
		ExtractionStatus: ptr("success"),
	},
	Short: database.MetadataUpdate{
		FilePath:         "/media/clips/intro.mp4",
		Duration:         ptr(42.5),
		Size:             ptr(int64(8_388_608)),
		Rating:           ptr(2),
		ExtractionStatus: ptr("success"),
	},
	Pending: database.MetadataUpdate{
		FilePath:         "/media/clips/unprocessed.mov",
		Size:             ptr(int64(1_048_576)),
		ExtractionStatus: ptr("pending"),
	},
	RatingOnly: database.MetadataUpdate{
		FilePath: "gdrive://1AbCdEfGhIjK",
		Rating:   ptr(4),
	},
	WithSegments: database.MetadataUpdate{
		FilePath: "/media/films/metropolis.mkv",
		Duration: ptr(9180.0),
		WatchedSegments: []database.WatchedSegment{
			{Start: 0, End: 600},
			{Start: 1200.5, End: 1800},
		},
	},
	Collection: []database.MetadataUpdate{
		{
			FilePath:         "/media/films/nosferatu.mkv",
			Duration:         ptr(5640.0),
			Rating:           ptr(5),
			ExtractionStatus: ptr("success"),
		},
		{
			FilePath:         "/media/clips/intro.mp4",
			Duration:         ptr(42.5),
			Rating:           ptr(2),
			ExtractionStatus: ptr("success"),
		},
		{
			FilePath:         "/media/clips/unprocessed.mov",
			ExtractionStatus: ptr("pending"),
		},
	},
}

// MediaDirectories provides sample configured library roots
var MediaDirectories = struct {
	Local      database.MediaDirectory
	Drive      database.MediaDirectory
	Collection []database.MediaDirectory
}{
	Local: database.MediaDirectory{
		Path:     "/media/films",
		Type:     "local",
		Name:     "Films",
		IsActive: true,
	},
	Drive: database.MediaDirectory{
		Path:     "gdrive://folder/1XyZ",
		Type:     "google-drive",
		Name:     "Shared Drive",
		IsActive: true,
	},
	Collection: []database.MediaDirectory{
		{Path: "/media/films", Type: "local", Name: "Films", IsActive: true},
		{Path: "/media/clips", Type: "local", Name: "Clips", IsActive: true},
		{Path: "gdrive://folder/1XyZ", Type: "google-drive", Name: "Shared Drive", IsActive: true},
	},
}
