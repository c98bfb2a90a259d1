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

// PlaylistCriteria provides serialized smart playlist criteria
var PlaylistCriteria = struct {
	Everything     string
	Favourites     string
	LongUnwatched  string
	ShortAndRare   string
	Malformed      string
	NegativeRating string
}{
	Everything:     `{}`,
	Favourites:     `{"minRating":4}`,
	LongUnwatched:  `{"minDuration":3600,"minDaysSinceView":30}`,
	ShortAndRare:   `{"maxDuration":300,"maxViews":1}`,
	Malformed:      `{"minRating":`,
	NegativeRating: `{"minRating":-1}`,
}

// SmartPlaylist is a name and criteria pair ready for storage.
type SmartPlaylist struct {
	Name     string
	Criteria string
}

// NewFavouritesPlaylist creates a playlist of highly rated media
func NewFavouritesPlaylist() SmartPlaylist {
	return SmartPlaylist{Name: "Favourites", Criteria: PlaylistCriteria.Favourites}
}

// NewUnwatchedFeaturesPlaylist creates a playlist of long media not seen
// for a month
func NewUnwatchedFeaturesPlaylist() SmartPlaylist {
	return SmartPlaylist{Name: "Unwatched Features", Criteria: PlaylistCriteria.LongUnwatched}
}

// SamplePlaylists returns a collection of sample playlists for testing
func SamplePlaylists() []SmartPlaylist {
	return []SmartPlaylist{
		NewFavouritesPlaylist(),
		NewUnwatchedFeaturesPlaylist(),
		{Name: "Everything", Criteria: PlaylistCriteria.Everything},
	}
}
