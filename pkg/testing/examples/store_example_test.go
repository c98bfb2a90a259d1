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

package examples

import (
	"testing"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/testing/fixtures"
	"github.com/LumenProject/lumen-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetaDBMockUsage demonstrates how to use the store mock with fixtures
func TestMetaDBMockUsage(t *testing.T) {
	t.Parallel()

	t.Run("metadata writes", func(t *testing.T) {
		t.Parallel()
		mockDB := helpers.NewMockMetaDBI()

		updates := fixtures.MetadataUpdates.Collection
		mockDB.On("BulkUpsertMetadata", updates).Return(len(updates), nil)
		mockDB.On("UpsertMetadata", &fixtures.MetadataUpdates.RatingOnly).Return(nil)

		n, err := mockDB.BulkUpsertMetadata(updates)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		err = mockDB.UpsertMetadata(&fixtures.MetadataUpdates.RatingOnly)
		require.NoError(t, err)

		mockDB.AssertExpectations(t)
	})

	t.Run("store errors pass through", func(t *testing.T) {
		t.Parallel()
		mockDB := helpers.NewMockMetaDBI()

		mockDB.On("UpdateSmartPlaylist", int64(9), "Favourites", fixtures.PlaylistCriteria.Favourites).
			Return(database.ErrPlaylistNotFound)

		err := mockDB.UpdateSmartPlaylist(9, "Favourites", fixtures.PlaylistCriteria.Favourites)
		require.ErrorIs(t, err, database.ErrPlaylistNotFound)

		mockDB.AssertExpectations(t)
	})
}

// TestMetaDBRealStoreUsage demonstrates running fixtures against a real
// SQLite store
func TestMetaDBRealStoreUsage(t *testing.T) {
	t.Parallel()
	store := helpers.NewTestMetaDB(t)

	n, err := store.DB.BulkUpsertMetadata(fixtures.MetadataUpdates.Collection)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pending, err := store.DB.GetPendingExtractions(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fixtures.MetadataUpdates.Pending.FilePath, pending[0].FilePath)

	playlist := fixtures.NewFavouritesPlaylist()
	id, err := store.DB.CreateSmartPlaylist(playlist.Name, playlist.Criteria)
	require.NoError(t, err)

	saved, err := store.DB.GetSmartPlaylist(id)
	require.NoError(t, err)
	items, err := store.DB.ExecuteSmartPlaylist(saved.Criteria)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, fixtures.MetadataUpdates.Feature.FilePath, items[0].FilePath)
	assert.Equal(t, 5, items[0].Rating)

	_, err = store.DB.CreateSmartPlaylist("Broken", fixtures.PlaylistCriteria.Malformed)
	require.Error(t, err)

	dirs, err := store.DB.AddMediaDirectories(fixtures.MediaDirectories.Collection)
	require.NoError(t, err)
	assert.Len(t, dirs, 3)
	for _, d := range dirs {
		assert.NotEmpty(t, d.ID)
		assert.True(t, d.IsActive)
	}
}
