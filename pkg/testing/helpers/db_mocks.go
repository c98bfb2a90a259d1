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

// Package helpers provides test fixtures for the store: a testify mock of
// MetaDBI and a real SQLite store in a temp dir.
//
// Example usage:
//
//	db := helpers.NewMockMetaDBI()
//	db.On("RecordView", "/media/a.mp4").Return(nil)
//
//	err := MyFunction(db)
//
//	require.NoError(t, err)
//	db.AssertExpectations(t)
package helpers

import (
	"database/sql"

	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockMetaDBI is a mock implementation of database.MetaDBI. Errors set with
// Return are passed through unchanged.
type MockMetaDBI struct {
	mock.Mock
}

var _ database.MetaDBI = (*MockMetaDBI)(nil)

func NewMockMetaDBI() *MockMetaDBI {
	return &MockMetaDBI{}
}

// GenericDBI methods
func (m *MockMetaDBI) Open() error {
	return m.Called().Error(0)
}

func (m *MockMetaDBI) UnsafeGetSQLDb() *sql.DB {
	args := m.Called()
	if db, ok := args.Get(0).(*sql.DB); ok {
		return db
	}
	return nil
}

func (m *MockMetaDBI) Allocate() error {
	return m.Called().Error(0)
}

func (m *MockMetaDBI) MigrateUp() error {
	return m.Called().Error(0)
}

func (m *MockMetaDBI) Vacuum() error {
	return m.Called().Error(0)
}

func (m *MockMetaDBI) Close() error {
	return m.Called().Error(0)
}

func (m *MockMetaDBI) GetDBPath() string {
	return m.Called().String(0)
}

// views
func (m *MockMetaDBI) RecordView(path string) error {
	return m.Called(path).Error(0)
}

func (m *MockMetaDBI) GetViewCounts(paths []string) (map[string]int64, error) {
	args := m.Called(paths)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *MockMetaDBI) GetRecentlyViewed(limit int) ([]database.ViewRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]database.ViewRecord)
	return records, args.Error(1)
}

// metadata
func (m *MockMetaDBI) UpsertMetadata(update *database.MetadataUpdate) error {
	return m.Called(update).Error(0)
}

func (m *MockMetaDBI) BulkUpsertMetadata(updates []database.MetadataUpdate) (int, error) {
	args := m.Called(updates)
	return args.Int(0), args.Error(1)
}

func (m *MockMetaDBI) GetMetadata(paths []string) (map[string]database.MetadataRecord, error) {
	args := m.Called(paths)
	records, _ := args.Get(0).(map[string]database.MetadataRecord)
	return records, args.Error(1)
}

func (m *MockMetaDBI) GetAllMetadata() (map[string]database.MetadataRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).(map[string]database.MetadataRecord)
	return records, args.Error(1)
}

func (m *MockMetaDBI) GetMetadataDetail(path string) (*database.MetadataRecord, error) {
	args := m.Called(path)
	record, _ := args.Get(0).(*database.MetadataRecord)
	return record, args.Error(1)
}

func (m *MockMetaDBI) GetPendingExtractions(limit int) ([]database.PendingExtraction, error) {
	args := m.Called(limit)
	pending, _ := args.Get(0).([]database.PendingExtraction)
	return pending, args.Error(1)
}

// directories
func (m *MockMetaDBI) AddMediaDirectory(dir database.MediaDirectory) (database.MediaDirectory, error) {
	args := m.Called(dir)
	added, _ := args.Get(0).(database.MediaDirectory)
	return added, args.Error(1)
}

func (m *MockMetaDBI) AddMediaDirectories(dirs []database.MediaDirectory) ([]database.MediaDirectory, error) {
	args := m.Called(dirs)
	added, _ := args.Get(0).([]database.MediaDirectory)
	return added, args.Error(1)
}

func (m *MockMetaDBI) RemoveMediaDirectory(path string) error {
	return m.Called(path).Error(0)
}

func (m *MockMetaDBI) GetMediaDirectories() ([]database.MediaDirectory, error) {
	args := m.Called()
	dirs, _ := args.Get(0).([]database.MediaDirectory)
	return dirs, args.Error(1)
}

func (m *MockMetaDBI) SetDirectoryActiveState(path string, active bool) error {
	return m.Called(path, active).Error(0)
}

// smart playlists
func (m *MockMetaDBI) CreateSmartPlaylist(name, criteria string) (int64, error) {
	args := m.Called(name, criteria)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *MockMetaDBI) GetSmartPlaylists() ([]database.SmartPlaylist, error) {
	args := m.Called()
	playlists, _ := args.Get(0).([]database.SmartPlaylist)
	return playlists, args.Error(1)
}

func (m *MockMetaDBI) GetSmartPlaylist(id int64) (database.SmartPlaylist, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(database.SmartPlaylist)
	return p, args.Error(1)
}

func (m *MockMetaDBI) UpdateSmartPlaylist(id int64, name, criteria string) error {
	return m.Called(id, name, criteria).Error(0)
}

func (m *MockMetaDBI) DeleteSmartPlaylist(id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockMetaDBI) ExecuteSmartPlaylist(criteria string) ([]database.PlaylistItem, error) {
	args := m.Called(criteria)
	items, _ := args.Get(0).([]database.PlaylistItem)
	return items, args.Error(1)
}

// settings
func (m *MockMetaDBI) GetSetting(key string) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockMetaDBI) SetSetting(key, value string) error {
	return m.Called(key, value).Error(0)
}

func (m *MockMetaDBI) GetCacheEntry(key string) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockMetaDBI) SetCacheEntry(key, value string) error {
	return m.Called(key, value).Error(0)
}
