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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/config"
	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/testing/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testReply struct {
	ID     json.RawMessage `json:"id"`
	Result struct {
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Success bool            `json:"success"`
	} `json:"result"`
}

func newTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	clock := clockwork.NewFakeClockAt(helpers.TestEpoch)
	d := NewDispatcher(context.Background(), newTestConfig(t), helpers.NewTestOpener(clock, afero.NewMemMapFs()))
	t.Cleanup(func() { _ = d.Shutdown() })
	return d
}

func send(t *testing.T, d *Dispatcher, msg string) testReply {
	t.Helper()
	var r testReply
	require.NoError(t, json.Unmarshal(d.HandleMessage([]byte(msg)), &r))
	return r
}

func initStore(t *testing.T, d *Dispatcher) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"dbPath": filepath.Join(t.TempDir(), "meta.db")})
	require.NoError(t, err)
	r := send(t, d, `{"id":"init","operation":"init","payload":`+string(payload)+`}`)
	require.True(t, r.Result.Success, r.Result.Error)
}

func TestDispatcher_NotInitialized(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)

	for op := range methodMap {
		r := send(t, d, `{"id":1,"operation":"`+op+`","payload":{}}`)
		assert.False(t, r.Result.Success, op)
		assert.Equal(t, database.ErrNotInitialized.Error(), r.Result.Error, op)
		assert.JSONEq(t, `1`, string(r.ID))
	}

	r := send(t, d, `{"id":2,"operation":"close"}`)
	assert.False(t, r.Result.Success)
	assert.Equal(t, database.ErrNotInitialized.Error(), r.Result.Error)
	assert.Equal(t, "uninitialized", d.State())
}

func TestDispatcher_UnknownOperation(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)

	r := send(t, d, `{"id":"abc","operation":"frobnicate"}`)
	assert.False(t, r.Result.Success)
	assert.Equal(t, "unknown operation: frobnicate", r.Result.Error)
	assert.JSONEq(t, `"abc"`, string(r.ID))

	r = send(t, d, `{"id":"def"}`)
	assert.False(t, r.Result.Success)
	assert.Equal(t, ErrMissingOperation.Error(), r.Result.Error)
}

func TestDispatcher_MalformedMessages(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)

	for _, msg := range []string{`not json`, `{"id":{"x":1},"operation":"init"}`, `[]`} {
		r := send(t, d, msg)
		assert.False(t, r.Result.Success, msg)
		assert.Contains(t, r.Result.Error, "parse error", msg)
		assert.JSONEq(t, `null`, string(r.ID), msg)
	}
}

func TestDispatcher_Lifecycle(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)

	initStore(t, d)
	assert.Equal(t, "ready", d.State())

	r := send(t, d, `{"id":1,"operation":"recordMediaView","payload":{"filePath":"gdrive://abc"}}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.Empty(t, r.Result.Data)

	r = send(t, d, `{"id":2,"operation":"getMediaViewCounts","payload":{"filePaths":["gdrive://abc","gdrive://new"]}}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.JSONEq(t, `{"gdrive://abc":1,"gdrive://new":0}`, string(r.Result.Data))

	r = send(t, d, `{"id":3,"operation":"close"}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.Equal(t, "closed", d.State())

	r = send(t, d, `{"id":4,"operation":"getRecentlyViewed"}`)
	assert.False(t, r.Result.Success)
	assert.Equal(t, database.ErrNotInitialized.Error(), r.Result.Error)

	// closed -> ready
	initStore(t, d)
	r = send(t, d, `{"id":5,"operation":"getRecentlyViewed"}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.JSONEq(t, `[]`, string(r.Result.Data))
}

func TestDispatcher_ReinitClosesPriorStore(t *testing.T) {
	t.Parallel()

	first := helpers.NewMockMetaDBI()
	first.On("GetDBPath").Return("first.db")
	first.On("Close").Return(nil).Once()
	second := helpers.NewMockMetaDBI()
	second.On("Close").Return(nil).Once()

	stores := []database.MetaDBI{first, second}
	opened := 0
	d := NewDispatcher(context.Background(), newTestConfig(t), func(context.Context, string) (database.MetaDBI, error) {
		db := stores[opened]
		opened++
		return db, nil
	})

	r := send(t, d, `{"id":1,"operation":"init","payload":{"dbPath":"first.db"}}`)
	require.True(t, r.Result.Success, r.Result.Error)
	r = send(t, d, `{"id":2,"operation":"init","payload":{"dbPath":"second.db"}}`)
	require.True(t, r.Result.Success, r.Result.Error)

	first.AssertExpectations(t)
	second.AssertNotCalled(t, "Close")

	require.NoError(t, d.Shutdown())
	second.AssertExpectations(t)
}

func TestDispatcher_InitDefaultsToConfigPath(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	var gotPath string
	db := helpers.NewMockMetaDBI()
	db.On("Close").Return(nil)
	d := NewDispatcher(context.Background(), cfg, func(_ context.Context, path string) (database.MetaDBI, error) {
		gotPath = path
		return db, nil
	})
	t.Cleanup(func() { _ = d.Shutdown() })

	r := send(t, d, `{"id":1,"operation":"init"}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.Equal(t, cfg.DatabasePath(), gotPath)
}

func TestDispatcher_OpenFailureStaysUninitialized(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(context.Background(), newTestConfig(t), func(context.Context, string) (database.MetaDBI, error) {
		return nil, errors.New("unable to open database file")
	})

	r := send(t, d, `{"id":1,"operation":"init"}`)
	assert.False(t, r.Result.Success)
	assert.Contains(t, r.Result.Error, "unable to open database file")
	assert.Equal(t, "uninitialized", d.State())
}

func TestDispatcher_RecoversHandlerPanic(t *testing.T) {
	t.Parallel()

	db := helpers.NewMockMetaDBI()
	db.On("RecordView", "/boom.mp4").Panic("boom")
	db.On("RecordView", "/ok.mp4").Return(nil)
	db.On("Close").Return(nil)
	d := NewDispatcher(context.Background(), newTestConfig(t), func(context.Context, string) (database.MetaDBI, error) {
		return db, nil
	})
	t.Cleanup(func() { _ = d.Shutdown() })

	r := send(t, d, `{"id":1,"operation":"init"}`)
	require.True(t, r.Result.Success)

	r = send(t, d, `{"id":2,"operation":"recordMediaView","payload":{"filePath":"/boom.mp4"}}`)
	assert.False(t, r.Result.Success)
	assert.Equal(t, "internal error: boom", r.Result.Error)

	r = send(t, d, `{"id":3,"operation":"recordMediaView","payload":{"filePath":"/ok.mp4"}}`)
	assert.True(t, r.Result.Success, r.Result.Error)
	db.AssertCalled(t, "RecordView", mock.Anything)
}

func TestDispatcher_Dispatch_AbsentIDEchoesNull(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)

	resp := d.Dispatch(&models.Request{Operation: models.OperationVacuum})
	assert.True(t, resp.ID.IsNull())
	assert.False(t, resp.Result.Success)
}

func TestDispatcher_EndToEndPlaylist(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)
	initStore(t, d)

	r := send(t, d, `{"id":1,"operation":"bulkUpsertMetadata","payload":{"items":[
		{"filePath":"gdrive://a","duration":30,"rating":5},
		{"filePath":"gdrive://b","duration":7200,"rating":2}
	]}}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.JSONEq(t, `{"count":2}`, string(r.Result.Data))

	r = send(t, d, `{"id":2,"operation":"createSmartPlaylist","payload":{"name":"Top rated","criteria":{"minRating":4}}}`)
	require.True(t, r.Result.Success, r.Result.Error)
	assert.JSONEq(t, `{"id":1}`, string(r.Result.Data))

	r = send(t, d, `{"id":3,"operation":"executeSmartPlaylist","payload":{"id":1}}`)
	require.True(t, r.Result.Success, r.Result.Error)

	var items []models.PlaylistItemResponse
	require.NoError(t, json.Unmarshal(r.Result.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "gdrive://a", items[0].FilePath)
	assert.Equal(t, 5, items[0].Rating)

	r = send(t, d, `{"id":4,"operation":"createSmartPlaylist","payload":{"name":"","criteria":{}}}`)
	assert.False(t, r.Result.Success)
	assert.Contains(t, r.Result.Error, "name is required")

	r = send(t, d, `{"id":5,"operation":"updateSmartPlaylist","payload":{"id":99,"name":"x","criteria":{}}}`)
	assert.False(t, r.Result.Success)
	assert.Contains(t, r.Result.Error, database.ErrPlaylistNotFound.Error())
}
