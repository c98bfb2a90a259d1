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
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, d *Dispatcher) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ln, err := Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- ServeWebsocket(ctx, d, ln)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("websocket transport did not stop")
		}
	})

	return "ws://" + ln.Addr().String() + APIPath
}

func TestListen_RejectsNonLoopback(t *testing.T) {
	t.Parallel()

	for _, addr := range []string{"0.0.0.0:0", "192.168.1.10:7597", ":7597"} {
		_, err := Listen(context.Background(), addr)
		require.ErrorIs(t, err, ErrNotLoopback, addr)
	}

	_, err := Listen(context.Background(), "no-port")
	require.Error(t, err)
}

func TestServeWebsocket_RoundTrip(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(t)
	url := startTestServer(t, d)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))

	dbPath := filepath.Join(t.TempDir(), "ws.db")
	require.NoError(t, conn.WriteJSON(map[string]any{
		"id":        "init-1",
		"operation": "init",
		"payload":   map[string]string{"dbPath": dbPath},
	}))
	var r testReply
	require.NoError(t, conn.ReadJSON(&r))
	require.True(t, r.Result.Success, r.Result.Error)
	assert.JSONEq(t, `"init-1"`, string(r.ID))

	require.NoError(t, conn.WriteJSON(map[string]any{
		"id":        7,
		"operation": "addMediaDirectory",
		"payload":   map[string]string{"path": "/srv/media/Films"},
	}))
	require.NoError(t, conn.ReadJSON(&r))
	require.True(t, r.Result.Success, r.Result.Error)

	var dir struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Name     string `json:"name"`
		IsActive bool   `json:"isActive"`
	}
	require.NoError(t, json.Unmarshal(r.Result.Data, &dir))
	assert.NotEmpty(t, dir.ID)
	assert.Equal(t, "local", dir.Type)
	assert.Equal(t, "Films", dir.Name)
	assert.True(t, dir.IsActive)
}
