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

package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// NewStream speaks the newline-delimited protocol: requests are written to
// w and replies are read from r until it is exhausted, which closes the
// client.
func NewStream(r io.Reader, w io.Writer) *Client {
	var mu syncutil.Mutex
	c := New(func(msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if _, err := w.Write(append(msg, '\n')); err != nil {
			return err
		}
		return nil
	})

	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
		for scanner.Scan() {
			c.Deliver(scanner.Bytes())
		}
		err := scanner.Err()
		if err != nil {
			log.Warn().Err(err).Msg("error reading replies")
		}
		c.Close(err)
	}()

	return c
}

// Dial connects to the worker's websocket transport, for example
// "ws://127.0.0.1:7597/api". The returned close function disconnects.
func Dial(ctx context.Context, rawURL string) (*Client, func() error, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid worker url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to worker: %w", err)
	}

	var mu syncutil.Mutex
	c := New(func(msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, msg)
	})

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) &&
					!errors.Is(err, net.ErrClosed) {
					log.Debug().Err(err).Msg("websocket read ended")
				}
				c.Close(err)
				return
			}
			c.Deliver(msg)
		}
	}()

	return c, conn.Close, nil
}
