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

// Package client calls the worker from the caller's side of the message
// boundary. Replies may arrive in any order and are matched to their call
// by id.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed           = errors.New("client closed")
	ErrRequestCancelled = errors.New("request cancelled")
	ErrInvalidParams    = errors.New("invalid params")
)

// OperationError is a failure reported by the worker for one call.
type OperationError struct {
	Operation string
	Message   string
}

func (e *OperationError) Error() string {
	return e.Operation + ": " + e.Message
}

type reply struct {
	ID     models.MessageID `json:"id"`
	Result struct {
		Error   string          `json:"error"`
		Data    json.RawMessage `json:"data"`
		Success bool            `json:"success"`
	} `json:"result"`
}

// Client sends requests through send and routes replies handed to Deliver
// back to the waiting Call.
type Client struct {
	send    func([]byte) error
	pending map[string]chan reply
	done    chan struct{}
	err     error
	mu      syncutil.Mutex
}

func New(send func([]byte) error) *Client {
	return &Client{
		send:    send,
		pending: make(map[string]chan reply),
		done:    make(chan struct{}),
	}
}

// Call sends one request and waits for its reply. payload may be nil, a
// json.RawMessage, or any value that marshals to a JSON object.
func (c *Client) Call(ctx context.Context, operation string, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		if !json.Valid(p) {
			return nil, ErrInvalidParams
		}
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		raw = b
	}

	id := models.NewStringID(uuid.NewString())
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id.Key()] = ch
	c.mu.Unlock()

	data, err := json.Marshal(models.Request{
		ID:        id,
		Operation: operation,
		Payload:   raw,
	})
	if err != nil {
		c.forget(id.Key())
		return nil, fmt.Errorf("error marshalling request: %w", err)
	}

	if err := c.send(data); err != nil {
		c.forget(id.Key())
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	select {
	case r := <-ch:
		if !r.Result.Success {
			return nil, &OperationError{Operation: operation, Message: r.Result.Error}
		}
		return r.Result.Data, nil
	case <-ctx.Done():
		c.forget(id.Key())
		return nil, fmt.Errorf("%w: %w", ErrRequestCancelled, ctx.Err())
	case <-c.done:
		return nil, c.closeErr()
	}
}

// CallInto is Call followed by decoding the reply data into dest.
func (c *Client) CallInto(ctx context.Context, operation string, payload, dest any) error {
	data, err := c.Call(ctx, operation, payload)
	if err != nil {
		return err
	}
	if len(data) == 0 || dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("error decoding %s reply: %w", operation, err)
	}
	return nil
}

// Deliver hands a raw reply to the call waiting on its id. Replies for
// unknown or abandoned ids are dropped.
func (c *Client) Deliver(msg []byte) {
	var r reply
	if err := json.Unmarshal(msg, &r); err != nil {
		log.Warn().Err(err).Msg("dropping undecodable reply")
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[r.ID.Key()]
	delete(c.pending, r.ID.Key())
	c.mu.Unlock()

	if !ok {
		log.Debug().Str("id", r.ID.String()).Msg("dropping reply with no waiting call")
		return
	}
	ch <- r
}

// Close fails every waiting call with err, or ErrClosed if err is nil.
func (c *Client) Close(err error) {
	if err == nil {
		err = ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	clear(c.pending)
	close(c.done)
}

func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Client) forget(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
