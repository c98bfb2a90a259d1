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
	"bytes"
	"encoding/json"
	"errors"
)

// MessageID correlates a request with its reply. The caller may use a string
// or a number; the raw JSON is kept so the id is echoed back exactly as it
// arrived.
type MessageID struct {
	json.RawMessage
}

// ErrInvalidMessageID is returned when an id is an object or array.
var ErrInvalidMessageID = errors.New("message id cannot be an object or array")

func (id *MessageID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return ErrInvalidMessageID
	}
	id.RawMessage = make([]byte, len(data))
	copy(id.RawMessage, data)
	return nil
}

// MarshalJSON writes the id as received, or null if there was none.
func (id MessageID) MarshalJSON() ([]byte, error) {
	if len(id.RawMessage) == 0 {
		return []byte("null"), nil
	}
	return id.RawMessage, nil
}

func (id *MessageID) IsAbsent() bool {
	return id == nil || len(id.RawMessage) == 0
}

func (id *MessageID) IsNull() bool {
	return id != nil && bytes.Equal(id.RawMessage, []byte("null"))
}

func (id *MessageID) String() string {
	if id == nil || len(id.RawMessage) == 0 {
		return "null"
	}
	return string(id.RawMessage)
}

// Key returns the raw JSON form for use as a map key.
func (id *MessageID) Key() string {
	if id == nil {
		return ""
	}
	return string(id.RawMessage)
}

var NullMessageID = MessageID{RawMessage: []byte("null")}

func NewStringID(s string) MessageID {
	b, _ := json.Marshal(s)
	return MessageID{RawMessage: b}
}

func NewNumberID(n int64) MessageID {
	b, _ := json.Marshal(n)
	return MessageID{RawMessage: b}
}
