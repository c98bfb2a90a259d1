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

// Package smartfilter compiles saved smart playlist criteria into a
// parameterized WHERE clause over the metadata and view tables.
package smartfilter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength     = 100
	MaxCriteriaLength = 10000
	// MaxDaysSinceView keeps the cutoff arithmetic well inside int64.
	MaxDaysSinceView = 36500
)

var (
	ErrEmptyName         = errors.New("playlist name is required")
	ErrNameTooLong       = fmt.Errorf("playlist name exceeds %d characters", MaxNameLength)
	ErrEmptyCriteria     = errors.New("playlist criteria is required")
	ErrCriteriaTooLong   = fmt.Errorf("playlist criteria exceeds %d bytes", MaxCriteriaLength)
	ErrCriteriaNotObject = errors.New("playlist criteria must be a JSON object")
)

// Criteria is the declarative filter stored with a smart playlist. A nil
// field means the threshold is not set.
type Criteria struct {
	MinRating        *float64 `json:"minRating,omitempty" validate:"omitempty,min=0,max=5"`
	MinDuration      *float64 `json:"minDuration,omitempty" validate:"omitempty,min=0"`
	MaxDuration      *float64 `json:"maxDuration,omitempty" validate:"omitempty,min=0"`
	MinViews         *int64   `json:"minViews,omitempty" validate:"omitempty,min=0"`
	MaxViews         *int64   `json:"maxViews,omitempty" validate:"omitempty,min=0"`
	MinDaysSinceView *float64 `json:"minDaysSinceView,omitempty" validate:"omitempty,min=0,max=36500"`
}

var criteriaValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseCriteria decodes and checks a serialized criteria object. Unknown
// keys are ignored so newer clients can store extra hints.
func ParseCriteria(raw string) (Criteria, error) {
	var c Criteria

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return c, ErrEmptyCriteria
	}
	if len(raw) > MaxCriteriaLength {
		return c, ErrCriteriaTooLong
	}
	if trimmed[0] != '{' {
		return c, ErrCriteriaNotObject
	}

	if err := json.Unmarshal(trimmed, &c); err != nil {
		return c, fmt.Errorf("invalid playlist criteria: %w", err)
	}

	if err := criteriaValidator.Struct(&c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return c, fmt.Errorf("invalid playlist criteria: %s must be %s %s",
				jsonFieldName(fe.StructField()), boundWord(fe.Tag()), fe.Param())
		}
		return c, fmt.Errorf("invalid playlist criteria: %w", err)
	}

	return c, nil
}

// ValidatePlaylist checks a playlist definition before it is written.
func ValidatePlaylist(name, criteria string) (Criteria, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Criteria{}, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Criteria{}, ErrNameTooLong
	}
	return ParseCriteria(criteria)
}

// IsEmpty reports whether c sets no thresholds at all.
func (c *Criteria) IsEmpty() bool {
	return len(c.predicates(0)) == 0
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func boundWord(tag string) string {
	switch tag {
	case "min":
		return "at least"
	case "max":
		return "at most"
	default:
		return tag
	}
}
