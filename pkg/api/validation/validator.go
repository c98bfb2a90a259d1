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

// Package validation checks operation payloads with go-playground/validator
// before they reach the store.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/LumenProject/lumen-core/pkg/database/smartfilter"
	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing payload")
	ErrInvalidParams = errors.New("invalid payload")
)

type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("playlistname", validatePlaylistName)

	return &Validator{validate: v}
}

// DefaultValidator is the shared instance used by the handlers.
var DefaultValidator = NewValidator()

func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal decodes a payload and validates it. Returns
// ErrMissingParams if the payload is empty, ErrInvalidParams if it does not
// decode, or an *Error listing the failed fields.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return DefaultValidator.Validate(dest)
}

// UnmarshalOptional is ValidateAndUnmarshal for operations whose payload may
// be left out entirely.
func UnmarshalOptional[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return ValidateAndUnmarshal(params, dest)
}

// validatePlaylistName checks the trimmed name length in characters.
func validatePlaylistName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= smartfilter.MaxNameLength
}
