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

package methods

import (
	"encoding/json"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/api/models/requests"
	"github.com/LumenProject/lumen-core/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

// AlbumsCacheKey is the cache entry holding the serialized album tree.
const AlbumsCacheKey = "albums"

//nolint:gocritic // single-use parameter in API handler
func HandleGetSetting(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received get setting request")

	var params models.GetSettingParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	value, ok, err := env.Database.GetSetting(params.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return value, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSetSetting(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received set setting request")

	var params models.SetSettingParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.SetSetting(params.Key, params.Value)
}

// HandleGetCachedAlbums returns the cached album tree as raw JSON.
//
//nolint:gocritic // single-use parameter in API handler
func HandleGetCachedAlbums(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received cached albums request")

	value, ok, err := env.Database.GetCacheEntry(AlbumsCacheKey)
	if err != nil {
		return nil, err
	}
	if !ok || !json.Valid([]byte(value)) {
		return nil, nil
	}
	return json.RawMessage(value), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleCacheAlbums(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received cache albums request")

	var params models.CacheAlbumsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.SetCacheEntry(AlbumsCacheKey, string(params.Albums))
}

//nolint:gocritic // single-use parameter in API handler
func HandleVacuum(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received vacuum request")
	return nil, env.Database.Vacuum()
}
