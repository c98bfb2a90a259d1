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
	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/api/models/requests"
	"github.com/LumenProject/lumen-core/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleCreateSmartPlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received create smart playlist request")

	var params models.CreateSmartPlaylistParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	id, err := env.Database.CreateSmartPlaylist(params.Name, string(params.Criteria))
	if err != nil {
		return nil, err
	}
	return models.CreateSmartPlaylistResponse{ID: id}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetSmartPlaylists(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received smart playlists request")

	playlists, err := env.Database.GetSmartPlaylists()
	if err != nil {
		return nil, err
	}

	resp := make([]models.SmartPlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		resp = append(resp, models.SmartPlaylistResponse{
			ID:        p.DBID,
			Name:      p.Name,
			Criteria:  p.Criteria,
			CreatedAt: p.CreatedAt,
		})
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpdateSmartPlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received update smart playlist request")

	var params models.UpdateSmartPlaylistParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.UpdateSmartPlaylist(params.ID, params.Name, string(params.Criteria))
}

//nolint:gocritic // single-use parameter in API handler
func HandleDeleteSmartPlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received delete smart playlist request")

	var params models.SmartPlaylistIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.DeleteSmartPlaylist(params.ID)
}

// HandleExecuteSmartPlaylist evaluates a saved playlist by id, or ad-hoc
// criteria when no id is given.
//
//nolint:gocritic // single-use parameter in API handler
func HandleExecuteSmartPlaylist(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received execute smart playlist request")

	var params models.ExecuteSmartPlaylistParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	var criteria string
	if params.ID != nil {
		p, err := env.Database.GetSmartPlaylist(*params.ID)
		if err != nil {
			return nil, err
		}
		criteria = p.Criteria
	} else {
		criteria = string(*params.Criteria)
	}

	items, err := env.Database.ExecuteSmartPlaylist(criteria)
	if err != nil {
		return nil, err
	}

	resp := make([]models.PlaylistItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, models.PlaylistItemResponse{
			FilePath:   item.FilePath,
			FileHash:   item.FileHash,
			Duration:   item.Duration,
			Size:       item.Size,
			Rating:     item.Rating,
			ViewCount:  item.ViewCount,
			LastViewed: item.LastViewed,
		})
	}
	return resp, nil
}
