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
	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/rs/zerolog/log"
)

func directoryResponse(d *database.MediaDirectory) models.MediaDirectoryResponse {
	return models.MediaDirectoryResponse{
		ID:       d.ID,
		Path:     d.Path,
		Type:     d.Type,
		Name:     d.Name,
		IsActive: d.IsActive,
	}
}

func directoryResponses(dirs []database.MediaDirectory) []models.MediaDirectoryResponse {
	resp := make([]models.MediaDirectoryResponse, 0, len(dirs))
	for i := range dirs {
		resp = append(resp, directoryResponse(&dirs[i]))
	}
	return resp
}

//nolint:gocritic // single-use parameter in API handler
func HandleAddMediaDirectory(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received add media directory request")

	var params models.AddMediaDirectoryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	dir, err := env.Database.AddMediaDirectory(database.MediaDirectory{
		Path: params.Path,
		Type: params.Type,
		Name: params.Name,
	})
	if err != nil {
		return nil, err
	}
	return directoryResponse(&dir), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleAddMediaDirectories(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received add media directories request")

	var params models.AddMediaDirectoriesParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	dirs := make([]database.MediaDirectory, 0, len(params.Directories))
	for _, p := range params.Directories {
		dirs = append(dirs, database.MediaDirectory{
			Path: p.Path,
			Type: p.Type,
			Name: p.Name,
		})
	}

	added, err := env.Database.AddMediaDirectories(dirs)
	if err != nil {
		return nil, err
	}
	return directoryResponses(added), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleRemoveMediaDirectory(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received remove media directory request")

	var params models.DirectoryPathParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.RemoveMediaDirectory(params.Path)
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetMediaDirectories(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received media directories request")

	dirs, err := env.Database.GetMediaDirectories()
	if err != nil {
		return nil, err
	}
	return directoryResponses(dirs), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSetDirectoryActiveState(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received set directory active state request")

	var params models.SetDirectoryActiveStateParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.SetDirectoryActiveState(params.Path, *params.IsActive)
}
