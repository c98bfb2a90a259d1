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
func HandleRecordMediaView(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received record media view request")

	var params models.FilePathParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.RecordView(params.FilePath)
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetMediaViewCounts(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received media view counts request")

	var params models.FilePathsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	counts, err := env.Database.GetViewCounts(params.FilePaths)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetRecentlyViewed(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received recently viewed request")

	var params models.LimitParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, err
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	records, err := env.Database.GetRecentlyViewed(limit)
	if err != nil {
		return nil, err
	}

	resp := make([]models.ViewRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, models.ViewRecordResponse{
			FilePath:   r.FilePath,
			FileHash:   r.FileHash,
			ViewCount:  r.ViewCount,
			LastViewed: r.LastViewed,
		})
	}
	return resp, nil
}
