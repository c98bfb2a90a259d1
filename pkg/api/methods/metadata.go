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

func metadataUpdate(p *models.MetadataParams) database.MetadataUpdate {
	u := database.MetadataUpdate{
		FilePath:         p.FilePath,
		Duration:         p.Duration,
		Size:             p.Size,
		CreatedAt:        p.CreatedAt,
		Rating:           p.Rating,
		ExtractionStatus: p.ExtractionStatus,
	}
	// an explicit empty list clears the stored segments, null leaves them
	if p.WatchedSegments != nil {
		u.WatchedSegments = make([]database.WatchedSegment, 0, len(p.WatchedSegments))
		for _, s := range p.WatchedSegments {
			u.WatchedSegments = append(u.WatchedSegments, database.WatchedSegment{
				Start: s.Start,
				End:   s.End,
			})
		}
	}
	return u
}

func metadataResponse(r *database.MetadataRecord) models.MetadataResponse {
	resp := models.MetadataResponse{
		FilePath:         r.FilePath,
		FileHash:         r.FileHash,
		Duration:         r.Duration,
		Size:             r.Size,
		CreatedAt:        r.CreatedAt,
		Rating:           r.Rating,
		ExtractionStatus: r.ExtractionStatus,
	}
	if r.WatchedSegments != nil {
		resp.WatchedSegments = make([]models.WatchedSegmentResponse, 0, len(r.WatchedSegments))
		for _, s := range r.WatchedSegments {
			resp.WatchedSegments = append(resp.WatchedSegments, models.WatchedSegmentResponse{
				Start: s.Start,
				End:   s.End,
			})
		}
	}
	return resp
}

func metadataMap(records map[string]database.MetadataRecord) map[string]models.MetadataResponse {
	resp := make(map[string]models.MetadataResponse, len(records))
	for path, r := range records {
		resp[path] = metadataResponse(&r)
	}
	return resp
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpsertMetadata(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received upsert metadata request")

	var params models.MetadataParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	u := metadataUpdate(&params)
	return nil, env.Database.UpsertMetadata(&u)
}

//nolint:gocritic // single-use parameter in API handler
func HandleBulkUpsertMetadata(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received bulk upsert metadata request")

	var params models.BulkUpsertMetadataParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	updates := make([]database.MetadataUpdate, 0, len(params.Items))
	for i := range params.Items {
		updates = append(updates, metadataUpdate(&params.Items[i]))
	}

	n, err := env.Database.BulkUpsertMetadata(updates)
	if err != nil {
		return nil, err
	}
	return models.BulkUpsertMetadataResponse{Count: n}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetMetadata(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received get metadata request")

	var params models.FilePathsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	records, err := env.Database.GetMetadata(params.FilePaths)
	if err != nil {
		return nil, err
	}
	return metadataMap(records), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetAllMetadata(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received get all metadata request")

	records, err := env.Database.GetAllMetadata()
	if err != nil {
		return nil, err
	}
	return metadataMap(records), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetMetadataDetail(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received metadata detail request")

	var params models.FilePathParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	record, err := env.Database.GetMetadataDetail(params.FilePath)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return metadataResponse(record), nil
}

// HandleSetRating is a rating-only upsert.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSetRating(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received set rating request")

	var params models.SetRatingParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	return nil, env.Database.UpsertMetadata(&database.MetadataUpdate{
		FilePath: params.FilePath,
		Rating:   params.Rating,
	})
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetPendingExtractions(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received pending extractions request")

	var params models.LimitParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, err
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	pending, err := env.Database.GetPendingExtractions(limit)
	if err != nil {
		return nil, err
	}

	resp := make([]models.PendingExtractionResponse, 0, len(pending))
	for _, p := range pending {
		resp = append(resp, models.PendingExtractionResponse{
			FilePath: p.FilePath,
			FileHash: p.FileHash,
		})
	}
	return resp, nil
}
