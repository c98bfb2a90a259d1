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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LumenProject/lumen-core/pkg/api/methods"
	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/api/models/requests"
	"github.com/LumenProject/lumen-core/pkg/api/validation"
	"github.com/LumenProject/lumen-core/pkg/config"
	"github.com/LumenProject/lumen-core/pkg/database"
	"github.com/LumenProject/lumen-core/pkg/database/metadb"
	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingOperation = errors.New("missing operation")
	ErrParse            = errors.New("parse error")
	ErrInternal         = errors.New("internal error")
)

type dispatcherState int

const (
	stateUninitialized dispatcherState = iota
	stateReady
	stateClosed
)

func (s dispatcherState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Opener opens and migrates the store at path.
type Opener func(ctx context.Context, path string) (database.MetaDBI, error)

// DefaultOpener opens the SQLite store on the real filesystem, tuned by the
// worker section of the config.
func DefaultOpener(cfg *config.Instance) Opener {
	return func(ctx context.Context, path string) (database.MetaDBI, error) {
		w := cfg.Worker()
		db, err := metadb.OpenMetaDB(ctx, path, metadb.Options{
			Clock:           clockwork.NewRealClock(),
			Fs:              afero.NewOsFs(),
			ChunkSize:       w.ParamChunkSize,
			StatConcurrency: w.StatConcurrency,
			PendingLimit:    w.PendingLimit,
		})
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	// views
	models.OperationRecordMediaView:    methods.HandleRecordMediaView,
	models.OperationGetMediaViewCounts: methods.HandleGetMediaViewCounts,
	models.OperationGetRecentlyViewed:  methods.HandleGetRecentlyViewed,
	// metadata
	models.OperationUpsertMetadata:        methods.HandleUpsertMetadata,
	models.OperationBulkUpsertMetadata:    methods.HandleBulkUpsertMetadata,
	models.OperationGetMetadata:           methods.HandleGetMetadata,
	models.OperationGetAllMetadata:        methods.HandleGetAllMetadata,
	models.OperationGetMetadataDetail:     methods.HandleGetMetadataDetail,
	models.OperationSetRating:             methods.HandleSetRating,
	models.OperationGetPendingExtractions: methods.HandleGetPendingExtractions,
	// directories
	models.OperationAddMediaDirectory:       methods.HandleAddMediaDirectory,
	models.OperationAddMediaDirectories:     methods.HandleAddMediaDirectories,
	models.OperationRemoveMediaDirectory:    methods.HandleRemoveMediaDirectory,
	models.OperationGetMediaDirectories:     methods.HandleGetMediaDirectories,
	models.OperationSetDirectoryActiveState: methods.HandleSetDirectoryActiveState,
	// smart playlists
	models.OperationCreateSmartPlaylist:  methods.HandleCreateSmartPlaylist,
	models.OperationGetSmartPlaylists:    methods.HandleGetSmartPlaylists,
	models.OperationUpdateSmartPlaylist:  methods.HandleUpdateSmartPlaylist,
	models.OperationDeleteSmartPlaylist:  methods.HandleDeleteSmartPlaylist,
	models.OperationExecuteSmartPlaylist: methods.HandleExecuteSmartPlaylist,
	// settings
	models.OperationGetSetting:      methods.HandleGetSetting,
	models.OperationSetSetting:      methods.HandleSetSetting,
	models.OperationGetCachedAlbums: methods.HandleGetCachedAlbums,
	models.OperationCacheAlbums:     methods.HandleCacheAlbums,
	// maintenance
	models.OperationVacuum: methods.HandleVacuum,
}

// Dispatcher owns the store between init and close and routes every
// message to exactly one handler. Messages are handled one at a time in
// arrival order, whichever transport they come from.
type Dispatcher struct {
	ctx   context.Context
	cfg   *config.Instance
	open  Opener
	db    database.MetaDBI
	state dispatcherState
	mu    syncutil.Mutex
}

func NewDispatcher(ctx context.Context, cfg *config.Instance, open Opener) *Dispatcher {
	return &Dispatcher{
		ctx:  ctx,
		cfg:  cfg,
		open: open,
	}
}

// HandleMessage decodes one raw message and returns the encoded reply.
// Every message gets a reply, including ones that fail to decode.
func (d *Dispatcher) HandleMessage(msg []byte) []byte {
	var resp models.Response

	var req models.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Error().Err(err).Msg("message is not a valid request")
		resp = models.Response{
			ID:     models.NullMessageID,
			Result: models.ErrorResult(fmt.Errorf("%w: %w", ErrParse, err)),
		}
	} else {
		resp = d.Dispatch(&req)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Str("operation", req.Operation).Msg("error marshalling response")
		data, _ = json.Marshal(models.Response{
			ID:     resp.ID,
			Result: models.ErrorResult(fmt.Errorf("error marshalling response: %w", err)),
		})
	}
	return data
}

// Dispatch runs a decoded request and returns its reply with the id echoed.
func (d *Dispatcher) Dispatch(req *models.Request) models.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := req.ID
	if id.IsAbsent() {
		id = models.NullMessageID
	}

	start := time.Now()
	result := d.dispatch(req)

	ev := log.Debug()
	if !result.Success {
		ev = log.Warn().Str("error", result.Error)
	}
	ev.Str("id", id.String()).
		Str("operation", req.Operation).
		Dur("took", time.Since(start)).
		Msg("handled message")

	return models.Response{ID: id, Result: result}
}

func (d *Dispatcher) dispatch(req *models.Request) (result models.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("operation", req.Operation).
				Interface("panic", r).
				Msg("recovered from handler panic")
			result = models.ErrorResult(fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()

	switch req.Operation {
	case "":
		return models.ErrorResult(ErrMissingOperation)
	case models.OperationInit:
		return d.handleInit(req.Payload)
	case models.OperationClose:
		return d.handleClose()
	}

	fn, ok := methodMap[req.Operation]
	if !ok {
		return models.ErrorResult(fmt.Errorf("%w: %s", ErrUnknownOperation, req.Operation))
	}

	if d.state != stateReady {
		return models.ErrorResult(database.ErrNotInitialized)
	}

	data, err := fn(requests.RequestEnv{
		Ctx:      d.ctx,
		Database: d.db,
		Config:   d.cfg,
		Params:   req.Payload,
		ID:       req.ID.Key(),
	})
	if err != nil {
		return models.ErrorResult(err)
	}
	return models.SuccessResult(data)
}

func (d *Dispatcher) handleInit(payload json.RawMessage) models.Result {
	var params models.InitParams
	if err := validation.UnmarshalOptional(payload, &params); err != nil {
		return models.ErrorResult(err)
	}

	path := params.DBPath
	if path == "" {
		path = d.cfg.DatabasePath()
	}

	if d.state == stateReady {
		log.Info().Str("path", d.db.GetDBPath()).Msg("closing database before re-init")
		if err := d.closeDB(); err != nil {
			return models.ErrorResult(err)
		}
	}

	db, err := d.open(d.ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("error opening database")
		return models.ErrorResult(fmt.Errorf("failed to open database: %w", err))
	}

	d.db = db
	d.state = stateReady
	log.Info().Str("path", path).Msg("database initialized")
	return models.SuccessResult(nil)
}

func (d *Dispatcher) handleClose() models.Result {
	if d.state != stateReady {
		return models.ErrorResult(database.ErrNotInitialized)
	}
	if err := d.closeDB(); err != nil {
		return models.ErrorResult(err)
	}
	log.Info().Msg("database closed")
	return models.SuccessResult(nil)
}

// closeDB releases the store. The dispatcher is closed afterwards even when
// the store reports an error, the handle is not reused.
func (d *Dispatcher) closeDB() error {
	err := d.db.Close()
	d.db = nil
	d.state = stateClosed
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Shutdown closes the store if one is open.
func (d *Dispatcher) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateReady {
		return nil
	}
	return d.closeDB()
}

func (d *Dispatcher) State() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.String()
}
