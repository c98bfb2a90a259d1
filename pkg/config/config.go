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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "LUMEN_CFG"
)

type Values struct {
	Database     Database `toml:"database"`
	API          API      `toml:"api,omitempty"`
	Worker       Worker   `toml:"worker"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

type Database struct {
	// Filename is relative to the data dir unless absolute.
	Filename string `toml:"filename"`
}

type Worker struct {
	ParamChunkSize  int `toml:"param_chunk_size"`
	StatConcurrency int `toml:"stat_concurrency"`
	PendingLimit    int `toml:"pending_limit"`
}

type API struct {
	// Listen enables the websocket transport on a loopback address, for
	// example "127.0.0.1:7597". Empty keeps the worker on stdio.
	Listen string `toml:"listen,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Database: Database{
		Filename: MetaDbFile,
	},
	Worker: Worker{
		ParamChunkSize:  900,
		StatConcurrency: 50,
		PendingLimit:    100,
	},
}

type Instance struct {
	cfgPath  string
	dataDir  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads config.toml from configDir, writing the defaults to disk
// first if no file exists. LUMEN_CFG overrides the file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		dataDir:  configDir,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// file values are unmarshalled on top of the defaults
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// DatabasePath resolves the configured database filename against the
// directory the config was loaded from.
func (c *Instance) DatabasePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name := c.vals.Database.Filename
	if name == "" {
		name = MetaDbFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.dataDir, name)
}

func (c *Instance) Worker() Worker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Worker
}

func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.Listen
}

func (c *Instance) SetAPIListen(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.API.Listen = addr
}
