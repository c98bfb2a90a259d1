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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/LumenProject/lumen-core/pkg/api"
	"github.com/LumenProject/lumen-core/pkg/config"
	"github.com/LumenProject/lumen-core/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	versionOpt := flag.Bool(
		"version",
		false,
		"print version and exit",
	)
	listenOpt := flag.String(
		"listen",
		"",
		"serve the websocket transport on this loopback address instead of stdio",
	)
	quietOpt := flag.Bool(
		"quiet",
		false,
		"only log to the log file, not stderr",
	)
	flag.Parse()

	if *versionOpt {
		_, _ = fmt.Fprintf(os.Stdout, "lumen-worker %s\n", config.AppVersion)
		return nil
	}

	dataDir := helpers.DataDir()
	logDir := helpers.LogDir()
	if err := helpers.EnsureDirectories(dataDir, logDir); err != nil {
		return fmt.Errorf("error creating directories: %w", err)
	}

	// stdout carries the protocol, logs go to stderr
	var logWriters []io.Writer
	if !*quietOpt {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}
	if err := helpers.InitLogging(logDir, logWriters); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dataDir, config.BaseDefaults)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		return fmt.Errorf("error loading config: %w", err)
	}
	cfg.SetDebugLogging(cfg.DebugLogging())

	log.Info().
		Str("version", config.AppVersion).
		Str("dataDir", dataDir).
		Msg("starting metadata worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Fatal().Msgf("panic: %v", r)
		}
	}()

	d := api.NewDispatcher(ctx, cfg, api.DefaultOpener(cfg))
	defer func() {
		if err := d.Shutdown(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	listen := *listenOpt
	if listen == "" {
		listen = cfg.APIListen()
	}

	if listen != "" {
		ln, err := api.Listen(ctx, listen)
		if err != nil {
			return err
		}
		err = api.ServeWebsocket(ctx, d, ln)
		if err != nil {
			log.Error().Err(err).Msg("websocket transport stopped")
			return err
		}
		return nil
	}

	err = d.Serve(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("stdio transport stopped")
		return err
	}
	log.Info().Msg("metadata worker stopped")
	return nil
}
