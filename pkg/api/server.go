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
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const APIPath = "/api"

var ErrNotLoopback = errors.New("websocket transport only listens on loopback addresses")

// NewRouter serves the message protocol over a websocket at APIPath. Each
// websocket message is one request and gets exactly one reply.
func NewRouter(d *Dispatcher, limiter *RemoteRateLimiter) (http.Handler, *melody.Melody) {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*", "app://*", "file://*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{},
	}))

	session := melody.New()
	session.Config.MaxMessageSize = MaxMessageSize
	session.Upgrader.CheckOrigin = func(r *http.Request) bool {
		return isLoopbackRemote(r.RemoteAddr)
	}

	r.Get(APIPath, func(w http.ResponseWriter, r *http.Request) {
		err := session.HandleRequest(w, r)
		if err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	session.HandleMessage(rateLimitedHandler(limiter, func(s *melody.Session, msg []byte) {
		// heartbeat
		if string(msg) == "ping" {
			if err := s.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		if err := s.Write(d.HandleMessage(msg)); err != nil {
			log.Error().Err(err).Msg("error sending reply")
		}
	}))

	return r, session
}

func isLoopbackRemote(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Listen binds addr after checking it is a loopback address.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return nil, fmt.Errorf("%w: %s", ErrNotLoopback, addr)
		}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// ServeWebsocket runs the websocket transport on ln until ctx is cancelled.
func ServeWebsocket(ctx context.Context, d *Dispatcher, ln net.Listener) error {
	limiter := NewRemoteRateLimiter(clockwork.NewRealClock())
	limiter.StartCleanup(ctx)

	router, session := NewRouter(d, limiter)
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("websocket transport listening")
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		_ = session.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("websocket transport failed: %w", err)
	case <-ctx.Done():
		log.Debug().Msg("closing websocket transport via context cancellation")
	}

	if err := session.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
		log.Warn().Err(err).Msg("error closing websocket sessions")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down websocket transport: %w", err)
	}
	<-errs
	return nil
}
