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
	"net"
	"time"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// MessagesPerSecond is generous, the UI fans out view count lookups
	// when a large folder opens.
	MessagesPerSecond = 500
	BurstSize         = 1000

	limiterMaxAge          = 10 * time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RemoteRateLimiter keeps one token bucket per remote host.
type RemoteRateLimiter struct {
	clock    clockwork.Clock
	limiters map[string]*rateLimiterEntry
	mu       syncutil.Mutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRemoteRateLimiter(clock clockwork.Clock) *RemoteRateLimiter {
	return &RemoteRateLimiter{
		clock:    clock,
		limiters: make(map[string]*rateLimiterEntry),
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Allow reports whether a message from addr may be handled now.
func (rl *RemoteRateLimiter) Allow(addr string) bool {
	host := remoteHost(addr)
	now := rl.clock.Now()

	rl.mu.Lock()
	entry, ok := rl.limiters[host]
	if !ok {
		entry = &rateLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(MessagesPerSecond), BurstSize),
		}
		rl.limiters[host] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Cleanup drops limiters for hosts not seen recently.
func (rl *RemoteRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for host, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterMaxAge {
			delete(rl.limiters, host)
			log.Debug().Str("host", host).Msg("removed stale rate limiter")
		}
	}
}

func (rl *RemoteRateLimiter) len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// StartCleanup runs Cleanup periodically until ctx is cancelled.
func (rl *RemoteRateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := rl.clock.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// rateLimitedHandler answers over-limit messages with an error reply
// instead of passing them on.
func rateLimitedHandler(
	limiter *RemoteRateLimiter,
	handler func(*melody.Session, []byte),
) func(*melody.Session, []byte) {
	return func(s *melody.Session, msg []byte) {
		if limiter.Allow(s.Request.RemoteAddr) {
			handler(s, msg)
			return
		}

		log.Warn().
			Str("remote", s.Request.RemoteAddr).
			Int("msg_size", len(msg)).
			Msg("websocket rate limit exceeded")

		id := models.NullMessageID
		var req models.Request
		if err := json.Unmarshal(msg, &req); err == nil {
			id = req.ID
		}
		reply, err := json.Marshal(models.Response{
			ID:     id,
			Result: models.ErrorResult(ErrRateLimited),
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal rate limit reply")
			return
		}
		if err := s.Write(reply); err != nil {
			log.Error().Err(err).Msg("failed to send rate limit reply")
		}
	}
}
