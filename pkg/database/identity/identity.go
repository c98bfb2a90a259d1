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

// Package identity derives stable file identities. An identity survives
// renames and restarts because it is computed from a file's size and
// modification time rather than from its path.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"strconv"
	"strings"

	"github.com/LumenProject/lumen-core/pkg/database/batch"
	"github.com/LumenProject/lumen-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// RemoteScheme prefixes paths that live on a cloud drive. The remainder of
// the path is the provider's own file id.
const RemoteScheme = "gdrive://"

// KnownLookup returns identities the store already holds for some of the
// given paths. Paths it doesn't know are simply left out of the map.
type KnownLookup func(paths []string) (map[string]string, error)

type Resolver struct {
	fs         afero.Fs
	windowSize int
}

// NewResolver returns a resolver that stats files through fs, running at
// most windowSize stats at once.
func NewResolver(fs afero.Fs, windowSize int) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if windowSize <= 0 {
		windowSize = batch.DefaultWindowSize
	}
	return &Resolver{fs: fs, windowSize: windowSize}
}

// IsRemote reports whether path uses the cloud drive scheme.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, RemoteScheme)
}

// HashPath is the fallback identity for files that can't be stat'd.
func HashPath(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

func fingerprint(size, modMillis int64) string {
	h := sha256.New()
	_, _ = h.Write([]byte(strconv.FormatInt(size, 10)))
	_, _ = h.Write([]byte{'-'})
	_, _ = h.Write([]byte(strconv.FormatInt(modMillis, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Resolve returns the identity for path. It never fails: remote paths
// return the provider id, stat failures fall back to hashing the path.
func (r *Resolver) Resolve(path string) string {
	if IsRemote(path) {
		return strings.TrimPrefix(path, RemoteScheme)
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		// missing files are routine, they moved between scan and view
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("stat failed, using path hash as identity")
		}
		return HashPath(path)
	}

	return fingerprint(info.Size(), info.ModTime().UnixMilli())
}

// ResolveMany returns an identity for every path in paths. Identities the
// store already knows are taken from known without touching the disk, the
// rest are stat'd in fixed-size concurrent windows. Only a known lookup
// failure is returned as an error.
func (r *Resolver) ResolveMany(paths []string, known KnownLookup) (map[string]string, error) {
	unique := batch.Unique(paths)
	ids := make(map[string]string, len(unique))

	local := make([]string, 0, len(unique))
	for _, p := range unique {
		if IsRemote(p) {
			ids[p] = strings.TrimPrefix(p, RemoteScheme)
			continue
		}
		local = append(local, p)
	}

	if known != nil && len(local) > 0 {
		found, err := known(local)
		if err != nil {
			return nil, err
		}
		unknown := local[:0:0]
		for _, p := range local {
			if id, ok := found[p]; ok && id != "" {
				ids[p] = id
				continue
			}
			unknown = append(unknown, p)
		}
		local = unknown
	}

	if len(local) == 0 {
		return ids, nil
	}

	log.Debug().
		Int("paths", len(unique)).
		Int("stat", len(local)).
		Msg("resolving unknown identities")

	var mu syncutil.Mutex
	for _, window := range batch.Chunk(local, r.windowSize) {
		var g errgroup.Group
		for _, p := range window {
			g.Go(func() error {
				id := r.Resolve(p)
				mu.Lock()
				ids[p] = id
				mu.Unlock()
				return nil
			})
		}
		// Resolve can't fail so the group never reports an error
		_ = g.Wait()
	}

	return ids, nil
}
