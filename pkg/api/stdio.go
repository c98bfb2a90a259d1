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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/LumenProject/lumen-core/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// MaxMessageSize bounds a single newline-delimited message on the stdio
// transport. Bulk upserts of a full library fit well inside it.
const MaxMessageSize = 64 << 20

var ErrMessageTooLarge = errors.New("message too large")

type inbound struct {
	msg     []byte
	size    int
	tooLong bool
}

// Serve reads newline-delimited JSON requests from r and writes one reply
// line per request to w, in arrival order. It returns nil when r reaches
// EOF, or the context error if ctx is cancelled first. A line over
// MaxMessageSize is skipped and answered with an error.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	return d.serve(ctx, r, w, MaxMessageSize)
}

func (d *Dispatcher) serve(ctx context.Context, r io.Reader, w io.Writer, limit int) error {
	lines := make(chan inbound)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		readErr <- readMessages(ctx, bufio.NewReaderSize(r, 64*1024), limit, lines)
	}()

	out := bufio.NewWriter(w)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("stdio transport stopped via context cancellation")
			return ctx.Err()
		case in, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-readErr:
				default:
				}
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("error reading message: %w", err)
				}
				log.Debug().Msg("stdio transport reached end of input")
				return nil
			}

			var reply []byte
			if in.tooLong {
				reply = oversizedReply(in.size, limit)
			} else {
				reply = d.HandleMessage(in.msg)
			}
			if _, err := out.Write(append(reply, '\n')); err != nil {
				return fmt.Errorf("error writing reply: %w", err)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("error writing reply: %w", err)
			}
		}
	}
}

func oversizedReply(size, limit int) []byte {
	log.Error().Int("size", size).Int("limit", limit).Msg("skipping oversized message")
	data, _ := json.Marshal(models.Response{
		ID: models.NullMessageID,
		Result: models.ErrorResult(
			fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrMessageTooLarge, size, limit),
		),
	})
	return data
}

// readMessages sends every non-blank line to lines until EOF, which is
// reported as nil.
func readMessages(ctx context.Context, br *bufio.Reader, limit int, lines chan<- inbound) error {
	for {
		in, err := readLine(br, limit)
		if in.tooLong || len(in.msg) > 0 {
			select {
			case lines <- in:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// readLine reads up to the next newline. Bytes past limit are counted but
// not kept.
func readLine(br *bufio.Reader, limit int) (inbound, error) {
	var (
		in  inbound
		buf []byte
	)
	for {
		chunk, err := br.ReadSlice('\n')
		in.size += len(chunk)
		if !in.tooLong {
			// room for a trailing \r\n
			if len(buf)+len(chunk) > limit+2 {
				in.tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		in.size -= len(chunk) - len(bytes.TrimRight(chunk, "\r\n"))
		line := bytes.TrimRight(buf, "\r\n")
		if !in.tooLong && len(line) > limit {
			in.tooLong = true
		}
		if !in.tooLong {
			in.msg = bytes.TrimSpace(line)
		}
		return in, err
	}
}
