// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSource replays recorded lines in batches spanning horizon seconds of
// sensor time, the way the competition server hands them out.
type FileSource struct {
	sc      *bufio.Scanner
	closer  io.Closer
	horizon float64

	pending    string
	hasPending bool
}

// OpenFile opens a recorded trial log.
func OpenFile(path string, horizon float64) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	s := NewFileSource(f, horizon)
	s.closer = f
	return s, nil
}

// NewFileSource batches the lines of r.
func NewFileSource(r io.Reader, horizon float64) *FileSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &FileSource{sc: sc, horizon: horizon}
}

// NextBatch returns every line whose sensor timestamp is below the first
// timestamp of the batch plus the horizon. Lines without a timestamp ride
// along with the batch they appear in.
func (s *FileSource) NextBatch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		batch []string
		end   float64
		begun bool
	)
	for {
		line, ok := s.next()
		if !ok {
			if err := s.sc.Err(); err != nil {
				return batch, fmt.Errorf("replay read: %w", err)
			}
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}

		if ts, ok := sensorTimestamp(line); ok {
			switch {
			case !begun:
				begun = true
				end = ts + s.horizon
			case ts >= end:
				s.pending, s.hasPending = line, true
				return batch, nil
			}
		}
		batch = append(batch, line)
	}
}

func (s *FileSource) next() (string, bool) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, true
	}
	for s.sc.Scan() {
		if line := strings.TrimSpace(s.sc.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

// Close closes the file opened by OpenFile.
func (s *FileSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
