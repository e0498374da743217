// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"
)

// LineSource batches the lines of a stream by wall-clock interval.
type LineSource struct {
	rc       io.ReadCloser
	interval time.Duration
	lines    chan string
	err      error // set before lines is closed
	log      *zap.Logger
}

// OpenSerial opens portName at baud and returns a LineSource over it.
func OpenSerial(portName string, baud int, interval time.Duration, log *zap.Logger) (*LineSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if log != nil {
		log.Info("serial: port opened", zap.String("port", portName), zap.Int("baud", baud))
	}
	return NewLineSource(port, interval, log), nil
}

// NewLineSource starts reading rc in the background. Every NextBatch call
// returns the lines received during one interval.
func NewLineSource(rc io.ReadCloser, interval time.Duration, log *zap.Logger) *LineSource {
	if log == nil {
		log = zap.NewNop()
	}
	s := &LineSource{
		rc:       rc,
		interval: interval,
		lines:    make(chan string, 1024),
		log:      log,
	}
	go s.read()
	return s
}

func (s *LineSource) read() {
	defer close(s.lines)

	reader := bufio.NewReader(s.rc)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			s.lines <- line
		}
		if err != nil {
			if err != io.EOF {
				s.log.Warn("serial: read error", zap.Error(err))
				err = fmt.Errorf("serial read: %w", err)
			}
			s.err = err
			return
		}
	}
}

// NextBatch waits one interval and returns the lines collected. When the
// stream has ended it returns the remaining lines, then the read error
// (io.EOF for a clean end).
func (s *LineSource) NextBatch(ctx context.Context) ([]string, error) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	var batch []string
	for {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case line, ok := <-s.lines:
			if !ok {
				if len(batch) > 0 {
					return batch, nil
				}
				return nil, s.err
			}
			batch = append(batch, line)
		case <-timer.C:
			return batch, nil
		}
	}
}

// Close closes the underlying stream.
func (s *LineSource) Close() error { return s.rc.Close() }
