// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package evaal talks to an EvAAL competition server, which replays a
// recorded trial in real time and scores the position estimates it gets back.
package evaal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
)

// ErrTrialFinished is returned by NextData once the trial has no more data.
var ErrTrialFinished = errors.New("evaal: trial finished")

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// Client issues requests for a single trial.
type Client struct {
	base  string
	trial string
	http  *http.Client
}

// NewClient returns a client for trial on the server at baseURL, e.g.
// "http://127.0.0.1:5000/evaalapi/". A nil httpClient uses DefaultTimeout.
func NewClient(baseURL, trial string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/") + "/",
		trial: trial,
		http:  httpClient,
	}
}

// Trial returns the trial name.
func (c *Client) Trial() string { return c.trial }

// Reload rewinds the trial to its start.
func (c *Client) Reload(ctx context.Context) error {
	_, err := c.get(ctx, "/reload", nil)
	return err
}

// State fetches and parses the trial state.
func (c *Client) State(ctx context.Context) (TrialState, error) {
	body, err := c.get(ctx, "/state", nil)
	if err != nil {
		return TrialState{}, err
	}
	return ParseState(firstLine(body))
}

// NextData requests the sensor lines up to horizon seconds ahead without
// submitting a position.
func (c *Client) NextData(ctx context.Context, horizon float64) ([]string, error) {
	q := url.Values{}
	q.Set("horizon", formatFloat(horizon, -1))
	return c.nextData(ctx, q)
}

// NextDataWithPosition submits pose as the current estimate and returns the
// next batch of sensor lines. Coordinates are sent with one decimal.
func (c *Client) NextDataWithPosition(ctx context.Context, pose orientation.Pose) ([]string, error) {
	q := url.Values{}
	q.Set("position", FormatPosition(pose))
	return c.nextData(ctx, q)
}

func (c *Client) nextData(ctx context.Context, q url.Values) ([]string, error) {
	body, err := c.get(ctx, "/nextdata", q)
	if err != nil {
		return nil, err
	}
	return SplitLines(body), nil
}

// Estimates fetches every estimate the server has recorded for the trial.
// The header line is skipped; unparsable lines are returned as an error.
func (c *Client) Estimates(ctx context.Context) ([]Estimate, error) {
	body, err := c.get(ctx, "/estimates", nil)
	if err != nil {
		return nil, err
	}
	lines := SplitLines(body)
	if len(lines) > 0 {
		lines = lines[1:]
	}
	out := make([]Estimate, 0, len(lines))
	for i, l := range lines {
		est, err := ParseEstimate(l)
		if err != nil {
			return nil, fmt.Errorf("estimates line %d: %w", i+2, err)
		}
		out = append(out, est)
	}
	return out, nil
}

// Log fetches the server side log of the trial.
func (c *Client) Log(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/log", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.base + url.PathEscape(c.trial) + path
	if len(q) > 0 {
		// Keep commas readable: the server splits position on them.
		u += "?" + strings.ReplaceAll(q.Encode(), "%2C", ",")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed && path == "/nextdata":
		return nil, ErrTrialFinished
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.Path, e.Code, e.Body)
}

// SplitLines splits a response body into lines, dropping blank ones.
func SplitLines(body []byte) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(string(body)))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func firstLine(body []byte) string {
	if lines := SplitLines(body); len(lines) > 0 {
		return lines[0]
	}
	return ""
}
