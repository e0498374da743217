// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/relabs-tech/indoor_localizer/internal/evaal"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
)

var (
	estimatesHeader = []string{"timestamp", "x", "y", "yaw"}
	reportsHeader   = []string{"timestamp", "x", "y", "yaw", "source", "uwb_corrected"}
)

// WriteEstimatesCSV writes the server side estimates of a trial. The first
// estimate is the origin handed out by the server and is not written.
func WriteEstimatesCSV(path string, ests []evaal.Estimate) error {
	if len(ests) > 0 {
		ests = ests[1:]
	}
	rows := make([][]string, 0, len(ests))
	for _, e := range ests {
		rows = append(rows, []string{
			formatCSVFloat(e.PosTime),
			formatCSVFloat(e.Pose.X),
			formatCSVFloat(e.Pose.Y),
			formatCSVFloat(e.Pose.Yaw),
		})
	}
	return writeCSV(path, estimatesHeader, rows)
}

// WriteReportsCSV writes locally produced estimates.
func WriteReportsCSV(path string, reports []fusion.Report) error {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			formatCSVFloat(r.Timestamp),
			formatCSVFloat(r.Pose.X),
			formatCSVFloat(r.Pose.Y),
			formatCSVFloat(r.Pose.Yaw),
			string(r.Source),
			strconv.FormatBool(r.UWBCorrected),
		})
	}
	return writeCSV(path, reportsHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	cw := csv.NewWriter(bw)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("csv write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("csv flush %s: %w", path, err)
	}
	return f.Close()
}

func formatCSVFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
