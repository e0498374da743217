// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package record

import (
	"strconv"
	"strings"
)

// Separator between fields of a sensor line.
const Separator = ";"

// Value is one parsed column. Numeric columns that fail to parse keep
// their raw text with Numeric set to false.
type Value struct {
	Num     float64
	Text    string
	Numeric bool
}

// Record is a normalized sensor line: its kind plus named fields.
// Trailing columns missing from the line are absent from Fields.
type Record struct {
	Kind   Kind
	Fields map[string]Value
}

// Float returns the numeric value of col.
func (r Record) Float(col string) (float64, bool) {
	v, ok := r.Fields[col]
	if !ok || !v.Numeric {
		return 0, false
	}
	return v.Num, true
}

// Text returns the raw text of col.
func (r Record) Text(col string) (string, bool) {
	v, ok := r.Fields[col]
	if !ok {
		return "", false
	}
	return v.Text, true
}

// Normalize parses one "KIND;f1;f2;..." line. It returns false for blank
// lines and unknown kinds; the caller skips those.
func Normalize(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, false
	}

	parts := strings.Split(line, Separator)
	kind, ok := ParseKind(parts[0])
	if !ok {
		return Record{}, false
	}
	return Fields(kind, parts[1:]), true
}

// Fields maps positional values onto the schema of kind.
func Fields(kind Kind, values []string) Record {
	cols := columns[kind]
	rec := Record{Kind: kind, Fields: make(map[string]Value, len(cols))}

	for i, col := range cols {
		if i >= len(values) {
			break
		}
		raw := values[i]
		if isIdentifier(col) {
			rec.Fields[col] = Value{Text: raw}
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			rec.Fields[col] = Value{Text: raw}
			continue
		}
		rec.Fields[col] = Value{Num: f, Text: raw, Numeric: true}
	}
	return rec
}
