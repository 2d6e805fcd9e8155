// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
)

// table is a rendered result: header plus rows of cells.
type table struct {
	header []string
	rows   [][]string
}

// emit writes v as indented JSON, or t through tablewriter.
func emit(w io.Writer, format string, v interface{}, t table) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tablewriter.NewWriter(w)
	tw.Header(t.header)
	for _, row := range t.rows {
		if err := tw.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	return tw.Render()
}

// readJSONFile decodes a JSON array file into out.
func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// splitList parses a comma separated flag value, dropping blanks.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
