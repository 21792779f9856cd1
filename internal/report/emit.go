// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	yaml "gopkg.in/yaml.v2"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// EmitJSON writes v as JSON to w.
func EmitJSON(v any, w io.Writer) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// EmitYAML writes v as YAML to w.
func EmitYAML(v any, w io.Writer) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// EmitChanges serializes the change sequence in the requested machine format.
func EmitChanges(changes []differ.ChangeRecord, format string, w io.Writer) error {
	switch format {
	case "json":
		return EmitJSON(changes, w)
	case "yaml":
		return EmitYAML(changes, w)
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// IndexTable renders one evaluated index as a table of packages with their
// versions and evaluation status. Used by the show command.
func IndexTable(ix *pkgs.Index, opts TableOptions, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	if ix.Len() == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	var rows [][]string
	for _, r := range ix.Records() {
		version := r.Version
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{r.Path.String(), r.Name, version, r.Status.String()})
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(2)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		t = t.Headers("path", "name", "version", "status").BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}
