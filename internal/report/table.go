// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/aldenparker/nix-update-report/internal/config"
	"github.com/aldenparker/nix-update-report/internal/differ"
)

// TableOptions controls text table rendering.
type TableOptions struct {
	Color  bool
	Titles bool
	Header string
}

// TableWriter renders the change sequence in tabular form honoring color and
// titles options. Output is written to w; nil selects os.Stdout.
func TableWriter(changes []differ.ChangeRecord, opts TableOptions, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	if len(changes) == 0 {
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
	for _, cr := range changes {
		rows = append(rows, []string{
			cr.Kind.String(),
			cr.Path.String(),
			rowSummary(cr),
		})
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
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers("kind", "path", "summary").BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// rowSummary is the one-line rendition of a change for table cells: the
// version for adds/removes, the condensed field summary for changes.
func rowSummary(cr differ.ChangeRecord) string {
	switch cr.Kind {
	case differ.Added:
		return strings.TrimPrefix(recordSummary(cr.After), cr.After.Name+": ")
	case differ.Removed:
		return strings.TrimPrefix(recordSummary(cr.Before), cr.Before.Name+": ")
	}
	// Table cells are single-line; strip any embedded newlines.
	summary := fieldSummary(cr.Fields)
	return strings.ReplaceAll(summary, "\n", " ")
}

// getColors returns configured color values for table rendering. Each color
// is selected based on terminal background so output stays visible for both
// light and dark themes; explicit config values win.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}
