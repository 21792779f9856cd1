// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	fieldStyle  = lipgloss.NewStyle().Faint(true)

	kindStyles = map[Kind]lipgloss.Style{
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Changed: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

// Browse opens an interactive browser over the change sequence. Navigation
// is up/down, SPACE expands the field diffs of the selected record, Q or
// ESCAPE quits.
func Browse(changes []ChangeRecord) error {
	if len(changes) == 0 {
		fmt.Println("No changes.")
		return nil
	}
	p := tea.NewProgram(model{items: changes, expanded: make(map[int]bool)})
	_, err := p.Run()
	return err
}

type model struct {
	items    []ChangeRecord
	cursor   int
	expanded map[int]bool
	height   int
}

func (m model) Init() tea.Cmd { return tea.WindowSize() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.items) - 1
		case " ", "enter":
			m.expanded[m.cursor] = !m.expanded[m.cursor]
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d changes:", len(m.items))) + "\n\n")

	// Keep the cursor on screen without a full viewport: show a window of
	// items centered on the cursor.
	window := 20
	if m.height > 8 {
		window = m.height - 8
	}
	start := 0
	if m.cursor >= window {
		start = m.cursor - window + 1
	}
	end := start + window
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := start; i < end; i++ {
		cr := m.items[i]
		cursor := " "
		if m.cursor == i {
			cursor = cursorStyle.Render(">")
		}

		kind := kindStyles[cr.Kind].Render(fmt.Sprintf("%-7s", cr.Kind))
		fmt.Fprintf(&b, "%s %s %s%s\n", cursor, kind, cr.Path, summarize(cr))

		if m.expanded[i] {
			for _, fd := range cr.Fields {
				b.WriteString(fieldStyle.Render(fmt.Sprintf("      %s: %q -> %q", fd.Field, fd.Old, fd.New)) + "\n")
			}
		}
	}

	b.WriteString("\n" + helpStyle.Render("SPACE: expand, UP/DOWN: move, Q/ESCAPE: quit") + "\n")
	return b.String()
}

// summarize renders the one-line tail for a change row.
func summarize(cr ChangeRecord) string {
	switch cr.Kind {
	case Added:
		if cr.After != nil && cr.After.Version != "" {
			return "  " + cr.After.Version
		}
	case Removed:
		if cr.Before != nil && cr.Before.Version != "" {
			return "  " + cr.Before.Version
		}
	case Changed:
		for _, fd := range cr.Fields {
			if fd.Field == "version" {
				return fmt.Sprintf("  %s -> %s", fd.Old, fd.New)
			}
		}
		return fmt.Sprintf("  %d fields", len(cr.Fields))
	}
	return ""
}
