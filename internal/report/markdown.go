// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dustin/go-humanize"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// Markdown renders the full report in the markdown layout: header, stats by
// system and overall, then per-system added/updated/removed lists.
func Markdown(old, new *pkgs.Index, changes []differ.ChangeRecord, title string) string {
	var b strings.Builder

	heading := "## nix-update-report"
	if title != "" {
		heading += " - " + title
	}
	fmt.Fprintf(&b, "%s\n", heading)
	fmt.Fprintf(&b, "Comparing `%s` to `%s`. Report generated using [`nur`](https://github.com/aldenparker/nix-update-report.git).\n\n",
		old.Revision(), new.Revision())

	writeStats(&b, Collect(old, new, changes))
	writeChanges(&b, changes)

	return b.String()
}

func writeStats(b *strings.Builder, stats Stats) {
	b.WriteString("### Stats\n")
	b.WriteString("#### By System\n")
	for _, system := range stats.Systems() {
		s := stats.BySystem[system]
		fmt.Fprintf(b, "##### %s\n", system)
		fmt.Fprintf(b, "Added: %d\n", s.Added)
		fmt.Fprintf(b, "Updated: %d\n", s.Updated)
		fmt.Fprintf(b, "Removed: %d\n", s.Removed)
		fmt.Fprintf(b, "Total: %d\n\n", s.Total)
	}

	totals := stats.Totals()
	b.WriteString("#### Totals\n")
	fmt.Fprintf(b, "Added Pkgs: %s\n", humanize.Comma(int64(totals.Added)))
	fmt.Fprintf(b, "Updated Pkgs: %s\n", humanize.Comma(int64(totals.Updated)))
	fmt.Fprintf(b, "Removed Pkgs: %s\n", humanize.Comma(int64(totals.Removed)))
	fmt.Fprintf(b, "Pkgs: %s\n", humanize.Comma(int64(totals.Total)))
	fmt.Fprintf(b, "Added Systems: %d\n", len(stats.AddedSystems))
	fmt.Fprintf(b, "Removed Systems: %d\n", len(stats.RemovedSystems))
	fmt.Fprintf(b, "Systems: %d\n\n", stats.TotalSystems)
}

func writeChanges(b *strings.Builder, changes []differ.ChangeRecord) {
	b.WriteString("### Pkg Changes\n")

	bySystem := make(map[string][]differ.ChangeRecord)
	for _, cr := range changes {
		system := systemOf(cr.Path)
		bySystem[system] = append(bySystem[system], cr)
	}

	systems := make([]string, 0, len(bySystem))
	for system := range bySystem {
		systems = append(systems, system)
	}
	sort.Strings(systems)

	for _, system := range systems {
		fmt.Fprintf(b, "#### %s\n", system)
		for _, section := range []struct {
			title string
			kind  differ.Kind
		}{
			{"Added", differ.Added},
			{"Updated", differ.Changed},
			{"Removed", differ.Removed},
		} {
			fmt.Fprintf(b, "##### %s\n", section.title)
			none := true
			for _, cr := range bySystem[system] {
				if cr.Kind != section.kind {
					continue
				}
				none = false
				b.WriteString(ChangeLine(cr))
			}
			if none {
				b.WriteString("None\n")
			}
			b.WriteString("\n")
		}
	}
}

// ChangeLine renders one change as a markdown list entry, including unified
// diffs for multiline field values.
func ChangeLine(cr differ.ChangeRecord) string {
	switch cr.Kind {
	case differ.Added:
		return fmt.Sprintf(" - %s\n", recordSummary(cr.After))
	case differ.Removed:
		return fmt.Sprintf(" - %s\n", recordSummary(cr.Before))
	}

	name := cr.After.Name
	if name == "" {
		name = cr.Path.Leaf()
	}

	line := fmt.Sprintf(" - %s: %s\n", name, fieldSummary(cr.Fields))
	for _, fd := range cr.Fields {
		if strings.Contains(fd.Old, "\n") || strings.Contains(fd.New, "\n") {
			line += multilineDiff(fd)
		}
	}
	return line
}

// recordSummary is the "name: version" form of one record; version falls back
// to the "unparsable" marker and a failed record shows its status instead.
func recordSummary(r *pkgs.Record) string {
	name := r.Name
	if name == "" {
		name = r.Path.Leaf()
	}
	if !r.Status.Ok {
		return fmt.Sprintf("%s: %s", name, r.Status)
	}
	if r.Version == "" {
		return fmt.Sprintf("%s: unparsable", name)
	}
	return fmt.Sprintf("%s: %s", name, r.Version)
}

// fieldSummary condenses a field diff list into one line: the version
// transition first (with a downgrade note), then the names of the other
// changed fields.
func fieldSummary(fields []differ.FieldDiff) string {
	var parts []string
	var others []string

	for _, fd := range fields {
		switch fd.Field {
		case "version":
			parts = append(parts, fmt.Sprintf("%s -> %s%s",
				orUnparsable(fd.Old), orUnparsable(fd.New), VersionNote(fd.Old, fd.New)))
		case "evaluation_status":
			parts = append(parts, fmt.Sprintf("%s -> %s", fd.Old, fd.New))
		default:
			others = append(others, fd.Field)
		}
	}

	if len(others) > 0 {
		parts = append(parts, strings.Join(others, ", ")+" changed")
	}
	return strings.Join(parts, ", ")
}

func orUnparsable(version string) string {
	if version == "" {
		return "unparsable"
	}
	return version
}

// VersionNote annotates a version transition when semver can order both
// sides and the new version is lower. Unorderable versions get no note;
// severity policy beyond the label is the report consumer's concern.
func VersionNote(oldV, newV string) string {
	ov, err := semver.NewVersion(oldV)
	if err != nil {
		return ""
	}
	nv, err := semver.NewVersion(newV)
	if err != nil {
		return ""
	}
	if nv.LessThan(ov) {
		return " (downgrade)"
	}
	return ""
}

// multilineDiff renders a fenced unified diff for one multiline field value.
func multilineDiff(fd differ.FieldDiff) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(fd.Old),
		B:        difflib.SplitLines(fd.New),
		FromFile: fd.Field + " (old)",
		ToFile:   fd.Field + " (new)",
		Context:  2,
	})
	if err != nil || text == "" {
		return ""
	}
	return "```diff\n" + text + "```\n"
}
