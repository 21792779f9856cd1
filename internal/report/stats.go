// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"sort"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// noSystem groups packages whose attribute path carries no system segment.
const noSystem = "(no system)"

// SystemStats counts the changes and population of one system.
type SystemStats struct {
	Added   int
	Updated int
	Removed int
	// Total counts packages present in the new revision.
	Total int
}

// Stats aggregates change counts per system and overall, including system
// additions and removals between the two revisions.
type Stats struct {
	BySystem       map[string]SystemStats
	AddedSystems   []string
	RemovedSystems []string
	TotalSystems   int
}

// Collect builds Stats from the two indexes and the change sequence.
func Collect(old, new *pkgs.Index, changes []differ.ChangeRecord) Stats {
	stats := Stats{BySystem: make(map[string]SystemStats)}

	for _, path := range new.Paths() {
		s := stats.BySystem[systemOf(path)]
		s.Total++
		stats.BySystem[systemOf(path)] = s
	}

	for _, cr := range changes {
		s := stats.BySystem[systemOf(cr.Path)]
		switch cr.Kind {
		case differ.Added:
			s.Added++
		case differ.Changed:
			s.Updated++
		case differ.Removed:
			s.Removed++
		}
		stats.BySystem[systemOf(cr.Path)] = s
	}

	oldSystems := systemSet(old)
	newSystems := systemSet(new)
	for s := range newSystems {
		if !oldSystems[s] {
			stats.AddedSystems = append(stats.AddedSystems, s)
		}
	}
	for s := range oldSystems {
		if !newSystems[s] {
			stats.RemovedSystems = append(stats.RemovedSystems, s)
		}
	}
	sort.Strings(stats.AddedSystems)
	sort.Strings(stats.RemovedSystems)
	stats.TotalSystems = len(newSystems)

	return stats
}

// Systems returns the known systems in sorted order.
func (s Stats) Systems() []string {
	systems := make([]string, 0, len(s.BySystem))
	for name := range s.BySystem {
		systems = append(systems, name)
	}
	sort.Strings(systems)
	return systems
}

// Totals sums the per-system stats.
func (s Stats) Totals() SystemStats {
	var total SystemStats
	for _, sys := range s.BySystem {
		total.Added += sys.Added
		total.Updated += sys.Updated
		total.Removed += sys.Removed
		total.Total += sys.Total
	}
	return total
}

func systemOf(path pkgs.AttrPath) string {
	if s := path.System(); s != "" {
		return s
	}
	return noSystem
}

func systemSet(ix *pkgs.Index) map[string]bool {
	systems := make(map[string]bool)
	for _, path := range ix.Paths() {
		systems[systemOf(path)] = true
	}
	return systems
}
