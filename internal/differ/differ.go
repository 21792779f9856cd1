// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"sort"

	"github.com/aldenparker/nix-update-report/internal/log"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// Kind classifies a ChangeRecord. The numeric order is the tie-break order
// for records that coincide on the same path: Removed < Changed < Added.
type Kind int

const (
	Removed Kind = iota
	Changed
	Added
)

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML renders the kind by name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// String returns the lowercase kind name used in output and filters.
func (k Kind) String() string {
	switch k {
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	case Added:
		return "added"
	}
	return "unknown"
}

// FieldDiff is one differing field of a Changed record.
type FieldDiff struct {
	Field string `yaml:"field" json:"field"`
	Old   string `yaml:"old" json:"old"`
	New   string `yaml:"new" json:"new"`
}

// ChangeRecord is one package-level change between the two indexes. Records
// are created once by Diff and never mutated.
type ChangeRecord struct {
	Kind Kind          `yaml:"kind" json:"kind"`
	Path pkgs.AttrPath `yaml:"path" json:"path"`
	// Before is nil for Added, After is nil for Removed.
	Before *pkgs.Record `yaml:"before,omitempty" json:"before,omitempty"`
	After  *pkgs.Record `yaml:"after,omitempty" json:"after,omitempty"`
	// Fields is set for Changed only and holds exactly the fields whose old
	// and new values differ.
	Fields []FieldDiff `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Diff compares two indexes and returns every change, ordered by attribute
// path ascending with kind as the secondary tie-break. The output is a pure
// function of the two indexes: identical inputs always yield an identical
// sequence. Neither index is mutated.
func Diff(old, new *pkgs.Index) []ChangeRecord {
	log.Debugf("diffing indexes: old=%d new=%d", old.Len(), new.Len())

	//nolint:prealloc // Most paths are unchanged; final length is unknown.
	var changes []ChangeRecord

	for _, path := range new.Paths() {
		after, _ := new.Get(path)
		before, inOld := old.Get(path)
		if !inOld {
			changes = append(changes, ChangeRecord{Kind: Added, Path: path, After: after})
			continue
		}
		if fields := compareRecords(before, after); len(fields) > 0 {
			changes = append(changes, ChangeRecord{
				Kind:   Changed,
				Path:   path,
				Before: before,
				After:  after,
				Fields: fields,
			})
		}
	}

	for _, path := range old.Paths() {
		if _, inNew := new.Get(path); !inNew {
			before, _ := old.Get(path)
			changes = append(changes, ChangeRecord{Kind: Removed, Path: path, Before: before})
		}
	}

	// The partitions above are disjoint, so the kind tie-break only matters
	// for determinism if that ever stops being true.
	sort.SliceStable(changes, func(i, j int) bool {
		if !changes[i].Path.Equal(changes[j].Path) {
			return changes[i].Path.Less(changes[j].Path)
		}
		return changes[i].Kind < changes[j].Kind
	})

	log.Debugf("diff complete: changes=%d", len(changes))
	return changes
}

// compareRecords returns the ordered field diffs between two records at the
// same path, or nil if they are equal for diff purposes. A status transition
// short-circuits the value fields: a failed side has no comparable fields.
func compareRecords(before, after *pkgs.Record) []FieldDiff {
	if before.Status.Ok != after.Status.Ok {
		return []FieldDiff{{
			Field: "evaluation_status",
			Old:   before.Status.String(),
			New:   after.Status.String(),
		}}
	}

	if !before.Status.Ok {
		// Failed on both sides: only a differing reason is a change.
		if before.Status.Reason != after.Status.Reason {
			return []FieldDiff{{
				Field: "evaluation_status",
				Old:   before.Status.String(),
				New:   after.Status.String(),
			}}
		}
		return nil
	}

	var fields []FieldDiff
	if before.Name != after.Name {
		fields = append(fields, FieldDiff{Field: "name", Old: before.Name, New: after.Name})
	}
	if before.Version != after.Version {
		fields = append(fields, FieldDiff{Field: "version", Old: before.Version, New: after.Version})
	}
	fields = append(fields, compareMaps("output", before.Outputs, after.Outputs)...)
	fields = append(fields, compareMaps("meta", before.Metadata, after.Metadata)...)
	return fields
}

// compareMaps emits one field diff per differing key, in sorted key order.
// A key absent on one side diffs against "".
func compareMaps(prefix string, before, after map[string]string) []FieldDiff {
	keys := make([]string, 0, len(before)+len(after))
	seen := make(map[string]bool, len(before)+len(after))
	for k := range before {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range after {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var fields []FieldDiff
	for _, k := range keys {
		if before[k] != after[k] {
			fields = append(fields, FieldDiff{
				Field: prefix + "." + k,
				Old:   before[k],
				New:   after[k],
			})
		}
	}
	return fields
}
