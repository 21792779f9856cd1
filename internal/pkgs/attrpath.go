// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package pkgs

import (
	"encoding/json"
	"strings"
)

// AttrPath is the unique locator of one package within a recipe tree,
// expressed as ordered identifier segments (e.g. packages.x86_64-linux.hello).
type AttrPath []string

// ParseAttrPath splits a dotted attribute path spec into its segments. Empty
// segments are dropped so "a..b" and ".a.b" normalize to the same path.
func ParseAttrPath(spec string) AttrPath {
	parts := strings.Split(spec, ".")
	path := make(AttrPath, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}

// String joins the segments with dots. This is also the index key form.
func (p AttrPath) String() string {
	return strings.Join(p, ".")
}

// MarshalJSON renders the path in its dotted string form.
func (p AttrPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// MarshalYAML renders the path in its dotted string form.
func (p AttrPath) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// Less orders paths lexicographically segment by segment. A path that is a
// strict prefix of another sorts first.
func (p AttrPath) Less(other AttrPath) bool {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			return p[i] < other[i]
		}
	}
	return len(p) < len(other)
}

// Equal reports whether two paths have identical segments.
func (p AttrPath) Equal(other AttrPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// System returns the system (arch) segment for conventional flake output
// paths such as packages.<system>.<name>, or "" when the path doesn't follow
// that shape.
func (p AttrPath) System() string {
	if len(p) < 3 {
		return ""
	}
	switch p[0] {
	case "packages", "legacyPackages", "checks", "devShells":
		return p[1]
	}
	return ""
}

// Leaf returns the last segment, or "" for an empty path.
func (p AttrPath) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}
