// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

func change(kind differ.Kind, path, version string) differ.ChangeRecord {
	p := pkgs.ParseAttrPath(path)
	r := &pkgs.Record{Path: p, Name: p.Leaf(), Version: version, Status: pkgs.StatusOk}
	cr := differ.ChangeRecord{Kind: kind, Path: p}
	switch kind {
	case differ.Added:
		cr.After = r
	case differ.Removed:
		cr.Before = r
	default:
		cr.Before = r
		cr.After = r
	}
	return cr
}

var testChanges = []differ.ChangeRecord{
	change(differ.Added, "packages.x86_64-linux.hello", "2.12.1"),
	change(differ.Removed, "packages.x86_64-linux.zlib", "1.3"),
	change(differ.Changed, "packages.aarch64-darwin.libfoo", "0.9"),
}

func TestBuildFilters_ParsesOperands(t *testing.T) {
	filters := BuildFilters("kind=added,path^packages.x86_64,name~^lib,version!=1.3")
	require.Len(t, filters, 4)

	assert.Equal(t, Filter{Key: "kind", Operand: "=", Value: "added"}, filters[0])
	assert.Equal(t, Filter{Key: "path", Operand: "^", Value: "packages.x86_64"}, filters[1])
	assert.Equal(t, Filter{Key: "name", Operand: "~", Value: "^lib"}, filters[2])
	assert.Equal(t, Filter{Key: "version", Operand: "=", Value: "1.3", Negate: true}, filters[3])
}

func TestBuildFilters_SkipsInvalidSpecs(t *testing.T) {
	filters := BuildFilters("bogus=1,kind=added,nokey")
	require.Len(t, filters, 1)
	assert.Equal(t, "kind", filters[0].Key)
}

func TestBuildFilters_SkipsBadRegex(t *testing.T) {
	filters := BuildFilters("name~[unclosed")
	assert.Empty(t, filters)
}

func TestBuildFilters_EmptySpec(t *testing.T) {
	assert.Empty(t, BuildFilters(""))
}

func TestBuildFilters_DelimOverride(t *testing.T) {
	t.Setenv("NUR_FILTER_DELIM", ";")
	filters := BuildFilters("kind=added;path^packages")
	require.Len(t, filters, 2)
}

func TestApply_KindExact(t *testing.T) {
	out := Apply(testChanges, "kind=added")
	require.Len(t, out, 1)
	assert.Equal(t, "packages.x86_64-linux.hello", out[0].Path.String())
}

func TestApply_PathPrefix(t *testing.T) {
	out := Apply(testChanges, "path^packages.x86_64-linux")
	assert.Len(t, out, 2)
}

func TestApply_SystemKey(t *testing.T) {
	out := Apply(testChanges, "system=aarch64-darwin")
	require.Len(t, out, 1)
	assert.Equal(t, "libfoo", out[0].Before.Name)
}

func TestApply_NameRegex(t *testing.T) {
	out := Apply(testChanges, "name~^lib")
	require.Len(t, out, 1)
	assert.Equal(t, "libfoo", out[0].Before.Name)
}

func TestApply_Negation(t *testing.T) {
	out := Apply(testChanges, "kind!=removed")
	assert.Len(t, out, 2)
	for _, cr := range out {
		assert.NotEqual(t, differ.Removed, cr.Kind)
	}
}

func TestApply_Conjunction(t *testing.T) {
	out := Apply(testChanges, "path^packages.x86_64-linux,kind!=removed")
	require.Len(t, out, 1)
	assert.Equal(t, differ.Added, out[0].Kind)
}

func TestApply_EmptySpecPassesThrough(t *testing.T) {
	assert.Equal(t, testChanges, Apply(testChanges, ""))
}
