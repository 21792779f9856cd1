// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

func buildIndex(t *testing.T, revision string, records ...*pkgs.Record) *pkgs.Index {
	t.Helper()
	b := pkgs.NewBuilder()
	for _, r := range records {
		b.Add(r)
	}
	return b.Build(revision)
}

func rec(path, version string) *pkgs.Record {
	p := pkgs.ParseAttrPath(path)
	return &pkgs.Record{Path: p, Name: p.Leaf(), Version: version, Status: pkgs.StatusOk}
}

func testFixture(t *testing.T) (*pkgs.Index, *pkgs.Index, []differ.ChangeRecord) {
	t.Helper()
	old := buildIndex(t, "github:NixOS/nixpkgs?rev=aaa",
		rec("packages.x86_64-linux.hello", "2.12"),
		rec("packages.x86_64-linux.dropped", "1.0"),
		rec("packages.aarch64-darwin.hello", "2.12"))
	new := buildIndex(t, "github:NixOS/nixpkgs?rev=bbb",
		rec("packages.x86_64-linux.hello", "2.13"),
		rec("packages.x86_64-linux.fresh", "0.1"),
		rec("packages.aarch64-darwin.hello", "2.12"))
	return old, new, differ.Diff(old, new)
}

func TestMarkdown_Layout(t *testing.T) {
	old, new, changes := testFixture(t)
	md := Markdown(old, new, changes, "weekly")

	assert.True(t, strings.HasPrefix(md, "## nix-update-report - weekly\n"))
	assert.Contains(t, md, "`github:NixOS/nixpkgs?rev=aaa`")
	assert.Contains(t, md, "`github:NixOS/nixpkgs?rev=bbb`")
	assert.Contains(t, md, "### Stats")
	assert.Contains(t, md, "#### By System")
	assert.Contains(t, md, "##### x86_64-linux")
	assert.Contains(t, md, "#### Totals")
	assert.Contains(t, md, "### Pkg Changes")
	assert.Contains(t, md, " - fresh: 0.1")
	assert.Contains(t, md, " - hello: 2.12 -> 2.13")
	assert.Contains(t, md, " - dropped: 1.0")
}

func TestMarkdown_NoTitle(t *testing.T) {
	old, new, changes := testFixture(t)
	md := Markdown(old, new, changes, "")
	assert.True(t, strings.HasPrefix(md, "## nix-update-report\n"))
}

func TestMarkdown_QuietSystemSaysNone(t *testing.T) {
	old, new, changes := testFixture(t)
	md := Markdown(old, new, changes, "")
	// aarch64-darwin has no changes so it gets no section at all; only
	// changed systems appear, and their empty kinds say None.
	assert.NotContains(t, md, "#### aarch64-darwin")
	assert.Contains(t, md, "None")
}

func TestCollect_Stats(t *testing.T) {
	old, new, changes := testFixture(t)
	stats := Collect(old, new, changes)

	x86 := stats.BySystem["x86_64-linux"]
	assert.Equal(t, 1, x86.Added)
	assert.Equal(t, 1, x86.Updated)
	assert.Equal(t, 1, x86.Removed)
	assert.Equal(t, 2, x86.Total)

	darwin := stats.BySystem["aarch64-darwin"]
	assert.Equal(t, SystemStats{Total: 1}, darwin)

	totals := stats.Totals()
	assert.Equal(t, 1, totals.Added)
	assert.Equal(t, 3, totals.Total)
	assert.Equal(t, 2, stats.TotalSystems)
	assert.Empty(t, stats.AddedSystems)
	assert.Empty(t, stats.RemovedSystems)
}

func TestCollect_SystemTransitions(t *testing.T) {
	old := buildIndex(t, "prev", rec("packages.i686-linux.hello", "1.0"))
	new := buildIndex(t, "next", rec("packages.riscv64-linux.hello", "1.0"))
	stats := Collect(old, new, differ.Diff(old, new))

	assert.Equal(t, []string{"riscv64-linux"}, stats.AddedSystems)
	assert.Equal(t, []string{"i686-linux"}, stats.RemovedSystems)
}

func TestVersionNote(t *testing.T) {
	assert.Equal(t, " (downgrade)", VersionNote("2.1.0", "2.0.3"))
	assert.Equal(t, "", VersionNote("2.0.3", "2.1.0"))
	assert.Equal(t, "", VersionNote("2.1.0", "2.1.0"))
	// Partial versions coerce (semver fills missing parts).
	assert.Equal(t, " (downgrade)", VersionNote("1.3", "1.2"))
	// Unorderable versions get no note.
	assert.Equal(t, "", VersionNote("unstable-2024-01-15", "1.0"))
	assert.Equal(t, "", VersionNote("", "1.0"))
}

func TestChangeLine_StatusTransition(t *testing.T) {
	path := pkgs.ParseAttrPath("packages.x86_64-linux.flaky")
	cr := differ.ChangeRecord{
		Kind:   differ.Changed,
		Path:   path,
		Before: pkgs.NewFailedRecord(path, pkgs.ReasonTimeout, ""),
		After:  rec("packages.x86_64-linux.flaky", "1.0"),
		Fields: []differ.FieldDiff{{Field: "evaluation_status", Old: "failed:timeout", New: "ok"}},
	}
	assert.Equal(t, " - flaky: failed:timeout -> ok\n", ChangeLine(cr))
}

func TestChangeLine_UnparsableVersion(t *testing.T) {
	cr := differ.ChangeRecord{
		Kind:  differ.Added,
		Path:  pkgs.ParseAttrPath("packages.x86_64-linux.mystery"),
		After: rec("packages.x86_64-linux.mystery", ""),
	}
	assert.Equal(t, " - mystery: unparsable\n", ChangeLine(cr))
}

func TestChangeLine_MultilineMetadataGetsUnifiedDiff(t *testing.T) {
	before := rec("packages.x86_64-linux.doc", "1.0")
	before.Metadata = map[string]string{"longDescription": "line one\nline two\n"}
	after := rec("packages.x86_64-linux.doc", "1.0")
	after.Metadata = map[string]string{"longDescription": "line one\nline 2\n"}

	changes := differ.Diff(
		buildIndex(t, "prev", before),
		buildIndex(t, "next", after))
	require.Len(t, changes, 1)

	line := ChangeLine(changes[0])
	assert.Contains(t, line, "meta.longDescription changed")
	assert.Contains(t, line, "```diff")
	assert.Contains(t, line, "-line two")
	assert.Contains(t, line, "+line 2")
}

func TestEmitChanges_JSON(t *testing.T) {
	_, _, changes := testFixture(t)

	var buf bytes.Buffer
	require.NoError(t, EmitChanges(changes, "json", &buf))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "removed", decoded[0]["kind"])
	assert.Equal(t, "packages.x86_64-linux.dropped", decoded[0]["path"])
	assert.Equal(t, "added", decoded[1]["kind"])
	assert.Equal(t, "packages.x86_64-linux.fresh", decoded[1]["path"])
}

func TestEmitChanges_YAML(t *testing.T) {
	_, _, changes := testFixture(t)

	var buf bytes.Buffer
	require.NoError(t, EmitChanges(changes, "yaml", &buf))
	assert.Contains(t, buf.String(), "kind: changed")
	assert.Contains(t, buf.String(), "path: packages.x86_64-linux.hello")
}

func TestEmitChanges_UnsupportedFormat(t *testing.T) {
	assert.Error(t, EmitChanges(nil, "xml", &bytes.Buffer{}))
}

func TestTableWriter_RendersRows(t *testing.T) {
	_, _, changes := testFixture(t)

	var buf bytes.Buffer
	TableWriter(changes, TableOptions{Titles: true}, &buf)
	out := buf.String()
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "packages.x86_64-linux.fresh")
	assert.Contains(t, out, "kind")
}

func TestTableWriter_EmptyChanges(t *testing.T) {
	var buf bytes.Buffer
	TableWriter(nil, TableOptions{}, &buf)
	assert.Empty(t, buf.String())
}

func TestIndexTable_RendersRecords(t *testing.T) {
	ix := buildIndex(t, "rev",
		rec("packages.x86_64-linux.hello", "2.12"),
		pkgs.NewFailedRecord(pkgs.ParseAttrPath("packages.x86_64-linux.bad"), pkgs.ReasonEvaluationError, ""))

	var buf bytes.Buffer
	IndexTable(ix, TableOptions{Titles: true}, &buf)
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "2.12")
	assert.Contains(t, out, "failed:evaluation-error")
}
