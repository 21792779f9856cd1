// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package pkgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okRecord(path string, version string) *Record {
	p := ParseAttrPath(path)
	return &Record{
		Path:    p,
		Name:    p.Leaf(),
		Version: version,
		Status:  StatusOk,
	}
}

func TestBuilder_BuildSortsPaths(t *testing.T) {
	b := NewBuilder()
	b.Add(okRecord("packages.x86_64-linux.zlib", "1.3"))
	b.Add(okRecord("packages.aarch64-linux.hello", "2.12"))
	b.Add(okRecord("packages.x86_64-linux.hello", "2.12"))

	ix := b.Build("rev-a")
	require.Equal(t, 3, ix.Len())
	assert.Equal(t, "rev-a", ix.Revision())

	paths := ix.Paths()
	assert.Equal(t, "packages.aarch64-linux.hello", paths[0].String())
	assert.Equal(t, "packages.x86_64-linux.hello", paths[1].String())
	assert.Equal(t, "packages.x86_64-linux.zlib", paths[2].String())
}

func TestBuilder_DuplicatePathPanics(t *testing.T) {
	b := NewBuilder()
	b.Add(okRecord("packages.x86_64-linux.hello", "2.12"))
	assert.Panics(t, func() {
		b.Add(okRecord("packages.x86_64-linux.hello", "2.13"))
	})
}

func TestIndex_Get(t *testing.T) {
	b := NewBuilder()
	b.Add(okRecord("packages.x86_64-linux.hello", "2.12"))
	ix := b.Build("rev-a")

	r, ok := ix.Get(ParseAttrPath("packages.x86_64-linux.hello"))
	require.True(t, ok)
	assert.Equal(t, "hello", r.Name)
	assert.Equal(t, "2.12", r.Version)

	_, ok = ix.Get(ParseAttrPath("packages.x86_64-linux.absent"))
	assert.False(t, ok)
}

func TestIndex_FailedRecordOccupiesPath(t *testing.T) {
	b := NewBuilder()
	b.Add(NewFailedRecord(ParseAttrPath("packages.x86_64-linux.broken"), ReasonEvaluationError, "boom"))
	ix := b.Build("rev-a")

	r, ok := ix.Get(ParseAttrPath("packages.x86_64-linux.broken"))
	require.True(t, ok)
	assert.False(t, r.Status.Ok)
	assert.Equal(t, ReasonEvaluationError, r.Status.Reason)
	assert.Equal(t, "failed:evaluation-error", r.Status.String())
}

func TestIndex_RecordsInPathOrder(t *testing.T) {
	b := NewBuilder()
	b.Add(okRecord("packages.x86_64-linux.b", "1"))
	b.Add(okRecord("packages.x86_64-linux.a", "1"))
	ix := b.Build("rev-a")

	recs := ix.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Name)
	assert.Equal(t, "b", recs[1].Name)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOk.String())
	assert.Equal(t, "failed:timeout", StatusFailed(ReasonTimeout, "").String())
}
