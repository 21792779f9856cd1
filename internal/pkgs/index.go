// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package pkgs

import (
	"fmt"
	"sort"
)

// Index is the immutable, queryable result of evaluating one revision: a
// mapping from attribute path to Record. It is safe for concurrent reads.
type Index struct {
	revision string
	records  map[string]*Record
	paths    []AttrPath
}

// Revision returns the revision handle this index was evaluated from.
func (ix *Index) Revision() string { return ix.revision }

// Get returns the record at path, or (nil, false) if absent.
func (ix *Index) Get(path AttrPath) (*Record, bool) {
	r, ok := ix.records[path.String()]
	return r, ok
}

// Paths returns every attribute path in the index, sorted lexicographically
// by segments. Callers must not modify the returned slice.
func (ix *Index) Paths() []AttrPath { return ix.paths }

// Len returns the number of records in the index.
func (ix *Index) Len() int { return len(ix.records) }

// Records returns all records in Paths() order.
func (ix *Index) Records() []*Record {
	out := make([]*Record, 0, len(ix.paths))
	for _, p := range ix.paths {
		out = append(out, ix.records[p.String()])
	}
	return out
}

// Builder accumulates records during an evaluation pass. It is the only
// mutation point of an Index and is not safe for concurrent use; the
// evaluator feeds it from a single collection goroutine.
type Builder struct {
	records map[string]*Record
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{records: make(map[string]*Record)}
}

// Add inserts a record. A duplicate attribute path is a contract violation by
// the caller (enumeration is expected to dedupe) and panics.
func (b *Builder) Add(r *Record) {
	key := r.Path.String()
	if _, dup := b.records[key]; dup {
		panic(fmt.Sprintf("pkgs: duplicate attribute path %q in index", key))
	}
	b.records[key] = r
}

// Len returns the number of records added so far.
func (b *Builder) Len() int { return len(b.records) }

// Build freezes the accumulated records into an Index. The Builder must not
// be used after Build.
func (b *Builder) Build(revision string) *Index {
	paths := make([]AttrPath, 0, len(b.records))
	for _, r := range b.records {
		paths = append(paths, r.Path)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Less(paths[j]) })

	ix := &Index{revision: revision, records: b.records, paths: paths}
	b.records = nil
	return ix
}
