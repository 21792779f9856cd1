// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package evaluator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aldenparker/nix-update-report/internal/log"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// Entry is the structured result a Capability produces for one package.
type Entry struct {
	Name     string
	Version  string
	Outputs  map[string]string
	Metadata map[string]string
}

// EntryError is a classified per-entry evaluation failure. Capabilities
// return it (wrapped or not) so the evaluator can record the failure reason
// instead of guessing from error text.
type EntryError struct {
	Reason pkgs.FailReason
	Detail string
}

func (e *EntryError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Capability is the opaque per-entry recipe evaluation the engine consumes
// from its environment. Implementations must be safe for concurrent EvalEntry
// calls across independent paths.
type Capability interface {
	// Enumerate lists every addressable attribute path in the tree. An error
	// here is fatal for the whole revision.
	Enumerate(ctx context.Context) ([]pkgs.AttrPath, error)
	// EvalEntry materializes one package. Failures should be returned as (or
	// wrap) *EntryError; anything else is recorded as unclassified.
	EvalEntry(ctx context.Context, path pkgs.AttrPath) (Entry, error)
}

// EnumerationError means the recipe tree for a revision could not be located
// or walked at all. It aborts only that revision's evaluation.
type EnumerationError struct {
	Revision string
	Err      error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to enumerate packages for %s: %v", e.Revision, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// DefaultWorkers is the per-revision evaluation concurrency used when no
// override is configured.
func DefaultWorkers() int {
	n := 2 * runtime.GOMAXPROCS(0)
	if n > 16 {
		n = 16
	}
	return n
}

// Evaluator runs the evaluation pass for one revision at a time. It is
// reusable and safe for concurrent Evaluate calls (one per revision).
type Evaluator struct {
	capability Capability
	workers    int
}

// New returns an Evaluator over the given capability. workers bounds the
// simultaneous in-flight entry evaluations; values < 1 select the default.
func New(capability Capability, workers int) *Evaluator {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &Evaluator{capability: capability, workers: workers}
}

// Evaluate enumerates the revision's tree and materializes every entry into
// one immutable index. Individual entry failures become failed records; only
// enumeration failure (or an empty tree) returns an error, as
// *EnumerationError. Cancelling ctx aborts the pass and discards partial
// results.
func (e *Evaluator) Evaluate(ctx context.Context, revision string) (*pkgs.Index, error) {
	paths, err := e.capability.Enumerate(ctx)
	if err != nil {
		return nil, &EnumerationError{Revision: revision, Err: err}
	}

	paths = dedupe(paths)
	if len(paths) == 0 {
		return nil, &EnumerationError{Revision: revision, Err: errors.New("no packages enumerable")}
	}
	log.Infof("evaluating %s: entries=%d workers=%d", revision, len(paths), e.workers)

	records := make(chan *pkgs.Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, path := range paths {
		g.Go(func() error {
			// Entry failures are data, not errors; the only error a worker
			// can surface is cancellation.
			if err := gctx.Err(); err != nil {
				return err
			}
			records <- e.evalOne(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation of %s aborted: %w", revision, err)
	}
	close(records)

	b := pkgs.NewBuilder()
	failed := 0
	for r := range records {
		if !r.Status.Ok {
			failed++
		}
		b.Add(r)
	}

	log.Infof("evaluated %s: ok=%d failed=%d", revision, b.Len()-failed, failed)
	return b.Build(revision), nil
}

// evalOne wraps a single capability call into a record, never an error.
func (e *Evaluator) evalOne(ctx context.Context, path pkgs.AttrPath) *pkgs.Record {
	entry, err := e.capability.EvalEntry(ctx, path)
	if err != nil {
		reason, detail := classify(err)
		log.Tracef("entry failed: path=%s reason=%s", path, reason)
		return pkgs.NewFailedRecord(path, reason, detail)
	}

	return &pkgs.Record{
		Path:     path,
		Name:     entry.Name,
		Version:  entry.Version,
		Outputs:  entry.Outputs,
		Metadata: entry.Metadata,
		Status:   pkgs.StatusOk,
	}
}

// classify maps a capability error to a failure reason. Classified entry
// errors pass through; a deadline becomes a timeout; the rest is
// unclassified.
func classify(err error) (pkgs.FailReason, string) {
	var entryErr *EntryError
	if errors.As(err, &entryErr) {
		return entryErr.Reason, entryErr.Detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgs.ReasonTimeout, err.Error()
	}
	return pkgs.ReasonUnclassified, err.Error()
}

// dedupe drops repeat paths from enumeration, keeping the first occurrence.
// Aliases and re-exports can surface the same path twice; evaluating it once
// is enough.
func dedupe(paths []pkgs.AttrPath) []pkgs.AttrPath {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := p.String()
		if seen[key] {
			log.Debugf("duplicate path enumerated, skipping: path=%s", key)
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
