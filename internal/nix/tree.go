// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/tidwall/gjson"

	"github.com/aldenparker/nix-update-report/internal/evaluator"
	"github.com/aldenparker/nix-update-report/internal/log"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// Runner executes an external command and returns its stdout and stderr. It
// exists so tests never have to exec a real nix binary.
type Runner func(ctx context.Context, bin string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner is the default Runner, backed by os/exec.
func ExecRunner(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	var out, errOut bytes.Buffer
	c := exec.CommandContext(ctx, bin, args...)
	c.Stdout = &out
	c.Stderr = &errOut
	err := c.Run()
	return out.Bytes(), errOut.Bytes(), err
}

// entryInfo is the shallow per-package data captured during enumeration from
// the flake show document.
type entryInfo struct {
	fullName    string
	description string
}

// Tree is one revision's recipe tree, addressed by a flake reference. It
// implements evaluator.Capability. Enumerate must run before EvalEntry; after
// that, EvalEntry is safe to call concurrently.
type Tree struct {
	// Ref is the flake reference (URL, path, or ref spec) naming the
	// revision.
	Ref string
	// Bin is the nix binary to invoke, "nix" by default.
	Bin string
	// Deep enables per-entry `nix eval` for output hashes and metadata.
	// Without it only the flake show fields (name, version, description) are
	// materialized.
	Deep bool
	// Systems restricts enumeration to the listed systems. Empty means all.
	Systems []string
	// EvalTimeout bounds one deep entry evaluation. Zero means no limit.
	EvalTimeout time.Duration
	// Run defaults to ExecRunner.
	Run Runner

	entries map[string]entryInfo
}

// NewTree returns a Tree for the given flake reference with defaults applied.
func NewTree(ref string) *Tree {
	return &Tree{Ref: ref, Bin: "nix", Run: ExecRunner}
}

// Enumerate runs `nix flake show` for the tree's reference and walks the
// package outputs into attribute paths. A command failure or a document with
// no package outputs at all is fatal for this revision.
func (t *Tree) Enumerate(ctx context.Context) ([]pkgs.AttrPath, error) {
	log.Debugf("flake show: ref=%s", t.Ref)

	stdout, stderr, err := t.run(ctx,
		"flake", "show", t.Ref, "--legacy", "--json", "--quiet", "--all-systems")
	if err != nil {
		return nil, fmt.Errorf("nix flake show failed: %v: %s", err, firstLine(stderr))
	}

	doc := gjson.ParseBytes(stdout)
	if !doc.IsObject() {
		return nil, fmt.Errorf("malformed flake show output for %s", t.Ref)
	}

	t.entries = make(map[string]entryInfo)
	var paths []pkgs.AttrPath
	for _, root := range []string{"packages", "legacyPackages"} {
		paths = append(paths, t.walk(root, doc.Get(root))...)
	}

	log.Debugf("enumerated: ref=%s paths=%d", t.Ref, len(paths))
	return paths, nil
}

// walk descends one package output of the flake show document and collects
// derivation leaves. The legacy tree nests attrsets arbitrarily deep
// (e.g. python3Packages.requests), so the walk uses an explicit stack with
// visited-path tracking rather than call-stack recursion.
func (t *Tree) walk(root string, node gjson.Result) []pkgs.AttrPath {
	if !node.IsObject() {
		return nil
	}

	type frame struct {
		path pkgs.AttrPath
		node gjson.Result
	}

	var paths []pkgs.AttrPath
	visited := make(map[string]bool)

	stack := make([]frame, 0, 64)
	node.ForEach(func(system, pkgSet gjson.Result) bool {
		if len(t.Systems) > 0 && !contains(t.Systems, system.String()) {
			return true
		}
		stack = append(stack, frame{
			path: pkgs.AttrPath{root, system.String()},
			node: pkgSet,
		})
		return true
	})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := f.path.String()
		if visited[key] {
			log.Debugf("already visited, skipping: path=%s", key)
			continue
		}
		visited[key] = true

		if !f.node.IsObject() {
			continue
		}

		if f.node.Get("type").String() == "derivation" {
			t.entries[key] = entryInfo{
				fullName:    f.node.Get("name").String(),
				description: f.node.Get("description").String(),
			}
			paths = append(paths, f.path)
			continue
		}

		f.node.ForEach(func(name, child gjson.Result) bool {
			sub := make(pkgs.AttrPath, len(f.path), len(f.path)+1)
			copy(sub, f.path)
			stack = append(stack, frame{path: append(sub, name.String()), node: child})
			return true
		})
	}

	return paths
}

// EvalEntry materializes one package from the enumerated tree. Shallow fields
// come from the cached flake show document; with Deep set, output hashes and
// metadata come from a `nix eval` projection. Failures are returned as
// classified *evaluator.EntryError values.
func (t *Tree) EvalEntry(ctx context.Context, path pkgs.AttrPath) (evaluator.Entry, error) {
	info, ok := t.entries[path.String()]
	if !ok {
		return evaluator.Entry{}, &evaluator.EntryError{
			Reason: pkgs.ReasonEvaluationError,
			Detail: "path not present in flake show output",
		}
	}

	name, version := ParseNameVersion(info.fullName)
	entry := evaluator.Entry{Name: name, Version: version}
	if info.description != "" {
		entry.Metadata = map[string]string{"description": info.description}
	}

	if !t.Deep {
		return entry, nil
	}

	if t.EvalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.EvalTimeout)
		defer cancel()
	}

	stdout, stderr, err := t.run(ctx,
		"eval", t.Ref+"#"+path.String(), "--json", "--apply", evalProjection)
	if err != nil {
		return evaluator.Entry{}, classifyEvalError(ctx, stderr, err)
	}

	mergeDeepResult(&entry, gjson.ParseBytes(stdout))
	return entry, nil
}

// evalProjection reduces a derivation to the fixed shape the engine consumes.
// Guarded attribute selection keeps partial metadata from failing the whole
// entry.
const evalProjection = `drv: {
  name = drv.name or "";
  version = drv.version or "";
  outputs = builtins.listToAttrs
    (map (o: { name = o; value = drv.${o}.outPath or ""; }) (drv.outputs or [ "out" ]));
  meta = {
    description = drv.meta.description or "";
    homepage = drv.meta.homepage or "";
    license =
      let l = drv.meta.license or null;
      in if builtins.isAttrs l then (l.spdxId or l.shortName or "")
         else if builtins.isString l then l
         else "";
    broken = drv.meta.broken or false;
    platforms = drv.meta.platforms or [ ];
  };
}`

// mergeDeepResult folds the eval projection document into the shallow entry.
// Deep fields win where both exist.
func mergeDeepResult(entry *evaluator.Entry, doc gjson.Result) {
	if name := doc.Get("name").String(); name != "" {
		// The drv name is name-version; prefer the explicit version attr when
		// present, then fall back to parsing.
		parsedName, parsedVersion := ParseNameVersion(name)
		entry.Name = parsedName
		if parsedVersion != "" {
			entry.Version = parsedVersion
		}
	}
	if version := doc.Get("version").String(); version != "" {
		entry.Version = version
	}

	outputs := doc.Get("outputs")
	if outputs.IsObject() {
		entry.Outputs = make(map[string]string)
		outputs.ForEach(func(name, hash gjson.Result) bool {
			if hash.String() != "" {
				entry.Outputs[name.String()] = hash.String()
			}
			return true
		})
	}

	meta := doc.Get("meta")
	if meta.IsObject() {
		if entry.Metadata == nil {
			entry.Metadata = make(map[string]string)
		}
		for _, key := range []string{"description", "homepage", "license"} {
			if v := meta.Get(key).String(); v != "" {
				entry.Metadata[key] = v
			}
		}
		if meta.Get("broken").Bool() {
			entry.Metadata["broken"] = "true"
		}
		if platforms := meta.Get("platforms"); platforms.IsArray() {
			joined := ""
			platforms.ForEach(func(_, p gjson.Result) bool {
				if joined != "" {
					joined += ","
				}
				joined += p.String()
				return true
			})
			if joined != "" {
				entry.Metadata["platforms"] = joined
			}
		}
	}
}

// run invokes the configured nix binary via the Runner seam.
func (t *Tree) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	bin := t.Bin
	if bin == "" {
		bin = "nix"
	}
	run := t.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, bin, args...)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// firstLine trims stderr down to its first non-empty line for error text.
func firstLine(stderr []byte) string {
	for _, line := range bytes.Split(stderr, []byte("\n")) {
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return string(trimmed)
		}
	}
	return ""
}
