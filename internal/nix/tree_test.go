// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package nix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenparker/nix-update-report/internal/evaluator"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

const flakeShowDoc = `{
  "packages": {
    "x86_64-linux": {
      "hello": {"type": "derivation", "name": "hello-2.12.1", "description": "A program that produces a familiar greeting"},
      "zlib": {"type": "derivation", "name": "zlib-1.3"}
    },
    "aarch64-darwin": {
      "hello": {"type": "derivation", "name": "hello-2.12.1"}
    }
  },
  "legacyPackages": {
    "x86_64-linux": {
      "python3Packages": {
        "requests": {"type": "derivation", "name": "python3.11-requests-2.31.0"}
      }
    }
  },
  "devShells": {
    "x86_64-linux": {
      "default": {"type": "derivation", "name": "nix-shell"}
    }
  }
}`

// scriptedRunner returns canned output per nix subcommand.
type scriptedRunner struct {
	showOut   string
	showErr   error
	evalOut   map[string]string
	evalErr   map[string]error
	evalCalls []string
}

func (s *scriptedRunner) run(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	if len(args) == 0 {
		return nil, nil, errors.New("no args")
	}
	switch args[0] {
	case "flake":
		if s.showErr != nil {
			return nil, []byte("error: flake not found"), s.showErr
		}
		return []byte(s.showOut), nil, nil
	case "eval":
		s.evalCalls = append(s.evalCalls, args[1])
		if err, ok := s.evalErr[args[1]]; ok {
			return nil, []byte("error: boom"), err
		}
		return []byte(s.evalOut[args[1]]), nil, nil
	}
	return nil, nil, errors.New("unexpected command")
}

func newTestTree(runner *scriptedRunner) *Tree {
	t := NewTree("github:example/flake?rev=abc")
	t.Run = runner.run
	return t
}

func pathStrings(paths []pkgs.AttrPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}

func TestEnumerate_WalksPackagesAndLegacy(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showOut: flakeShowDoc})

	paths, err := tree.Enumerate(context.Background())
	require.NoError(t, err)

	got := pathStrings(paths)
	assert.Contains(t, got, "packages.x86_64-linux.hello")
	assert.Contains(t, got, "packages.x86_64-linux.zlib")
	assert.Contains(t, got, "packages.aarch64-darwin.hello")
	// Nested legacy attrsets are walked down to derivation leaves.
	assert.Contains(t, got, "legacyPackages.x86_64-linux.python3Packages.requests")
	// devShells is not a package output.
	assert.NotContains(t, got, "devShells.x86_64-linux.default")
	assert.Len(t, got, 4)
}

func TestEnumerate_SystemsFilter(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showOut: flakeShowDoc})
	tree.Systems = []string{"aarch64-darwin"}

	paths, err := tree.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"packages.aarch64-darwin.hello"}, pathStrings(paths))
}

func TestEnumerate_CommandFailureIsFatal(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showErr: errors.New("exit status 1")})

	_, err := tree.Enumerate(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "nix flake show failed")
	assert.ErrorContains(t, err, "flake not found")
}

func TestEnumerate_MalformedDocumentIsFatal(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showOut: "not json"})

	_, err := tree.Enumerate(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "malformed")
}

func TestEvalEntry_ShallowFields(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showOut: flakeShowDoc})
	_, err := tree.Enumerate(context.Background())
	require.NoError(t, err)

	entry, err := tree.EvalEntry(context.Background(), pkgs.ParseAttrPath("packages.x86_64-linux.hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Name)
	assert.Equal(t, "2.12.1", entry.Version)
	assert.Equal(t, "A program that produces a familiar greeting", entry.Metadata["description"])
	assert.Empty(t, entry.Outputs)
}

func TestEvalEntry_UnknownPath(t *testing.T) {
	tree := newTestTree(&scriptedRunner{showOut: flakeShowDoc})
	_, err := tree.Enumerate(context.Background())
	require.NoError(t, err)

	_, err = tree.EvalEntry(context.Background(), pkgs.ParseAttrPath("packages.x86_64-linux.ghost"))
	var entryErr *evaluator.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, pkgs.ReasonEvaluationError, entryErr.Reason)
}

func TestEvalEntry_DeepMergesOutputsAndMetadata(t *testing.T) {
	runner := &scriptedRunner{
		showOut: flakeShowDoc,
		evalOut: map[string]string{
			"github:example/flake?rev=abc#packages.x86_64-linux.hello": `{
				"name": "hello-2.12.1",
				"version": "2.12.1",
				"outputs": {"out": "/nix/store/abc123-hello-2.12.1", "man": "/nix/store/def456-hello-2.12.1-man"},
				"meta": {
					"description": "A program that produces a familiar greeting",
					"homepage": "https://www.gnu.org/software/hello/",
					"license": "GPL-3.0-or-later",
					"broken": false,
					"platforms": ["x86_64-linux", "aarch64-linux"]
				}
			}`,
		},
	}
	tree := newTestTree(runner)
	tree.Deep = true
	_, err := tree.Enumerate(context.Background())
	require.NoError(t, err)

	entry, err := tree.EvalEntry(context.Background(), pkgs.ParseAttrPath("packages.x86_64-linux.hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Name)
	assert.Equal(t, "2.12.1", entry.Version)
	assert.Equal(t, map[string]string{
		"out": "/nix/store/abc123-hello-2.12.1",
		"man": "/nix/store/def456-hello-2.12.1-man",
	}, entry.Outputs)
	assert.Equal(t, "GPL-3.0-or-later", entry.Metadata["license"])
	assert.Equal(t, "x86_64-linux,aarch64-linux", entry.Metadata["platforms"])
	_, hasBroken := entry.Metadata["broken"]
	assert.False(t, hasBroken)
	require.Len(t, runner.evalCalls, 1)
}

func TestEvalEntry_DeepFailureIsClassified(t *testing.T) {
	runner := &scriptedRunner{
		showOut: flakeShowDoc,
		evalErr: map[string]error{
			"github:example/flake?rev=abc#packages.x86_64-linux.zlib": errors.New("exit status 1"),
		},
	}
	tree := newTestTree(runner)
	tree.Deep = true
	_, err := tree.Enumerate(context.Background())
	require.NoError(t, err)

	_, err = tree.EvalEntry(context.Background(), pkgs.ParseAttrPath("packages.x86_64-linux.zlib"))
	var entryErr *evaluator.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, pkgs.ReasonEvaluationError, entryErr.Reason)
}

func TestTree_ImplementsCapability(t *testing.T) {
	var _ evaluator.Capability = (*Tree)(nil)
}
