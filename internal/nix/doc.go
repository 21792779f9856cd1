// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package nix is the concrete recipe-evaluation capability backed by the nix
// CLI. Enumeration runs `nix flake show`, per-entry deep evaluation runs
// `nix eval`, and evaluator stderr is classified into failure reasons.
package nix
