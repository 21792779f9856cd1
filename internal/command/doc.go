// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command wires the CLI surface: the diff and show subcommands,
// their flags, and the glue between flake evaluation, diffing, filtering,
// and report rendering.
package command
