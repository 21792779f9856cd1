// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package pkgs defines the comparable package data model: attribute paths,
// per-package records with their evaluation status, and the immutable index
// one revision evaluates into.
package pkgs
