// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes the ordered, deterministic set of package-level
// changes between two evaluated indexes, and provides an interactive browser
// over the result.
package differ
