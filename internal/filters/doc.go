// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters narrows a change sequence with --filter expressions before
// rendering.
package filters
