// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package evaluator turns one revision of a recipe tree into an immutable
// package index. Enumeration failure is the only fatal condition; every
// per-entry failure is captured as a failed record so one broken package
// never hides the other tens of thousands.
package evaluator
