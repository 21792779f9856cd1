// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package report renders a change sequence for human or machine consumption:
// markdown reports, text tables, and json/yaml serializations.
package report
