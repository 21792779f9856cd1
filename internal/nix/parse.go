// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package nix

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/aldenparker/nix-update-report/internal/evaluator"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// nameVersionRegex splits a derivation name of the form name-version. The
// version part starts at the first dash followed by a digit, optionally
// preceded by "unstable-" for date-pinned packages (e.g.
// "hello-unstable-2024-01-15").
var nameVersionRegex = regexp.MustCompile(`^(?P<name>.*?)-(?P<version>(?:unstable-)?[0-9][0-9a-zA-Z.-]*)$`)

// ParseNameVersion splits a full derivation name into package name and
// version. When no version can be parsed the full name is returned with an
// empty version, meaning unknown.
func ParseNameVersion(fullName string) (name, version string) {
	m := nameVersionRegex.FindStringSubmatch(fullName)
	if m == nil {
		return fullName, ""
	}
	return m[1], m[2]
}

// classifyEvalError maps a failed nix eval invocation to a classified entry
// error based on the context state and well-known evaluator messages.
func classifyEvalError(ctx context.Context, stderr []byte, err error) *evaluator.EntryError {
	detail := firstErrorLine(stderr)
	if detail == "" {
		detail = err.Error()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &evaluator.EntryError{Reason: pkgs.ReasonTimeout, Detail: detail}
	}

	msg := strings.ToLower(string(stderr))
	switch {
	case strings.Contains(msg, "infinite recursion"):
		return &evaluator.EntryError{Reason: pkgs.ReasonCyclicDefinition, Detail: detail}
	case strings.Contains(msg, "is not supported"),
		strings.Contains(msg, "not available on"),
		strings.Contains(msg, "unsupported system"):
		return &evaluator.EntryError{Reason: pkgs.ReasonUnsupportedPlatform, Detail: detail}
	case strings.Contains(msg, "error:"):
		return &evaluator.EntryError{Reason: pkgs.ReasonEvaluationError, Detail: detail}
	}

	return &evaluator.EntryError{Reason: pkgs.ReasonUnclassified, Detail: detail}
}

// firstErrorLine extracts the first "error:" line from nix stderr, falling
// back to the first non-empty line. Nix wraps errors in multi-line traces;
// the headline is what's worth keeping on a record.
func firstErrorLine(stderr []byte) string {
	lines := strings.Split(string(stderr), "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "error:") {
			return trimmed
		}
	}
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
