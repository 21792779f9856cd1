// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package pkgs

import "fmt"

// FailReason classifies why a single package failed to evaluate.
type FailReason string

const (
	ReasonEvaluationError     FailReason = "evaluation-error"
	ReasonUnsupportedPlatform FailReason = "unsupported-platform"
	ReasonTimeout             FailReason = "timeout"
	ReasonCyclicDefinition    FailReason = "cyclic-definition"
	ReasonUnclassified        FailReason = "unclassified"
)

// Status is the evaluation outcome of one package. The zero value is not
// meaningful; use StatusOk or StatusFailed.
type Status struct {
	Ok bool `yaml:"ok" json:"ok"`
	// Reason is set only when Ok is false.
	Reason FailReason `yaml:"reason,omitempty" json:"reason,omitempty"`
	// Detail carries the raw evaluator message for logs and reports. It is
	// informational only and never participates in diffing.
	Detail string `yaml:"-" json:"-"`
}

// StatusOk is the status of a fully evaluated package.
var StatusOk = Status{Ok: true}

// StatusFailed returns a failed status with the given classified reason.
func StatusFailed(reason FailReason, detail string) Status {
	return Status{Reason: reason, Detail: detail}
}

// String renders the status in the form used by diff output: "ok" or
// "failed:<reason>".
func (s Status) String() string {
	if s.Ok {
		return "ok"
	}
	return fmt.Sprintf("failed:%s", s.Reason)
}

// Record is one comparable unit of the collection. Records are immutable
// after construction; treat all maps as read-only.
type Record struct {
	// Path uniquely locates the record within one index.
	Path AttrPath `yaml:"path" json:"path"`
	Name string   `yaml:"name" json:"name"`
	// Version is "" when unknown (the name carried no parsable version).
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	// Outputs maps output name (out, doc, ...) to its content hash. Empty is
	// valid: no outputs were evaluable.
	Outputs map[string]string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	// Metadata holds non-hash attributes such as description, license, or
	// platform lists.
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Status   Status            `yaml:"status" json:"status"`
}

// NewFailedRecord constructs a placeholder record for a package that is known
// to exist at path but could not be evaluated. Only the path identity of such
// a record participates in diffing.
func NewFailedRecord(path AttrPath, reason FailReason, detail string) *Record {
	return &Record{
		Path:   path,
		Status: StatusFailed(reason, detail),
	}
}
