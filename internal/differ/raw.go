// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/aldenparker/nix-update-report/internal/log"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
)

// RawDiff serializes both indexes to JSON documents keyed by attribute path
// and writes an ascii JSON delta between them to w. This is the -o raw view:
// positional rather than field-minimal, useful for eyeballing exactly what
// the evaluator saw.
func RawDiff(old, new *pkgs.Index, coloring bool, w io.Writer) error {
	log.Debugf("raw diff: old=%d new=%d", old.Len(), new.Len())

	oldDoc, err := indexDocument(old)
	if err != nil {
		return fmt.Errorf("failed to serialize old index: %w", err)
	}
	newDoc, err := indexDocument(new)
	if err != nil {
		return fmt.Errorf("failed to serialize new index: %w", err)
	}

	delta, err := gojsondiff.New().Compare(oldDoc, newDoc)
	if err != nil {
		return fmt.Errorf("failed to compare indexes: %w", err)
	}

	if !delta.Modified() {
		fmt.Fprintln(w, "The indexes are identical.")
		return nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(oldDoc, &jdoc); err != nil {
		return fmt.Errorf("failed to unmarshal old index: %w", err)
	}

	f := formatter.NewAsciiFormatter(jdoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       coloring,
	})
	diffString, err := f.Format(delta)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, diffString)
	return nil
}

// indexDocument renders an index as a JSON object keyed by attribute path so
// gojsondiff sees per-package objects instead of a positional array.
func indexDocument(ix *pkgs.Index) ([]byte, error) {
	doc := make(map[string]*pkgs.Record, ix.Len())
	for _, r := range ix.Records() {
		doc[r.Path.String()] = r
	}
	return json.Marshal(doc)
}
