// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"os"
	"regexp"
	"strings"

	"github.com/apex/log"

	"github.com/aldenparker/nix-update-report/internal/differ"
)

// filterRegex parses one filter expression into key, operator, and target.
// Operators are one of = ^ ~, optionally prefixed with '!' for negation.
// Examples: "kind=added", "path^packages.x86_64-linux", "name~^lib",
// "kind!=removed".
var filterRegex = regexp.MustCompile(`^([^!=^~]+)(!?[=^~])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// filterKeys are the change-record fields a filter may address.
var filterKeys = map[string]func(differ.ChangeRecord) string{
	"kind": func(cr differ.ChangeRecord) string { return cr.Kind.String() },
	"path": func(cr differ.ChangeRecord) string { return cr.Path.String() },
	"name": func(cr differ.ChangeRecord) string {
		if cr.After != nil {
			return cr.After.Name
		}
		if cr.Before != nil {
			return cr.Before.Name
		}
		return ""
	},
	"version": func(cr differ.ChangeRecord) string {
		if cr.After != nil && cr.After.Version != "" {
			return cr.After.Version
		}
		if cr.Before != nil {
			return cr.Before.Version
		}
		return ""
	},
	"system": func(cr differ.ChangeRecord) string { return cr.Path.System() },
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unknown key, unsupported operand, malformed expression) are
// logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc // Final length depends on how many specs are valid.
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override for values that contain
	// commas.
	delim := ","
	if d, ok := os.LookupEnv("NUR_FILTER_DELIM"); ok {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Warnf("invalid filter: %s", filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		value := parts[3]

		if _, known := filterKeys[key]; !known {
			log.Warnf("invalid filter key: %s", key)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		if operand == "~" {
			if _, err := regexp.Compile(value); err != nil {
				log.Warnf("invalid filter regex: %s", value)
				continue
			}
		}

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   value,
		})
	}

	return filters
}

// Apply returns the changes that match every filter in the spec. An empty
// spec returns the input unchanged.
func Apply(changes []differ.ChangeRecord, spec string) []differ.ChangeRecord {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return changes
	}

	//nolint:prealloc
	var out []differ.ChangeRecord
	for _, cr := range changes {
		if matches(cr, filters) {
			out = append(out, cr)
		}
	}
	log.Debugf("filtered changes: in=%d out=%d", len(changes), len(out))
	return out
}

// matches reports whether the change satisfies all filters.
func matches(cr differ.ChangeRecord, filters []Filter) bool {
	for _, f := range filters {
		value := filterKeys[f.Key](cr)

		var ok bool
		switch f.Operand {
		case "=":
			ok = value == f.Value
		case "^":
			ok = strings.HasPrefix(value, f.Value)
		case "~":
			// Compile checked in BuildFilters.
			ok, _ = regexp.MatchString(f.Value, value)
		}

		if ok == f.Negate {
			return false
		}
	}
	return true
}
