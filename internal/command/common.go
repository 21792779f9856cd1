// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/urfave/cli/v3"

	"github.com/aldenparker/nix-update-report/internal/config"
	"github.com/aldenparker/nix-update-report/internal/nix"
	"github.com/aldenparker/nix-update-report/internal/report"
)

// newTree builds the nix capability for one flake reference from the command
// flags.
func newTree(cmd *cli.Command, ref string) *nix.Tree {
	t := nix.NewTree(ref)
	if bin := cmd.String("nix-bin"); bin != "" {
		t.Bin = bin
	}
	t.Deep = cmd.Bool("deep")
	t.Systems = cmd.StringSlice("systems")
	t.EvalTimeout = cmd.Duration("eval-timeout")
	return t
}

// resolveWorkers picks the evaluation concurrency: flag first, then the
// config file, then the evaluator's own default (signalled by 0).
func resolveWorkers(cmd *cli.Command) int {
	if w := cmd.Int("workers"); w > 0 {
		return w
	}
	w, _ := config.GetInt("evaluator.workers", 0)
	return w
}

// tableOptions maps the shared output flags onto report table rendering.
func tableOptions(cmd *cli.Command, header string) report.TableOptions {
	return report.TableOptions{
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Header: header,
	}
}
