// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/aldenparker/nix-update-report/internal/evaluator"
	"github.com/aldenparker/nix-update-report/internal/report"
)

// showCommandAction evaluates one revision and renders its package index.
func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 1 {
		return fmt.Errorf("show requires exactly one flake reference, got %d", args.Len())
	}
	ref := args.Get(0)
	log.Debugf("show: ref=%s", ref)

	ix, err := evaluator.New(newTree(cmd, ref), resolveWorkers(cmd)).Evaluate(ctx, ref)
	if err != nil {
		return err
	}

	switch cmd.String("output") {
	case "json":
		return report.EmitJSON(ix.Records(), os.Stdout)
	case "yaml":
		return report.EmitYAML(ix.Records(), os.Stdout)
	default:
		header := ""
		if cmd.Bool("titles") {
			header = fmt.Sprintf("%s (%d packages)", ref, ix.Len())
		}
		report.IndexTable(ix, tableOptions(cmd, header), os.Stdout)
		return nil
	}
}

// showCommandBuilder constructs the cli.Command for "show".
func showCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "list the packages of one flake revision",
		UsageText: "nur show <ref> [options]",
		Flags:     NewGlobalFlags("show"),
		Action:    showCommandAction,
	}
}
