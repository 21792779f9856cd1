// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/aldenparker/nix-update-report/internal/differ"
	"github.com/aldenparker/nix-update-report/internal/evaluator"
	"github.com/aldenparker/nix-update-report/internal/filters"
	"github.com/aldenparker/nix-update-report/internal/pkgs"
	"github.com/aldenparker/nix-update-report/internal/report"
)

// diffCommandAction evaluates both revisions concurrently, diffs the
// resulting indexes, and renders per the output flags. Per-package
// evaluation failures never fail the command; only enumeration errors do.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return fmt.Errorf("diff requires exactly two flake references, got %d", args.Len())
	}
	prevRef, nextRef := args.Get(0), args.Get(1)
	log.Debugf("diff: prev=%s next=%s", prevRef, nextRef)

	workers := resolveWorkers(cmd)

	// The two sides are independent: a fatal enumeration error on one must
	// not cancel the other, and both errors are surfaced distinctly. So no
	// shared cancellation group here, just joint waiting.
	var (
		oldIx, newIx   *pkgs.Index
		oldErr, newErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		oldIx, oldErr = evaluator.New(newTree(cmd, prevRef), workers).Evaluate(ctx, prevRef)
		return nil
	})
	g.Go(func() error {
		newIx, newErr = evaluator.New(newTree(cmd, nextRef), workers).Evaluate(ctx, nextRef)
		return nil
	})
	_ = g.Wait()

	if oldErr != nil {
		return fmt.Errorf("previous revision: %w", oldErr)
	}
	if newErr != nil {
		return fmt.Errorf("next revision: %w", newErr)
	}

	changes := filters.Apply(differ.Diff(oldIx, newIx), cmd.String("filter"))

	if cmd.Bool("tui") {
		return differ.Browse(changes)
	}

	switch cmd.String("output") {
	case "raw":
		return differ.RawDiff(oldIx, newIx, cmd.Bool("color"), os.Stdout)
	case "json", "yaml":
		return report.EmitChanges(changes, cmd.String("output"), os.Stdout)
	case "text":
		header := ""
		if cmd.Bool("titles") {
			header = fmt.Sprintf("%s -> %s", prevRef, nextRef)
		}
		report.TableWriter(changes, tableOptions(cmd, header), os.Stdout)
		return nil
	default:
		md := report.Markdown(oldIx, newIx, changes, cmd.String("title"))
		out := cmd.String("out")
		if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s (%d changes)\n", out, len(changes))
		return nil
	}
}

// diffCommandBuilder constructs the cli.Command for "diff", wiring flags and
// the action handler.
func diffCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare the packages of two flake revisions",
		UsageText: "nur diff <previous-ref> <next-ref> [options]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "comma-separated list of filters to apply to changes",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output path for the markdown report",
				Value: "report.md",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "title for the generated report",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("NUR_TITLE"),
				),
			},
			&cli.BoolFlag{
				Name:        "tui",
				Usage:       "browse changes interactively instead of writing output",
				HideDefault: true,
			},
		}, NewGlobalFlags("diff")...),
		Action: diffCommandAction,
	}
}
