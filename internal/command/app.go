// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aldenparker/nix-update-report/internal/config"
)

// InitApp constructs the root CLI command. The arg immediately following the
// binary is the subcommand and doubles as the config namespace key, so
// `diff.workers` in nur.yaml shadows `workers` for the diff command only.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.Config.Namespace = ns

	app := &cli.Command{
		Name:  "nur",
		Usage: "Nix Update Report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "nur version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		diffCommandBuilder(),
		showCommandBuilder(),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
