// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/aldenparker/nix-update-report/internal/config"
)

// outputFormats are the values accepted by --output. "md" and "raw" only make
// sense for diff; the show command falls back to text for both.
var outputFormats = []string{"md", "text", "json", "yaml", "raw"}

// NewGlobalFlags returns the flags shared by every subcommand. ns is the
// subcommand name used for namespaced config file lookups.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "md",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NUR_OUTPUT"),
			),
			Validator: outputValidator,
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
		NewNixBinFlag(ns),
		&cli.IntFlag{
			Name:  "workers",
			Usage: "bound on concurrent per-package evaluations",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NUR_WORKERS"),
			),
			Value: 0,
		},
		&cli.DurationFlag{
			Name:  "eval-timeout",
			Usage: "per-package deep evaluation timeout",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NUR_EVAL_TIMEOUT"),
			),
			Value: 5 * time.Minute,
		},
		&cli.BoolFlag{
			Name:  "deep",
			Usage: "evaluate each package for output hashes and metadata",
			Value: false,
		},
		&cli.StringSliceFlag{
			Name:  "systems",
			Usage: "restrict comparison to the listed systems",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NUR_SYSTEMS"),
			),
		},
	}
}

// NewNixBinFlag constructs the "nix-bin" flag, sourced from the environment
// and the user config file when one exists.
func NewNixBinFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:  "nix-bin",
		Usage: "nix binary to invoke",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("NUR_NIX_BIN"),
		),
		Value: "nix",
	}

	return NameSpacedValueChainFlagFromConfigFile(ns, "nix.bin", flag)
}

// NameSpacedValueChainFlagFromConfigFile appends namespaced and global config
// file sources to the flag's Sources chain. key is the dotted config key; a
// missing config file leaves the flag untouched.
func NameSpacedValueChainFlagFromConfigFile(ns string, key string, flag *cli.StringFlag) *cli.StringFlag {
	path := config.Config.Source
	if path == "" {
		return flag
	}

	src := yaml.YAML(ns+"."+key, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(key, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// outputValidator rejects unknown --output values.
func outputValidator(value string) error {
	for _, f := range outputFormats {
		if value == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (expected one of %v)", value, outputFormats)
}
