// Copyright (c) 2026 Alden Parker.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for nur's user
// configuration. The configuration is expected to be a YAML document located
// in the user's configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/nur.yaml or $HOME/.config/nur.yaml
//   - Windows: %APPDATA%/nur/nur.yaml
//
// Actual resolution relies on os.UserConfigDir which follows platform
// conventions. NUR_CFG_FILE overrides the path entirely.
package config
