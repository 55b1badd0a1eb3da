// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for frontpaneld.
//
// Configuration is loaded from a single YAML file specified by:
//   - the FRONTPANEL_CONFIG environment variable, or
//   - the --config flag passed to the daemon.
//
// There are no fallbacks or automatic discovery; a missing file is an
// error. Every field has a default, so an empty file is valid.
package config
