// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpustat reads cumulative per-processor idle and total time
// from /proc/stat. The sampler diffs successive readings to compute
// the busy fraction shown on the front panel.
package cpustat
