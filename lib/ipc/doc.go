// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the CBOR-encoded message types for the
// frontpaneld control socket. Both cmd/frontpaneld and
// cmd/frontpanelctl import this package so the wire types are
// defined once rather than mirrored.
package ipc
