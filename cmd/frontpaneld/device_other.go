// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package main

import (
	"errors"
	"log/slog"

	"github.com/frontpanel-project/frontpanel/lib/config"
	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// The usbdevfs backend only exists on Linux; elsewhere the daemon
// builds (for tests and cross-platform development) but can never
// attach hardware.
func openPanelDevice(cfg *config.Config, logger *slog.Logger) (usb.Device, string, error) {
	return nil, "", errors.New("usb device access requires linux")
}

func devicePresent(path string) bool {
	return false
}
