// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package main

import (
	"log/slog"
	"os"

	"github.com/frontpanel-project/frontpanel/lib/config"
	"github.com/frontpanel-project/frontpanel/lib/usb"
	"github.com/frontpanel-project/frontpanel/lib/usb/usbfs"
)

// openPanelDevice locates and opens the panel's usbdevfs node. With
// an explicit device path configured, discovery is skipped; otherwise
// sysfs is scanned for the configured vendor/product pair.
func openPanelDevice(cfg *config.Config, logger *slog.Logger) (usb.Device, string, error) {
	path := cfg.Device.Path
	if path == "" {
		found, err := usbfs.Find(cfg.Device.VendorID, cfg.Device.ProductID)
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	dev, err := usbfs.Open(path, cfg.Device.Interface, logger)
	if err != nil {
		return nil, "", err
	}
	return dev, path, nil
}

// devicePresent probes whether the device node still exists. The
// kernel removes it on disconnect, so a stat failure means the panel
// is gone.
func devicePresent(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
