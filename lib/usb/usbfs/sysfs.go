// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package usbfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	sysfsUSBPath = "/sys/bus/usb/devices"
	devfsUSBPath = "/dev/bus/usb"
)

// ErrNotFound is returned by Find when no connected device matches
// the requested vendor and product IDs.
var ErrNotFound = errors.New("usbfs: no matching device")

// Find scans sysfs for a connected USB device with the given vendor
// and product IDs and returns the usbdevfs node path to pass to Open.
// When several match, the first one encountered wins.
func Find(vendorID, productID uint16) (string, error) {
	return findIn(sysfsUSBPath, devfsUSBPath, vendorID, productID)
}

func findIn(sysfsRoot, devfsRoot string, vendorID, productID uint16) (string, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", sysfsRoot, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		// Device entries look like "1-1" or "1-1.2". Root hubs
		// ("usb1") and interfaces ("1-1:1.0") are skipped.
		if strings.HasPrefix(name, "usb") || strings.Contains(name, ":") {
			continue
		}

		devPath := filepath.Join(sysfsRoot, name)
		vendor, err := readSysfsHex16(filepath.Join(devPath, "idVendor"))
		if err != nil || vendor != vendorID {
			continue
		}
		product, err := readSysfsHex16(filepath.Join(devPath, "idProduct"))
		if err != nil || product != productID {
			continue
		}

		busNum, err := readSysfsUint8(filepath.Join(devPath, "busnum"))
		if err != nil {
			continue
		}
		devNum, err := readSysfsUint8(filepath.Join(devPath, "devnum"))
		if err != nil {
			continue
		}
		return fmt.Sprintf("%s/%03d/%03d", devfsRoot, busNum, devNum), nil
	}
	return "", fmt.Errorf("%w: %04x:%04x", ErrNotFound, vendorID, productID)
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSysfsHex16(path string) (uint16, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func readSysfsUint8(path string) (uint8, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
