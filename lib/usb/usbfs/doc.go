// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package usbfs implements the usb.Device interface on top of the
// Linux usbdevfs character devices under /dev/bus/usb. It claims a
// single interface, submits bulk OUT transfers as asynchronous URBs,
// and reaps completions on a dedicated goroutine.
//
// The package also provides sysfs-based device discovery: Find walks
// /sys/bus/usb/devices looking for a vendor/product match and returns
// the matching usbdevfs node path.
package usbfs
