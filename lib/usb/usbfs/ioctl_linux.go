// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package usbfs

import "unsafe"

// urb must match the kernel's struct usbdevfs_urb layout. The uintptr
// fields are pointers on the kernel side, so the Go layout tracks the
// platform word size the same way the C one does.
type urb struct {
	typ          uint8
	endpoint     uint8
	status       int32
	flags        uint32
	buffer       uintptr
	bufferLength int32
	actualLength int32
	startFrame   int32
	streamID     uint32
	errorCount   int32
	signr        uint32
	userContext  uintptr
}

// ifaceIoctl matches the kernel's struct usbdevfs_ioctl. Interface
// scoped sub-ioctls such as USBDEVFS_DISCONNECT are issued through
// USBDEVFS_IOCTL with this envelope rather than directly on the fd.
type ifaceIoctl struct {
	ifno      int32
	ioctlCode int32
	data      uintptr
}

// URB type codes for USBDEVFS_SUBMITURB.
const (
	urbTypeIso       = 0
	urbTypeInterrupt = 1
	urbTypeControl   = 2
	urbTypeBulk      = 3
)

// ioctl number encoding (asm-generic layout):
//
//	bits 0-7:   command number
//	bits 8-15:  type character
//	bits 16-29: argument size
//	bits 30-31: direction
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func io(typ, nr uintptr) uintptr         { return ioc(iocNone, typ, nr, 0) }
func ior(typ, nr, size uintptr) uintptr  { return ioc(iocRead, typ, nr, size) }
func iow(typ, nr, size uintptr) uintptr  { return ioc(iocWrite, typ, nr, size) }
func iowr(typ, nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, typ, nr, size) }

const usbdevfsType = 'U'

// Usbdevfs request numbers, encoded with the sizes of the Go structs
// above so the values come out right on both 32- and 64-bit targets.
var (
	reqSubmitURB        = ior(usbdevfsType, 10, unsafe.Sizeof(urb{}))
	reqDiscardURB       = io(usbdevfsType, 11)
	reqReapURBNDelay    = iow(usbdevfsType, 13, unsafe.Sizeof(uintptr(0)))
	reqClaimInterface   = ior(usbdevfsType, 15, 4)
	reqReleaseInterface = ior(usbdevfsType, 16, 4)
	reqDriverIoctl      = iowr(usbdevfsType, 18, unsafe.Sizeof(ifaceIoctl{}))
	reqReset            = io(usbdevfsType, 20)
	reqDisconnect       = io(usbdevfsType, 22)
	reqConnect          = io(usbdevfsType, 23)
)
