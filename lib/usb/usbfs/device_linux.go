// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package usbfs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("usbfs: device closed")

// inflight pairs a submitted URB with its transfer. Holding the
// payload slice here keeps it reachable for the garbage collector
// while the kernel owns the buffer pointer.
type inflight struct {
	u        *urb
	transfer *usb.Transfer
	data     []byte
}

// Device is an open usbdevfs device node with one claimed interface.
// It implements usb.Device. Completions are reaped on an internal
// goroutine and delivered from there.
type Device struct {
	log   *slog.Logger
	fd    int
	iface uint8

	endpoint  uint8
	hasBulkEP bool

	// wakeR/wakeW is a pipe used to unblock the reaper's poll when
	// the device is being closed.
	wakeR int
	wakeW int

	mu         sync.Mutex
	closed     bool
	pending    map[*urb]*inflight
	byTransfer map[*usb.Transfer]*urb

	reaperDone chan struct{}
}

var _ usb.Device = (*Device)(nil)

// Open opens the usbdevfs node at path, detaches any kernel driver
// from the given interface, claims it, and starts the completion
// reaper. The caller owns the returned device and must Close it.
func Open(path string, iface uint8, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	d := &Device{
		log:        logger.With("device", path),
		fd:         fd,
		iface:      iface,
		pending:    make(map[*urb]*inflight),
		byTransfer: make(map[*usb.Transfer]*urb),
		reaperDone: make(chan struct{}),
	}

	desc, err := d.readDescriptors()
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("reading descriptors from %s: %w", path, err)
	}
	d.endpoint, d.hasBulkEP = bulkOutEndpoint(desc, iface)

	// A kernel driver may already be bound to the interface (on the
	// target hardware, the stock HID driver grabs it). Detach it
	// first; ENODATA means nothing was bound.
	if err := d.driverIoctl(reqDisconnect); err != nil && !errors.Is(err, unix.ENODATA) {
		d.log.Warn("detaching kernel driver", "error", err)
	}

	ifno := uint32(iface)
	if err := d.ioctl(reqClaimInterface, uintptr(unsafe.Pointer(&ifno))); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("claiming interface %d: %w", iface, err)
	}

	var pipeFDs [2]int
	if err := unix.Pipe2(pipeFDs[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		d.releaseInterface()
		unix.Close(fd)
		return nil, fmt.Errorf("creating wake pipe: %w", err)
	}
	d.wakeR, d.wakeW = pipeFDs[0], pipeFDs[1]

	go d.reap()
	return d, nil
}

// readDescriptors reads the descriptor stream the device node
// presents: the device descriptor followed by the active
// configuration.
func (d *Device) readDescriptors() ([]byte, error) {
	var desc []byte
	buf := make([]byte, 1024)
	for {
		n, err := unix.Read(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		desc = append(desc, buf[:n]...)
	}
	if len(desc) < deviceDescriptorLength {
		return nil, fmt.Errorf("descriptor stream truncated at %d bytes", len(desc))
	}
	return desc, nil
}

// BulkOutEndpoint returns the claimed interface's first bulk OUT
// endpoint address.
func (d *Device) BulkOutEndpoint() (uint8, error) {
	if !d.hasBulkEP {
		return 0, usb.ErrNoEndpoint
	}
	return d.endpoint, nil
}

// Submit queues t as an asynchronous bulk URB. The transfer's
// completion is delivered by the reaper goroutine.
func (d *Device) Submit(t *usb.Transfer) error {
	inf := &inflight{
		u: &urb{
			typ:          urbTypeBulk,
			endpoint:     t.Endpoint,
			bufferLength: int32(len(t.Data)),
		},
		transfer: t,
		data:     t.Data,
	}
	if len(t.Data) > 0 {
		inf.u.buffer = uintptr(unsafe.Pointer(&inf.data[0]))
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.pending[inf.u] = inf
	d.byTransfer[t] = inf.u
	d.mu.Unlock()

	if err := d.ioctl(reqSubmitURB, uintptr(unsafe.Pointer(inf.u))); err != nil {
		d.mu.Lock()
		delete(d.pending, inf.u)
		delete(d.byTransfer, t)
		d.mu.Unlock()

		var errno unix.Errno
		if errors.As(err, &errno) {
			return fmt.Errorf("submitting bulk transfer: %w", submitError(errno))
		}
		return fmt.Errorf("submitting bulk transfer: %w", err)
	}
	return nil
}

// Cancel asks the kernel to discard an in-flight transfer. The
// transfer still completes through the reaper, with a cancellation
// status. Unknown transfers are ignored.
func (d *Device) Cancel(t *usb.Transfer) {
	d.mu.Lock()
	u, ok := d.byTransfer[t]
	d.mu.Unlock()
	if !ok {
		return
	}
	// EINVAL here means the URB already completed and is waiting to
	// be reaped. Either way the completion callback is on its way.
	if err := d.ioctl(reqDiscardURB, uintptr(unsafe.Pointer(u))); err != nil && !errors.Is(err, unix.EINVAL) {
		d.log.Warn("discarding transfer", "error", err)
	}
}

// Reset performs a bus-level reset. The kernel re-enumerates the
// device and rebinds the claimed interface to this fd.
func (d *Device) Reset() error {
	if err := d.ioctl(reqReset, 0); err != nil {
		return fmt.Errorf("resetting device: %w", err)
	}
	return nil
}

// Close flushes in-flight transfers with a shutdown status, stops the
// reaper, releases the interface, and closes the device node. It is
// idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	flushed := d.takePendingLocked()
	d.mu.Unlock()

	// Discard kernel-side first so the hardware stops touching the
	// buffers, then deliver the shutdown completions ourselves. The
	// reaper cannot race these: the entries are already out of the
	// pending map, so its reaps of the same URBs find nothing.
	for _, inf := range flushed {
		if err := d.ioctl(reqDiscardURB, uintptr(unsafe.Pointer(inf.u))); err != nil && !errors.Is(err, unix.EINVAL) {
			d.log.Warn("discarding transfer during close", "error", err)
		}
	}
	for _, inf := range flushed {
		inf.transfer.Complete(usb.StatusShutdown, 0)
	}

	unix.Close(d.wakeW)
	<-d.reaperDone
	unix.Close(d.wakeR)

	d.releaseInterface()
	if err := d.driverIoctl(reqConnect); err != nil && !errors.Is(err, unix.ENODEV) {
		d.log.Debug("rebinding kernel driver", "error", err)
	}

	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("closing device node: %w", err)
	}
	return nil
}

// takePendingLocked empties the pending maps and returns what was in
// flight. Caller holds d.mu.
func (d *Device) takePendingLocked() []*inflight {
	flushed := make([]*inflight, 0, len(d.pending))
	for _, inf := range d.pending {
		flushed = append(flushed, inf)
	}
	d.pending = make(map[*urb]*inflight)
	d.byTransfer = make(map[*usb.Transfer]*urb)
	return flushed
}

// reap is the completion loop. It polls the device fd for reapable
// URBs (usbdevfs signals writability when a completion is waiting)
// alongside the wake pipe, and drains completions without blocking.
func (d *Device) reap() {
	defer close(d.reaperDone)

	fds := []unix.PollFd{
		{Fd: int32(d.fd), Events: unix.POLLOUT},
		{Fd: int32(d.wakeR), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			d.flush(usb.StatusShutdown)
			return
		}
		if !d.drainCompletions() {
			return
		}
		// The write end of the pipe closing is the shutdown signal.
		if fds[1].Revents != 0 {
			return
		}
	}
}

// drainCompletions reaps until the kernel has nothing ready,
// delivering each completion. It reports false when the reaper
// should exit: the device is gone or the fd is no longer usable.
func (d *Device) drainCompletions() bool {
	for {
		var u *urb
		err := d.ioctl(reqReapURBNDelay, uintptr(unsafe.Pointer(&u)))
		switch {
		case err == nil:
			d.complete(u)
		case errors.Is(err, unix.EAGAIN):
			return true
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ENODEV):
			d.flush(usb.StatusNoDevice)
			return false
		default:
			d.log.Warn("reaping completions", "error", err)
			d.flush(usb.StatusShutdown)
			return false
		}
	}
}

// complete delivers one reaped URB's completion. A URB no longer in
// the pending map was already flushed by Close; its completion has
// been delivered and the reaped entry is dropped.
func (d *Device) complete(u *urb) {
	d.mu.Lock()
	inf, ok := d.pending[u]
	if ok {
		delete(d.pending, u)
		delete(d.byTransfer, inf.transfer)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	inf.transfer.Complete(statusFromURB(u.status), int(u.actualLength))
}

// flush completes everything still pending with the given status.
func (d *Device) flush(status usb.Status) {
	d.mu.Lock()
	flushed := d.takePendingLocked()
	d.mu.Unlock()
	for _, inf := range flushed {
		inf.transfer.Complete(status, 0)
	}
}

func (d *Device) releaseInterface() {
	ifno := uint32(d.iface)
	if err := d.ioctl(reqReleaseInterface, uintptr(unsafe.Pointer(&ifno))); err != nil && !errors.Is(err, unix.ENODEV) {
		d.log.Warn("releasing interface", "error", err)
	}
}

// driverIoctl sends an interface-scoped sub-ioctl (driver disconnect
// or reconnect) through the USBDEVFS_IOCTL envelope.
func (d *Device) driverIoctl(code uintptr) error {
	req := ifaceIoctl{
		ifno:      int32(d.iface),
		ioctlCode: int32(code),
	}
	return d.ioctl(reqDriverIoctl, uintptr(unsafe.Pointer(&req)))
}

func (d *Device) ioctl(req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
