// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/cpustat"
	"github.com/frontpanel-project/frontpanel/lib/usb"
)

const (
	// VendorID and ProductID identify the Xserve front panel.
	VendorID  = 0x05ac
	ProductID = 0x8261

	// PayloadSize is the fixed hardware payload: byte i is the busy
	// fraction for processor i (0–15); bytes 16–31 are reserved.
	PayloadSize = 32

	// MaxCPUs is the number of processor slots on the panel.
	MaxCPUs = 16

	// writesInFlight bounds concurrent outstanding bulk writes so a
	// stuck device cannot accumulate unbounded transfer buffers.
	writesInFlight = 8

	// samplePeriod is the fixed CPU sampling rate.
	samplePeriod = 250 * time.Millisecond

	// quiesceTimeout bounds the Suspend and PreReset drain wait
	// before in-flight transfers are cancelled outright.
	quiesceTimeout = time.Second
)

// Options configures Attach. Zero-value fields get production
// defaults.
type Options struct {
	// Clock drives the sampler period and quiesce timeouts.
	// Defaults to clock.Real().
	Clock clock.Clock

	// CPU is the per-processor accounting source. Defaults to
	// cpustat.ProcStat().
	CPU cpustat.Source

	// Logger receives sampler warnings and completion errors.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Panel is the shared device handle: it owns the bus device, the
// write pipeline's synchronization state, and the sampler's telemetry
// state. It is reference counted; the attach holder and every
// in-flight completion hold a reference, and the bus device is closed
// exactly once when the last reference is released.
type Panel struct {
	dev      usb.Device
	endpoint uint8

	clock  clock.Clock
	cpu    cpustat.Source
	logger *slog.Logger

	refs atomic.Int64

	limiter *semaphore.Weighted
	tracker *tracker
	latch   errorLatch

	// ioMu serializes submission against the disconnect flag so a
	// transfer is never handed to a detached device. PreReset holds
	// it across the reset window.
	ioMu         sync.Mutex
	disconnected bool

	// buffer and prev are owned exclusively by the sampler goroutine.
	buffer [PayloadSize]byte
	prev   [MaxCPUs]cpuTimes

	// published is the last buffer pushed toward the hardware,
	// copied out for Status readers under its own lock.
	publishedMu sync.Mutex
	published   [PayloadSize]byte

	samplerCancel context.CancelFunc
	samplerDone   chan struct{}
}

// cpuTimes is the previous cumulative snapshot for one processor.
type cpuTimes struct {
	idle  uint64
	total uint64
}

// Attach builds a Panel over an open device and starts the sampler.
// Attach takes ownership of dev: on error, and on the final reference
// release after Detach, the device is closed by the handle.
func Attach(dev usb.Device, opts Options) (*Panel, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.CPU == nil {
		opts.CPU = cpustat.ProcStat()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &Panel{
		dev:     dev,
		clock:   opts.Clock,
		cpu:     opts.CPU,
		logger:  opts.Logger,
		limiter: semaphore.NewWeighted(writesInFlight),
		tracker: newTracker(),
	}
	p.refs.Store(1)

	endpoint, err := dev.BulkOutEndpoint()
	if err != nil {
		p.release()
		return nil, fmt.Errorf("discovering bulk OUT endpoint: %w", err)
	}
	p.endpoint = endpoint

	ctx, cancel := context.WithCancel(context.Background())
	p.samplerCancel = cancel
	p.samplerDone = make(chan struct{})
	go p.runSampler(ctx)

	return p, nil
}

// hold takes a handle reference on behalf of an in-flight completion.
func (p *Panel) hold() {
	p.refs.Add(1)
}

// release drops a handle reference; the last release closes the bus
// device.
func (p *Panel) release() {
	if p.refs.Add(-1) > 0 {
		return
	}
	if err := p.dev.Close(); err != nil {
		p.logger.Warn("closing panel device", "error", err)
	}
}

// Status is a snapshot of the handle for the control socket.
type Status struct {
	// Disconnected reports whether Detach has run.
	Disconnected bool

	// InFlight is the number of submitted, uncompleted transfers.
	InFlight int

	// Buffer is the last payload pushed toward the hardware.
	Buffer []byte
}

// Status returns a point-in-time snapshot. Safe to call concurrently
// with everything else.
func (p *Panel) Status() Status {
	p.ioMu.Lock()
	disconnected := p.disconnected
	p.ioMu.Unlock()

	p.publishedMu.Lock()
	buffer := make([]byte, PayloadSize)
	copy(buffer, p.published[:])
	p.publishedMu.Unlock()

	return Status{
		Disconnected: disconnected,
		InFlight:     p.tracker.len(),
		Buffer:       buffer,
	}
}
