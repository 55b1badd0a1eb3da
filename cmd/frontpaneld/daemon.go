// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/config"
	"github.com/frontpanel-project/frontpanel/lib/frontpanel"
	"github.com/frontpanel-project/frontpanel/lib/ipc"
	"github.com/frontpanel-project/frontpanel/lib/usb"
	"github.com/frontpanel-project/frontpanel/lib/version"
)

// reattachInterval is the backoff between discovery attempts while no
// panel is connected.
const reattachInterval = 5 * time.Second

// presencePoll is how often the daemon probes for the attached panel
// still being present. The kernel would deliver a disconnect
// callback; a userspace driver has to go look.
const presencePoll = 2 * time.Second

// errNotAttached is returned by control actions that need a panel
// while none is attached.
var errNotAttached = errors.New("no panel attached")

// daemon owns the attach/detach lifecycle of one panel and serves the
// control socket actions against it.
type daemon struct {
	cfg       *config.Config
	log       *slog.Logger
	clock     clock.Clock
	startedAt time.Time

	// openDevice discovers and opens the panel, returning the device
	// and its node path. Swapped for a fake in tests.
	openDevice func() (usb.Device, string, error)

	// present probes whether the device at path is still connected.
	present func(path string) bool

	mu    sync.Mutex
	panel *frontpanel.Panel
	dev   usb.Device
	path  string
}

func newDaemon(cfg *config.Config, logger *slog.Logger, clk clock.Clock) *daemon {
	d := &daemon{
		cfg:       cfg,
		log:       logger,
		clock:     clk,
		startedAt: clk.Now(),
	}
	d.openDevice = func() (usb.Device, string, error) { return openPanelDevice(cfg, logger) }
	d.present = devicePresent
	return d
}

// run is the attach loop: discover and attach the panel, watch it
// until it disappears, detach, repeat. Returns when ctx is cancelled,
// after detaching cleanly.
func (d *daemon) run(ctx context.Context) error {
	var lastFailure string
	for ctx.Err() == nil {
		dev, path, err := d.openDevice()
		if err != nil {
			// The panel being absent is steady state on most
			// machines this daemon is installed on; only log when
			// the failure changes.
			if err.Error() != lastFailure {
				d.log.Warn("panel not available", "error", err)
				lastFailure = err.Error()
			}
			d.sleep(ctx, reattachInterval)
			continue
		}
		lastFailure = ""

		panel, err := frontpanel.Attach(dev, frontpanel.Options{
			Clock:  d.clock,
			Logger: d.log,
		})
		if err != nil {
			// Attach closed the device on failure.
			d.log.Error("attaching panel", "device", path, "error", err)
			d.sleep(ctx, reattachInterval)
			continue
		}

		d.mu.Lock()
		d.panel, d.dev, d.path = panel, dev, path
		d.mu.Unlock()
		d.log.Info("panel attached", "device", path)

		d.watch(ctx)
		d.detach()
	}
	return ctx.Err()
}

// watch blocks until the attached panel disappears or ctx is
// cancelled.
func (d *daemon) watch(ctx context.Context) {
	ticker := d.clock.NewTicker(presencePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.present(d.path) {
				d.log.Info("panel disconnected", "device", d.path)
				return
			}
		}
	}
}

// detach tears down the attached panel. Safe to call when nothing is
// attached.
func (d *daemon) detach() {
	d.mu.Lock()
	panel := d.panel
	d.panel, d.dev, d.path = nil, nil, ""
	d.mu.Unlock()

	if panel != nil {
		panel.Detach()
		d.log.Info("panel detached")
	}
}

// sleep pauses for the given duration or until ctx is cancelled.
func (d *daemon) sleep(ctx context.Context, duration time.Duration) {
	select {
	case <-ctx.Done():
	case <-d.clock.After(duration):
	}
}

// current returns the attached panel and device, or errNotAttached.
func (d *daemon) current() (*frontpanel.Panel, usb.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panel == nil {
		return nil, nil, errNotAttached
	}
	return d.panel, d.dev, nil
}

// registerActions wires the control socket actions to the daemon.
func (d *daemon) registerActions(server *ipc.SocketServer) {
	server.Handle(ipc.ActionStatus, d.handleStatus)
	server.Handle(ipc.ActionSuspend, d.handleSuspend)
	server.Handle(ipc.ActionResume, d.handleResume)
	server.Handle(ipc.ActionReset, d.handleReset)
	server.Handle(ipc.ActionDisplay, d.handleDisplay)
}

// handleStatus reports daemon and panel state. Unlike the other
// actions it succeeds with Attached=false when no panel is connected,
// so operators can distinguish "daemon down" from "panel missing".
func (d *daemon) handleStatus(ctx context.Context, request ipc.Request) (any, error) {
	info := ipc.StatusInfo{
		Version:       version.Info(),
		UptimeSeconds: int64(d.clock.Now().Sub(d.startedAt).Seconds()),
	}

	d.mu.Lock()
	panel, path := d.panel, d.path
	d.mu.Unlock()

	if panel != nil {
		status := panel.Status()
		info.Attached = true
		info.DevicePath = path
		info.Disconnected = status.Disconnected
		info.InFlight = status.InFlight
		info.Buffer = status.Buffer
	}
	return info, nil
}

func (d *daemon) handleSuspend(ctx context.Context, request ipc.Request) (any, error) {
	panel, _, err := d.current()
	if err != nil {
		return nil, err
	}
	panel.Suspend()
	return nil, nil
}

func (d *daemon) handleResume(ctx context.Context, request ipc.Request) (any, error) {
	panel, _, err := d.current()
	if err != nil {
		return nil, err
	}
	panel.Resume()
	return nil, nil
}

// handleReset runs the bus-reset sequence: quiesce around the reset
// so nothing is in flight while the device re-enumerates. PostReset
// always runs, even when the reset ioctl fails, so submissions are
// unblocked either way.
func (d *daemon) handleReset(ctx context.Context, request ipc.Request) (any, error) {
	panel, dev, err := d.current()
	if err != nil {
		return nil, err
	}

	panel.PreReset()
	resetErr := dev.Reset()
	panel.PostReset()

	if resetErr != nil {
		return nil, resetErr
	}
	return nil, nil
}

func (d *daemon) handleDisplay(ctx context.Context, request ipc.Request) (any, error) {
	panel, _, err := d.current()
	if err != nil {
		return nil, err
	}
	written, err := panel.Write(request.Payload)
	if err != nil {
		return nil, err
	}
	return ipc.DisplayResult{Written: written}, nil
}
