// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"context"
	"math/bits"
)

// runSampler is the sampler goroutine: one sampling cycle per tick
// until the context is cancelled. Started by Attach, stopped
// synchronously by Detach.
func (p *Panel) runSampler(ctx context.Context) {
	defer close(p.samplerDone)

	ticker := p.clock.NewTicker(samplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sample()
		}
	}
}

// stopSampler cancels the sampler and waits for any in-progress
// cycle to finish.
func (p *Panel) stopSampler() {
	p.samplerCancel()
	<-p.samplerDone
}

// sample runs one telemetry cycle: read cumulative counters for every
// online processor, convert the deltas since the previous cycle into
// an 8-bit busy fraction per slot, and push the buffer to the device
// if any slot changed.
func (p *Panel) sample() {
	times, err := p.cpu.Read()
	if err != nil {
		p.logger.Warn("reading CPU accounting", "error", err)
		return
	}

	dirty := false
	for _, t := range times {
		if t.CPU < 0 || t.CPU >= MaxCPUs {
			continue
		}
		prev := &p.prev[t.CPU]
		diffIdle := t.Idle - prev.idle
		diffWall := t.Total - prev.total
		prev.idle, prev.total = t.Idle, t.Total

		// Counter skew across CPU offline/online transitions can
		// make idle advance past wall; clamp so the busy fraction
		// never goes negative.
		if diffIdle > diffWall {
			diffWall = diffIdle
		}
		if diffWall == 0 {
			// Nothing to divide by; leave this slot untouched
			// until the counters move.
			continue
		}

		busy := diffWall - diffIdle
		// 128-bit multiply so wrapped counters cannot overflow the
		// scale step; busy <= diffWall keeps the quotient in range.
		hi, lo := bits.Mul64(255, busy)
		load, _ := bits.Div64(hi, lo, diffWall)
		if load > 255 {
			load = 255
		}

		if p.buffer[t.CPU] != byte(load) {
			p.buffer[t.CPU] = byte(load)
			dirty = true
		}
	}

	if !dirty {
		return
	}

	p.publishedMu.Lock()
	p.published = p.buffer
	p.publishedMu.Unlock()

	if n, err := p.Write(p.buffer[:]); err != nil {
		p.logger.Warn("panel write failed", "error", err)
	} else if n <= 0 {
		p.logger.Warn("panel write accepted no data", "written", n)
	}
}
