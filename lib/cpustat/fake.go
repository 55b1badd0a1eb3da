// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package cpustat

import "sync"

// FakeSource is a Source for tests. Each Read returns the snapshot
// most recently installed with Set, so tests script exact counter
// sequences across sampling cycles.
type FakeSource struct {
	mu    sync.Mutex
	times []Times
	err   error
}

// NewFakeSource returns an empty fake source.
func NewFakeSource() *FakeSource {
	return &FakeSource{}
}

// Set installs the snapshot returned by subsequent Reads.
func (f *FakeSource) Set(times ...Times) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times = append([]Times(nil), times...)
	f.err = nil
}

// Fail makes subsequent Reads return err.
func (f *FakeSource) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Read implements Source.
func (f *FakeSource) Read() ([]Times, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]Times(nil), f.times...), nil
}
