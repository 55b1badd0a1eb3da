// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package cpustat

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Times is a cumulative time snapshot for one processor, in jiffies.
//
//	idle  = idle + iowait
//	total = user + nice + system + idle + iowait + irq + softirq + steal
//
// guest and guest_nice are already folded into user/nice by kernel
// accounting, so they are not added separately. Both counters are
// monotonic for an online CPU but may skew when a CPU goes offline
// and returns; the sampler's delta clamp absorbs that.
type Times struct {
	CPU   int
	Idle  uint64
	Total uint64
}

// Source yields cumulative per-CPU times for the currently online
// processors, ordered by CPU index.
type Source interface {
	Read() ([]Times, error)
}

// ProcStat returns a Source backed by /proc/stat.
func ProcStat() Source {
	return &procStat{path: "/proc/stat"}
}

type procStat struct {
	path string
}

func (s *procStat) Read() ([]Times, error) {
	return readTimesFrom(s.path)
}

// readTimesFrom parses the per-CPU lines of a /proc/stat-format file.
// The aggregate "cpu " line and non-CPU lines (intr, ctxt, ...) are
// skipped. A per-CPU line with fewer than 8 numeric fields or an
// unparseable value is skipped rather than failing the whole read:
// one malformed line must not stall the sampler.
func readTimesFrom(path string) ([]Times, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var times []Times
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 9 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(fields[0], "cpu"))
		if err != nil {
			// The aggregate "cpu" line, or garbage.
			continue
		}

		values := make([]uint64, 8)
		ok := true
		for i := 0; i < 8; i++ {
			values[i], err = strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		// 0=user 1=nice 2=system 3=idle 4=iowait 5=irq 6=softirq 7=steal
		var total uint64
		for _, v := range values {
			total += v
		}
		times = append(times, Times{
			CPU:   index,
			Idle:  values[3] + values[4],
			Total: total,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return times, nil
}
