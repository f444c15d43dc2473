/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package sysmon samples host-wide and per-process CPU/memory counters for
// the admin metrics surface. No request handler in the core protocol
// depends on it.
package sysmon

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// minRefresh is the smallest interval between two aggregate samples; a
// refresh requested sooner returns the cached value.
const minRefresh = 1 * time.Second

// ProcessStats is one pid's CPU/memory sample.
type ProcessStats struct {
	CPUPercent float64
	MemoryRSS  uint64
}

// Stats is a full aggregate sample: host-wide totals plus a per-pid map for
// every pid passed to Update.
type Stats struct {
	TotalCPUPercent float64
	TotalMemory     uint64
	UsedMemory      uint64
	Processes       map[int32]ProcessStats
}

// Monitor caches the most recent Stats sample, refreshing no more than once
// per second.
type Monitor struct {
	mu         sync.Mutex
	lastSample time.Time
	last       Stats
}

// New creates an idle Monitor. The first Update always samples.
func New() *Monitor {
	return &Monitor{}
}

// Update returns the cached sample if less than a second old, otherwise
// resamples host-wide counters plus per-process stats for the given pids.
func (m *Monitor) Update(pids []int32) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastSample) < minRefresh {
		return m.last
	}

	m.last = sample(pids)
	m.lastSample = time.Now()

	return m.last
}

func sample(pids []int32) Stats {
	stats := Stats{Processes: make(map[int32]ProcessStats, len(pids))}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.TotalCPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.TotalMemory = vm.Total
		stats.UsedMemory = vm.Used
	}

	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		ps := ProcessStats{}
		if pct, e := proc.CPUPercent(); e == nil {
			ps.CPUPercent = pct
		}
		if mi, e := proc.MemoryInfo(); e == nil && mi != nil {
			ps.MemoryRSS = mi.RSS
		}

		stats.Processes[pid] = ps
	}

	return stats
}
