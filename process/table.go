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

package process

import (
	"os/exec"
	"sync"
	"time"

	libwire "github.com/luciusmagn/hiisi/wire"
)

// Row is one entry of the process table: a live or recently-exited child
// plus the metadata needed to report on it and, if policy allows, restart
// it.
type Row struct {
	Id        uint32
	User      string
	Cmd       string
	Cwd       string
	Env       map[string]string
	StartedAt time.Time
	Restart   bool

	StdoutPath string
	StderrPath string

	cmd *exec.Cmd

	// waitCh is closed once a background goroutine has reaped cmd via
	// Wait. exitErr and exitCode are only meaningful after waitCh closes.
	waitCh   chan struct{}
	exitErr  error
	exitCode int
}

// Status reports the row's current child status without blocking.
func (r *Row) Status() libwire.ProcessStatus {
	if r.cmd == nil || r.cmd.Process == nil || r.waitCh == nil {
		return libwire.NewFailedStatus("no process handle")
	}

	select {
	case <-r.waitCh:
		if r.exitErr != nil {
			if _, ok := r.exitErr.(*exec.ExitError); !ok {
				return libwire.NewFailedStatus(r.exitErr.Error())
			}
		}
		return libwire.NewExitedStatus(r.exitCode)
	default:
		return libwire.NewRunningStatus()
	}
}

// Pid returns the child's OS process id, if a process handle exists.
func (r *Row) Pid() (int32, bool) {
	if r.cmd == nil || r.cmd.Process == nil {
		return 0, false
	}
	return int32(r.cmd.Process.Pid), true
}

// Exited reports whether the child has already been reaped.
func (r *Row) Exited() bool {
	if r.waitCh == nil {
		return true
	}

	select {
	case <-r.waitCh:
		return true
	default:
		return false
	}
}

// Info renders the row into the wire snapshot shape returned by Status.
func (r *Row) Info() libwire.ProcessInfo {
	return libwire.ProcessInfo{
		Id:     r.Id,
		User:   r.User,
		Uptime: clampUptime(r.StartedAt),
		Cwd:    r.Cwd,
		Cmd:    r.Cmd,
		Status: r.Status(),
	}
}

func clampUptime(since time.Time) time.Duration {
	if since.IsZero() {
		return 0
	}

	d := time.Since(since)
	if d < 0 {
		return 0
	}

	return d
}

// Table is the daemon's process table: a mutex-protected map from id to Row,
// plus the monotonic id counter. All mutation happens under the same lock
// the supervision loop uses, per the ordering guarantee on request handling.
type Table struct {
	mu     sync.Mutex
	rows   map[uint32]*Row
	nextId uint32
}

// NewTable creates an empty process table.
func NewTable() *Table {
	return &Table{rows: map[uint32]*Row{}}
}

// NextId allocates the next monotonic process id.
func (t *Table) NextId() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextId
	t.nextId++
	return id
}

// Add inserts row into the table, keyed by its Id.
func (t *Table) Add(row *Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[row.Id] = row
}

// Remove deletes and returns the row for id, if present.
func (t *Table) Remove(id uint32) (*Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if ok {
		delete(t.rows, id)
	}

	return row, ok
}

// Get returns the row for id without removing it.
func (t *Table) Get(id uint32) (*Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	return row, ok
}

// Replace swaps the row stored at id, used by the supervision loop after a
// restart re-spawn. It is a no-op if id is no longer present (the row was
// removed by a concurrent Stop).
func (t *Table) Replace(id uint32, row *Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; ok {
		t.rows[id] = row
	}
}

// List returns a snapshot of every row's wire info, in unspecified order.
func (t *Table) List() []libwire.ProcessInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]libwire.ProcessInfo, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row.Info())
	}

	return out
}

// CountsByRestart returns the number of rows with Restart set and the
// number without, for the admin metrics surface.
func (t *Table) CountsByRestart() (restarting, oneShot int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range t.rows {
		if row.Restart {
			restarting++
		} else {
			oneShot++
		}
	}

	return restarting, oneShot
}

// Pids returns the OS process id of every row that still has a live
// process handle, for per-process system monitoring.
func (t *Table) Pids() []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]int32, 0, len(t.rows))
	for _, row := range t.rows {
		if pid, ok := row.Pid(); ok {
			out = append(out, pid)
		}
	}

	return out
}

// WithLock runs fct with the table's mutex held, giving the supervision loop
// the same critical-section granularity as request handlers.
func (t *Table) WithLock(fct func(rows map[uint32]*Row)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fct(t.rows)
}
