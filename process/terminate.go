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
	"syscall"
	"time"
)

// gracePeriod is how long each termination stage waits for the child to
// exit before escalating.
const gracePeriod = 15 * time.Second

// Terminate drives row's child to exit: SIGINT, wait up to 15s; SIGTERM,
// wait up to 15s more; SIGKILL, unconditional. It returns once the child has
// been reaped at any stage, or an error if the final SIGKILL itself fails to
// be delivered.
func Terminate(row *Row) error {
	if row.cmd == nil || row.cmd.Process == nil {
		return nil
	}

	if row.Exited() {
		return nil
	}

	if err := row.cmd.Process.Signal(syscall.SIGINT); err != nil {
		return ErrorTerminate.Error(err)
	}

	if waitFor(row, gracePeriod) {
		return nil
	}

	if err := row.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return ErrorTerminate.Error(err)
	}

	if waitFor(row, gracePeriod) {
		return nil
	}

	if err := row.cmd.Process.Kill(); err != nil {
		return ErrorTerminate.Error(err)
	}

	<-row.waitCh
	return nil
}

// waitFor blocks until row's child is reaped or d elapses, returning whether
// it was reaped in time.
func waitFor(row *Row, d time.Duration) bool {
	select {
	case <-row.waitCh:
		return true
	case <-time.After(d):
		return false
	}
}
