//go:build linux || darwin

/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package unix

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	libdur "github.com/luciusmagn/hiisi/duration"
)

// sCtx binds one accepted net.Conn to a child context derived from the
// server's Listen context. Closing the connection - whether by the handler,
// by the peer disconnecting, or by an idle timeout - cancels the context;
// canceling the parent context closes the connection.
type sCtx struct {
	context.Context

	net.Conn

	cancel context.CancelFunc
	closed atomic.Bool
	idle   libdur.Duration

	mu sync.Mutex
}

func newContext(parent context.Context, conn net.Conn, idle libdur.Duration) *sCtx {
	ctx, cancel := context.WithCancel(parent)

	c := &sCtx{
		Context: ctx,
		Conn:    conn,
		cancel:  cancel,
		idle:    idle,
	}

	go c.watchParent(parent)

	return c
}

// watchParent closes the connection as soon as the server-wide context is
// canceled, so a blocked Read unblocks and the handler goroutine returns.
func (c *sCtx) watchParent(parent context.Context) {
	select {
	case <-parent.Done():
		_ = c.Close()
	case <-c.Context.Done():
	}
}

func (c *sCtx) bumpDeadline() {
	if c.idle <= 0 {
		return
	}

	_ = c.Conn.SetDeadline(time.Now().Add(time.Duration(c.idle)))
}

// Read implements net.Conn. Any read error - timeout, peer close, or local
// close - marks the connection closed and cancels the context.
func (c *sCtx) Read(p []byte) (int, error) {
	c.bumpDeadline()

	n, err := c.Conn.Read(p)
	if err != nil {
		c.markClosed()
	}

	return n, err
}

// Write implements net.Conn. A write error marks the connection closed and
// cancels the context.
func (c *sCtx) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err != nil {
		c.markClosed()
	}

	return n, err
}

// Close implements net.Conn, closing the underlying connection exactly once
// and canceling the context.
func (c *sCtx) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil
	}

	err := c.Conn.Close()
	c.markClosed()

	return err
}

func (c *sCtx) markClosed() {
	if c.closed.CompareAndSwap(false, true) {
		c.cancel()
	}
}

// IsConnected reports whether the connection has not been closed.
func (c *sCtx) IsConnected() bool {
	return !c.closed.Load()
}

// LocalHost returns the string form of the local address.
func (c *sCtx) LocalHost() string {
	if a := c.Conn.LocalAddr(); a != nil {
		return a.String()
	}

	return ""
}

// RemoteHost returns the string form of the remote address.
func (c *sCtx) RemoteHost() string {
	if a := c.Conn.RemoteAddr(); a != nil {
		return a.String()
	}

	return ""
}
