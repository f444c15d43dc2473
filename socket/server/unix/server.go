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
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	libdur "github.com/luciusmagn/hiisi/duration"
	libprm "github.com/luciusmagn/hiisi/file/perm"
	libsck "github.com/luciusmagn/hiisi/socket"
)

type srv struct {
	mu sync.Mutex

	upd     libsck.UpdateConn
	handler libsck.HandlerFunc

	path string
	perm libprm.Perm
	gid  int32
	idle libdur.Duration

	fctErr  libsck.FuncError
	fctInfo libsck.FuncInfo
	fctSrv  libsck.FuncInfoServer

	listener net.Listener
	lcancel  context.CancelFunc
	running  atomic.Bool
	gone     bool

	open atomic.Int64

	wg sync.WaitGroup
}

func (s *srv) onError(err error) {
	if err = libsck.ErrorFilter(err); err == nil {
		return
	}

	s.mu.Lock()
	f := s.fctErr
	s.mu.Unlock()

	if f != nil {
		f(err)
	}
}

func (s *srv) onInfo(local, remote net.Addr, state libsck.ConnState) {
	s.mu.Lock()
	f := s.fctInfo
	s.mu.Unlock()

	if f != nil {
		f(local, remote, state)
	}
}

func (s *srv) onInfoServer(msg string) {
	s.mu.Lock()
	f := s.fctSrv
	s.mu.Unlock()

	if f != nil {
		f(msg)
	}
}

// RegisterFuncError implements socket.Server.
func (s *srv) RegisterFuncError(f libsck.FuncError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fctErr = f
}

// RegisterFuncInfo implements socket.Server.
func (s *srv) RegisterFuncInfo(f libsck.FuncInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fctInfo = f
}

// RegisterFuncInfoServer implements socket.Server.
func (s *srv) RegisterFuncInfoServer(f libsck.FuncInfoServer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fctSrv = f
}

// SetTLS is a no-op for Unix domain sockets.
func (s *srv) SetTLS(_ bool, _ *tls.Config) error {
	return nil
}

// RegisterSocket changes the bind path, permission and group ownership used
// the next time the server listens.
func (s *srv) RegisterSocket(path string, perm libprm.Perm, gid int32) error {
	if gid > MaxGID {
		return ErrInvalidGroup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = path
	s.perm = perm
	s.gid = gid

	return nil
}

// IsRunning implements socket.Server.
func (s *srv) IsRunning() bool {
	return s.running.Load()
}

// IsGone implements socket.Server.
func (s *srv) IsGone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gone
}

// OpenConnections implements socket.Server.
func (s *srv) OpenConnections() int64 {
	return s.open.Load()
}

// Listen implements socket.Server, binding the Unix socket and accepting
// connections until ctx is canceled, Close is called, or an unrecoverable
// listener error occurs.
func (s *srv) Listen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	_ = os.Remove(path)

	l, err := net.Listen("unix", path)
	if err != nil {
		s.onError(err)
		return err
	}

	s.mu.Lock()
	if s.perm != 0 {
		_ = os.Chmod(path, s.perm.FileMode())
	}
	if s.gid >= 0 {
		_ = os.Chown(path, -1, int(s.gid))
	}
	s.listener = l
	s.gone = false
	s.mu.Unlock()

	s.running.Store(true)
	s.onInfoServer("unix socket server listening on " + path)

	lctx, lcnl := context.WithCancel(ctx)
	defer lcnl()

	s.mu.Lock()
	s.lcancel = lcnl
	s.mu.Unlock()

	go func() {
		<-lctx.Done()
		_ = l.Close()
	}()

	var acceptErr error

	for {
		c, e := l.Accept()
		if e != nil {
			if lctx.Err() != nil {
				acceptErr = nil
			} else {
				acceptErr = e
				s.onError(e)
			}
			break
		}

		s.wg.Add(1)
		go s.handle(lctx, c)
	}

	s.running.Store(false)
	s.wg.Wait()

	_ = os.Remove(path)

	s.mu.Lock()
	s.gone = true
	s.mu.Unlock()

	s.onInfoServer("unix socket server stopped")

	if acceptErr != nil {
		return acceptErr
	}

	return ctx.Err()
}

func (s *srv) handle(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.open.Add(-1)

	s.open.Add(1)

	if s.upd != nil {
		s.upd(conn)
	}

	s.onInfo(nil, conn.RemoteAddr(), libsck.ConnectionNew)

	c := newContext(ctx, conn, s.idle)
	defer func() { _ = c.Close() }()

	s.onInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionHandler)
	s.runHandler(c)
	s.onInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionClose)
}

func (s *srv) runHandler(c *sCtx) {
	defer func() {
		if r := recover(); r != nil {
			s.onError(recoverError(r))
		}
	}()

	s.handler(c)
}

func recoverError(r interface{}) error {
	if e, ok := r.(error); ok {
		return e
	}

	return fmt.Errorf("socket/server/unix: handler panic: %v", r)
}

// Shutdown implements socket.Server, stopping the listener and waiting for
// in-flight connections to finish or ctx to expire.
func (s *srv) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	cancel := s.lcancel
	s.mu.Unlock()

	if l != nil {
		_ = l.Close()
	}

	// force in-flight connections closed so their handlers return and the
	// wait group below can drain.
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	s.gone = true
	s.listener = nil
	s.mu.Unlock()

	s.running.Store(false)

	return nil
}

// Close stops the server immediately, without waiting for in-flight
// connections.
func (s *srv) Close() error {
	s.mu.Lock()
	l := s.listener
	cancel := s.lcancel
	s.listener = nil
	s.gone = true
	s.mu.Unlock()

	s.running.Store(false)

	if cancel != nil {
		cancel()
	}

	if l == nil {
		return nil
	}

	return l.Close()
}
