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

// Package unix implements a socket.Server over a Unix domain socket, with
// socket-file ownership/permission management and per-connection idle timeouts.
package unix

import (
	"crypto/tls"
	"errors"

	libprm "github.com/luciusmagn/hiisi/file/perm"
	libsck "github.com/luciusmagn/hiisi/socket"
	sckcfg "github.com/luciusmagn/hiisi/socket/config"
)

// ErrInvalidHandler is returned by New when the given HandlerFunc is nil.
var ErrInvalidHandler = errors.New("socket/server/unix: invalid handler")

// ErrInvalidGroup is re-exported from socket/config for callers that only
// import this package.
var ErrInvalidGroup = sckcfg.ErrInvalidGroup

// ErrInvalidProtocol is re-exported from socket/config for callers that only
// import this package.
var ErrInvalidProtocol = sckcfg.ErrInvalidProtocol

// MaxGID is re-exported from socket/config for callers that only import this
// package.
const MaxGID = sckcfg.MaxGID

// ServerUnix is a socket.Server bound to a Unix domain socket file.
type ServerUnix interface {
	libsck.Server

	// Close immediately stops the server and releases its listener,
	// without waiting for in-flight connections to finish.
	Close() error

	// RegisterSocket changes the socket path, file permission and group
	// ownership applied the next time the server binds.
	RegisterSocket(path string, perm libprm.Perm, gid int32) error
}

// New creates a ServerUnix bound to cfg.Address. upd, if non-nil, is invoked
// on every accepted net.Conn before the handler runs. handler must not be nil.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUnix, error) {
	if handler == nil {
		return nil, ErrInvalidHandler
	}

	if cfg.GroupPerm > MaxGID {
		return nil, ErrInvalidGroup
	}

	if !cfg.Network.IsUnix() {
		return nil, ErrInvalidProtocol
	}

	s := &srv{
		upd:     upd,
		handler: handler,
		path:    cfg.Address,
		perm:    cfg.PermFile,
		gid:     cfg.GroupPerm,
		idle:    cfg.ConIdleTimeout,
		gone:    true,
	}

	return s, nil
}
