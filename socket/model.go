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

// Package socket defines the shared connection and server contracts used by
// the protocol-specific socket server implementations.
package socket

import (
	"context"
	"crypto/tls"
	"net"
	"strings"
)

// DefaultBufferSize is the default read buffer size used by connection handlers.
const DefaultBufferSize = 32 * 1024

// EOL is the byte used to delimit line-oriented protocols.
const EOL = byte('\n')

// ConnState identifies a stage in the lifecycle of a server-side connection.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

func (c ConnState) String() string {
	switch c {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

// ErrorFilter drops benign errors produced by a listener or connection being
// closed during shutdown, so callers only see errors worth reporting.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if strings.HasSuffix(err.Error(), "use of closed network connection") {
		return nil
	}

	return err
}

// Context is the per-connection handle passed to a HandlerFunc.
type Context interface {
	context.Context

	net.Conn

	// IsConnected reports whether the underlying connection is still open.
	IsConnected() bool

	// LocalHost returns the string form of the local address.
	LocalHost() string

	// RemoteHost returns the string form of the remote address.
	RemoteHost() string
}

// HandlerFunc processes one accepted connection. The server closes the
// connection if the handler returns without doing so itself.
type HandlerFunc func(c Context)

// FuncError receives connection and server errors not suppressed by ErrorFilter.
type FuncError func(e ...error)

// FuncInfo receives connection lifecycle transitions.
type FuncInfo func(local, remote net.Addr, state ConnState)

// FuncInfoServer receives free-form server lifecycle messages.
type FuncInfoServer func(msg string)

// UpdateConn allows a caller to tune a newly accepted net.Conn (e.g. deadlines)
// before the HandlerFunc runs.
type UpdateConn func(c net.Conn)

// Server is the behavior shared by every protocol-specific socket server.
type Server interface {
	// Listen binds and serves until the context is canceled or an
	// unrecoverable error occurs.
	Listen(ctx context.Context) error

	// Shutdown stops accepting new connections and waits for in-flight
	// connections to finish or the context to expire.
	Shutdown(ctx context.Context) error

	// IsRunning reports whether the server is currently accepting connections.
	IsRunning() bool

	// IsGone reports whether the server has fully stopped and released its
	// listener resources.
	IsGone() bool

	// OpenConnections returns the number of currently open connections.
	OpenConnections() int64

	// SetTLS configures transport security; implementations that have no TLS
	// surface (e.g. Unix sockets) accept the call as a no-op.
	SetTLS(enable bool, cfg *tls.Config) error

	RegisterFuncError(f FuncError)
	RegisterFuncInfo(f FuncInfo)
	RegisterFuncInfoServer(f FuncInfoServer)
}
