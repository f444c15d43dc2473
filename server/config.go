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

package server

import (
	"time"

	libprm "github.com/luciusmagn/hiisi/file/perm"
	libptr "github.com/luciusmagn/hiisi/portreg"
)

// DefaultSocketPath is where the request socket binds absent a config
// override.
const DefaultSocketPath = "/run/hiisi/hiisi.sock"

// Config assembles everything Daemon needs to start: the request socket, the
// port registry file, and the optional admin HTTP surface.
type Config struct {
	SocketPath  string
	SocketPerm  libprm.Perm
	SocketGroup int32

	PortsFile string

	AdminEnabled bool
	AdminListen  string

	MaxLogBytes int64

	// IdleTimeout closes a connection idle for longer than this; zero
	// disables it.
	IdleTimeout time.Duration
}

// DefaultConfig returns the configuration used when no override is given.
func DefaultConfig() Config {
	return Config{
		SocketPath:   DefaultSocketPath,
		SocketPerm:   0o660,
		PortsFile:    libptr.DefaultPath,
		AdminEnabled: false,
		AdminListen:  "127.0.0.1:9090",
		MaxLogBytes:  64 * 1024 * 1024,
	}
}
