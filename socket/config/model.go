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

// Package config describes the dial/listen configuration shared by the socket
// client and server implementations.
package config

import (
	"errors"
	"net"
	"runtime"

	libdur "github.com/luciusmagn/hiisi/duration"
	libprm "github.com/luciusmagn/hiisi/file/perm"
	libptc "github.com/luciusmagn/hiisi/network/protocol"
)

var (
	ErrInvalidProtocol  = errors.New("socket/config: invalid protocol")
	ErrInvalidTLSConfig = errors.New("socket/config: invalid TLS config")
	ErrInvalidGroup     = errors.New("socket/config: invalid unix group")
)

// MaxGID is the largest group id accepted for a listening Unix socket.
const MaxGID = 32767

// TLSConfig is a minimal enable switch for transport security; the supervisor
// daemon only dials/listens on a local Unix socket, so no certificate material
// is modelled here.
type TLSConfig struct {
	Enabled bool
}

type tlsServerConfig struct {
	Enable bool
}

// Client describes how to dial a remote endpoint.
type Client struct {
	Network libptc.NetworkProtocol
	Address string
	TLS     TLSConfig
}

// Server describes how to bind a listening endpoint.
type Server struct {
	Network   libptc.NetworkProtocol
	Address   string
	PermFile  libprm.Perm
	GroupPerm int32
	TLS       tlsServerConfig

	// ConIdleTimeout closes a connection that has been idle (no read activity)
	// for longer than this duration. Zero disables the idle timeout.
	ConIdleTimeout libdur.Duration
}

func validateProtocol(p libptc.NetworkProtocol) error {
	switch p {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6,
		libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		return nil
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		if runtime.GOOS == "windows" {
			return ErrInvalidProtocol
		}
		return nil
	default:
		return ErrInvalidProtocol
	}
}

// Validate checks the protocol and address of the client configuration.
func (c Client) Validate() error {
	if err := validateProtocol(c.Network); err != nil {
		return err
	}

	switch {
	case c.Network.IsTCP():
		_, err := net.ResolveTCPAddr(c.Network.String(), c.Address)
		return err
	case c.Network.IsUDP():
		_, err := net.ResolveUDPAddr(c.Network.String(), c.Address)
		return err
	case c.Network.IsUnix():
		_, err := net.ResolveUnixAddr(c.Network.String(), c.Address)
		return err
	}

	return nil
}

// Validate checks the protocol, address and Unix ownership settings of the
// server configuration.
func (s Server) Validate() error {
	if err := validateProtocol(s.Network); err != nil {
		return err
	}

	if s.GroupPerm > MaxGID {
		return ErrInvalidGroup
	}

	switch {
	case s.Network.IsTCP():
		_, err := net.ResolveTCPAddr(s.Network.String(), s.Address)
		return err
	case s.Network.IsUDP():
		_, err := net.ResolveUDPAddr(s.Network.String(), s.Address)
		return err
	case s.Network.IsUnix():
		_, err := net.ResolveUnixAddr(s.Network.String(), s.Address)
		return err
	}

	return nil
}
