/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package protocol defines the network protocol enum shared by socket client
// and server configuration.
package protocol

// NetworkProtocol identifies a network family/transport pair usable by net.Dial
// and net.Listen ("tcp", "udp", "unix", ...).
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

var protocolNames = map[NetworkProtocol]string{
	NetworkUnix:     "unix",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
	NetworkUnixGram: "unixgram",
}

var namesProtocol = func() map[string]NetworkProtocol {
	m := make(map[string]NetworkProtocol, len(protocolNames))
	for p, s := range protocolNames {
		m[s] = p
	}
	return m
}()

// String implements fmt.Stringer, returning the net package name of the protocol.
func (n NetworkProtocol) String() string {
	return protocolNames[n]
}

// Int returns the ordinal value of the protocol.
func (n NetworkProtocol) Int() int {
	if _, ok := protocolNames[n]; !ok {
		return 0
	}
	return int(n)
}

// Int64 returns the ordinal value of the protocol as int64.
func (n NetworkProtocol) Int64() int64 {
	return int64(n.Int())
}

// Uint returns the ordinal value of the protocol as uint.
func (n NetworkProtocol) Uint() uint {
	return uint(n.Int())
}

// Uint64 returns the ordinal value of the protocol as uint64.
func (n NetworkProtocol) Uint64() uint64 {
	return uint64(n.Int())
}

// Code returns the network name as used by net.Dial/net.Listen ("tcp", "unix", ...).
func (n NetworkProtocol) Code() string {
	return n.String()
}

// IsUnix reports whether the protocol is a Unix-domain socket family.
func (n NetworkProtocol) IsUnix() bool {
	return n == NetworkUnix || n == NetworkUnixGram
}

// IsTCP reports whether the protocol is a TCP family.
func (n NetworkProtocol) IsTCP() bool {
	return n == NetworkTCP || n == NetworkTCP4 || n == NetworkTCP6
}

// IsUDP reports whether the protocol is a UDP family.
func (n NetworkProtocol) IsUDP() bool {
	return n == NetworkUDP || n == NetworkUDP4 || n == NetworkUDP6
}
