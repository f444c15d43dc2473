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

// Package server wires the process table, port registry and wire protocol
// into a running daemon: the per-connection dispatcher, the background
// supervision and persistence ticks, and the optional admin HTTP surface.
package server

import errors "github.com/luciusmagn/hiisi/errors"

const (
	ErrorNotRoot errors.CodeError = iota + errors.MinPkgServer
	ErrorSocketConfig
	ErrorSocketListen
	ErrorAdminListen
	ErrorPortsLoad
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNotRoot)
	errors.RegisterIdFctMessage(ErrorNotRoot, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case ErrorNotRoot:
		return "server: daemon must run as root"
	case ErrorSocketConfig:
		return "server: invalid socket configuration"
	case ErrorSocketListen:
		return "server: failed to bind request socket"
	case ErrorAdminListen:
		return "server: failed to bind admin listener"
	case ErrorPortsLoad:
		return "server: failed to load port registry"
	}

	return ""
}
