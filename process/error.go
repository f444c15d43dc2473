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

// Package process owns the supervised process table: spawning, staged
// termination, and the background restart loop.
package process

import errors "github.com/luciusmagn/hiisi/errors"

const (
	ErrorUnknownUser errors.CodeError = iota + errors.MinPkgProcess
	ErrorLogDir
	ErrorLogFile
	ErrorEmptyCommand
	ErrorSpawn
	ErrorNotFound
	ErrorNotAuthorized
	ErrorTerminate
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorUnknownUser)
	errors.RegisterIdFctMessage(ErrorUnknownUser, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case ErrorUnknownUser:
		return "process: unknown system user"
	case ErrorLogDir:
		return "process: cannot create log directory"
	case ErrorLogFile:
		return "process: cannot open log file"
	case ErrorEmptyCommand:
		return "process: empty command line"
	case ErrorSpawn:
		return "process: spawn failed"
	case ErrorNotFound:
		return "Process not found"
	case ErrorNotAuthorized:
		return "Not authorized to access this process"
	case ErrorTerminate:
		return "process: termination failed"
	}

	return ""
}
