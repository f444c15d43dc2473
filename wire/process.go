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

package wire

import "time"

// ProcessStatusKind discriminates a ProcessStatus's active variant.
type ProcessStatusKind string

const (
	ProcessRunning ProcessStatusKind = "Running"
	ProcessExited  ProcessStatusKind = "Exited"
	ProcessFailed  ProcessStatusKind = "Failed"
)

// ProcessStatus is an externally-tagged union: Running (fieldless),
// Exited(code) or Failed(reason).
type ProcessStatus struct {
	Kind ProcessStatusKind

	ExitCode int
	Reason   string
}

// NewRunningStatus builds a Running status.
func NewRunningStatus() ProcessStatus { return ProcessStatus{Kind: ProcessRunning} }

// NewExitedStatus builds an Exited(code) status.
func NewExitedStatus(code int) ProcessStatus {
	return ProcessStatus{Kind: ProcessExited, ExitCode: code}
}

// NewFailedStatus builds a Failed(reason) status.
func NewFailedStatus(reason string) ProcessStatus {
	return ProcessStatus{Kind: ProcessFailed, Reason: reason}
}

// MarshalJSON implements json.Marshaler for ProcessStatus.
func (s ProcessStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ProcessRunning:
		return marshalBareString(string(s.Kind))
	case ProcessExited:
		return marshalTagged(string(s.Kind), s.ExitCode)
	case ProcessFailed:
		return marshalTagged(string(s.Kind), s.Reason)
	}

	return nil, ErrorUnknownVariant.Error(nil)
}

// UnmarshalJSON implements json.Unmarshaler for ProcessStatus.
func (s *ProcessStatus) UnmarshalJSON(data []byte) error {
	if tag, isBare, err := unmarshalBareOrTagged(data); err != nil {
		return err
	} else if isBare {
		s.Kind = ProcessStatusKind(tag)
		return nil
	}

	tag, raw, err := splitTagged(data)
	if err != nil {
		return err
	}

	s.Kind = ProcessStatusKind(tag)

	switch s.Kind {
	case ProcessExited:
		return decodeInto(raw, &s.ExitCode)
	case ProcessFailed:
		return decodeInto(raw, &s.Reason)
	}

	return ErrorUnknownVariant.Error(nil)
}

// ProcessInfo is a snapshot row of the process table, as returned by Status.
type ProcessInfo struct {
	Id     uint32        `json:"id"`
	User   string        `json:"user"`
	Uptime time.Duration `json:"uptime"`
	Cwd    string        `json:"cwd"`
	Cmd    string        `json:"cmd"`
	Status ProcessStatus `json:"status"`
}
