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

// ResponseDataKind discriminates a ResponseData's active variant.
type ResponseDataKind string

const (
	DataProcessStarted ResponseDataKind = "ProcessStarted"
	DataProcessStopped ResponseDataKind = "ProcessStopped"
	DataStatus         ResponseDataKind = "Status"
	DataLogs           ResponseDataKind = "Logs"
	DataPortAllocated  ResponseDataKind = "PortAllocated"
	DataPortFreed      ResponseDataKind = "PortFreed"
	DataPortList       ResponseDataKind = "PortList"
)

// LogsData is the payload of a Logs response.
type LogsData struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// ResponseData is an externally-tagged union over every successful command
// outcome.
type ResponseData struct {
	Kind ResponseDataKind

	ProcessStartedId uint32
	Status           []ProcessInfo
	Logs             *LogsData
	PortAllocated    uint16
	PortList         []PortInfo
}

// NewProcessStartedData builds a ProcessStarted{id} response payload.
func NewProcessStartedData(id uint32) ResponseData {
	return ResponseData{Kind: DataProcessStarted, ProcessStartedId: id}
}

// NewProcessStoppedData builds a fieldless ProcessStopped response payload.
func NewProcessStoppedData() ResponseData { return ResponseData{Kind: DataProcessStopped} }

// NewStatusData builds a Status(list) response payload.
func NewStatusData(list []ProcessInfo) ResponseData {
	if list == nil {
		list = []ProcessInfo{}
	}
	return ResponseData{Kind: DataStatus, Status: list}
}

// NewLogsData builds a Logs{stdout,stderr} response payload.
func NewLogsData(stdout, stderr string) ResponseData {
	return ResponseData{Kind: DataLogs, Logs: &LogsData{Stdout: stdout, Stderr: stderr}}
}

// NewPortAllocatedData builds a PortAllocated{port} response payload.
func NewPortAllocatedData(port uint16) ResponseData {
	return ResponseData{Kind: DataPortAllocated, PortAllocated: port}
}

// NewPortFreedData builds a fieldless PortFreed response payload.
func NewPortFreedData() ResponseData { return ResponseData{Kind: DataPortFreed} }

// NewPortListData builds a PortList(list) response payload.
func NewPortListData(list []PortInfo) ResponseData {
	if list == nil {
		list = []PortInfo{}
	}
	return ResponseData{Kind: DataPortList, PortList: list}
}

type processStartedPayload struct {
	Id uint32 `json:"id"`
}

// MarshalJSON implements json.Marshaler for ResponseData.
func (d ResponseData) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DataProcessStarted:
		return marshalTagged(string(d.Kind), processStartedPayload{Id: d.ProcessStartedId})
	case DataProcessStopped:
		return marshalBareString(string(d.Kind))
	case DataStatus:
		return marshalTagged(string(d.Kind), d.Status)
	case DataLogs:
		return marshalTagged(string(d.Kind), d.Logs)
	case DataPortAllocated:
		return marshalTagged(string(d.Kind), d.PortAllocated)
	case DataPortFreed:
		return marshalBareString(string(d.Kind))
	case DataPortList:
		return marshalTagged(string(d.Kind), d.PortList)
	}

	return nil, ErrorUnknownVariant.Error(nil)
}

// UnmarshalJSON implements json.Unmarshaler for ResponseData.
func (d *ResponseData) UnmarshalJSON(data []byte) error {
	if tag, isBare, err := unmarshalBareOrTagged(data); err != nil {
		return err
	} else if isBare {
		d.Kind = ResponseDataKind(tag)
		return nil
	}

	tag, raw, err := splitTagged(data)
	if err != nil {
		return err
	}

	d.Kind = ResponseDataKind(tag)

	switch d.Kind {
	case DataProcessStarted:
		var p processStartedPayload
		if err = decodeInto(raw, &p); err != nil {
			return err
		}
		d.ProcessStartedId = p.Id
		return nil
	case DataStatus:
		return decodeInto(raw, &d.Status)
	case DataLogs:
		d.Logs = &LogsData{}
		return decodeInto(raw, d.Logs)
	case DataPortAllocated:
		return decodeInto(raw, &d.PortAllocated)
	case DataPortList:
		return decodeInto(raw, &d.PortList)
	}

	return ErrorUnknownVariant.Error(nil)
}

// ResponseKind discriminates a Response's active variant.
type ResponseKind string

const (
	ResponseOk    ResponseKind = "Ok"
	ResponseError ResponseKind = "Error"
)

// Response is the outer envelope written back on every request: either Ok
// wrapping a ResponseData, or Error wrapping a human-readable message.
type Response struct {
	Kind ResponseKind

	Ok    *ResponseData
	Error string
}

// NewOkResponse builds an Ok(data) response.
func NewOkResponse(data ResponseData) Response {
	return Response{Kind: ResponseOk, Ok: &data}
}

// NewErrorResponse builds an Error(message) response.
func NewErrorResponse(message string) Response {
	return Response{Kind: ResponseError, Error: message}
}

// MarshalJSON implements json.Marshaler for Response.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ResponseOk:
		return marshalTagged(string(r.Kind), r.Ok)
	case ResponseError:
		return marshalTagged(string(r.Kind), r.Error)
	}

	return nil, ErrorUnknownVariant.Error(nil)
}

// UnmarshalJSON implements json.Unmarshaler for Response.
func (r *Response) UnmarshalJSON(data []byte) error {
	tag, raw, err := splitTagged(data)
	if err != nil {
		return err
	}

	r.Kind = ResponseKind(tag)

	switch r.Kind {
	case ResponseOk:
		r.Ok = &ResponseData{}
		return decodeInto(raw, r.Ok)
	case ResponseError:
		return decodeInto(raw, &r.Error)
	}

	return ErrorUnknownVariant.Error(nil)
}
