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
	"fmt"

	libfrm "github.com/luciusmagn/hiisi/frame"
	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libptr "github.com/luciusmagn/hiisi/portreg"
	libproc "github.com/luciusmagn/hiisi/process"
	libsck "github.com/luciusmagn/hiisi/socket"
	libwire "github.com/luciusmagn/hiisi/wire"
)

// Dispatcher services one Message at a time against the shared process
// table and port registry. It holds no connection state of its own: Handle
// adapts it to a socket.HandlerFunc by looping frame reads over it.
type Dispatcher struct {
	Table *libproc.Table
	Ports *libptr.Registry
	Log   liblog.FuncLog
}

// Handle implements socket.HandlerFunc: read a Message, dispatch it, write
// the Response, and repeat until the connection errors or the peer closes
// it. A malformed frame ends the connection without a reply, per the frame
// codec's contract.
func (d *Dispatcher) Handle(c libsck.Context) {
	for {
		var msg libwire.Message
		if err := libfrm.ReadFrame(c, &msg); err != nil {
			return
		}

		resp := d.handle(msg)

		if err := libfrm.WriteFrame(c, &resp); err != nil {
			return
		}
	}
}

// handle dispatches one Message to completion and returns the Response to
// write back. It never panics on malformed input: every Command variant is
// covered explicitly.
func (d *Dispatcher) handle(msg libwire.Message) libwire.Response {
	// TODO: msg.User is trusted verbatim. Enforcing peer-credential checks
	// (SO_PEERCRED via golang.org/x/sys/unix) would close the spoofing gap
	// on a shared socket; kept as specified.
	switch msg.Cmd.Kind {
	case libwire.CommandRun:
		return d.handleRun(msg.User, msg.Cmd.Run)
	case libwire.CommandStop:
		return d.handleStop(msg.User, msg.Cmd.Stop)
	case libwire.CommandLogs:
		return d.handleLogs(msg.User, msg.Cmd.Logs)
	case libwire.CommandStatus:
		return libwire.NewOkResponse(libwire.NewStatusData(d.Table.List()))
	case libwire.CommandPortAllocate:
		return d.handlePortAllocate(msg.User, msg.Cmd.PortAllocate)
	case libwire.CommandPortFree:
		return d.handlePortFree(msg.Cmd.PortFree)
	case libwire.CommandPortLookup:
		return d.handlePortLookup(msg.Cmd.PortLookup)
	}

	return libwire.NewErrorResponse("unknown command")
}

func (d *Dispatcher) handleRun(user string, p *libwire.RunParams) libwire.Response {
	id := d.Table.NextId()

	row, err := libproc.Spawn(libproc.SpawnRequest{
		Id:      id,
		User:    user,
		Cmd:     p.Cmd,
		Cwd:     p.Cwd,
		Env:     p.Env,
		Restart: p.Restart,
	})
	if err != nil {
		d.logError("server: spawn failed", err)
		return libwire.NewErrorResponse(fmt.Sprintf("Failed to start process: %s", err))
	}

	d.Table.Add(row)

	return libwire.NewOkResponse(libwire.NewProcessStartedData(id))
}

func (d *Dispatcher) handleStop(user string, p *libwire.StopParams) libwire.Response {
	row, ok := d.Table.Get(p.Id)
	if !ok {
		return libwire.NewErrorResponse("Process not found")
	}

	if row.User != user {
		return libwire.NewErrorResponse("Not authorized to stop this process")
	}

	row, ok = d.Table.Remove(p.Id)
	if !ok {
		return libwire.NewErrorResponse("Process not found")
	}

	if err := libproc.Terminate(row); err != nil {
		d.logError("server: terminate failed", err)
		return libwire.NewErrorResponse(fmt.Sprintf("Failed to stop process: %s", err))
	}

	return libwire.NewOkResponse(libwire.NewProcessStoppedData())
}

func (d *Dispatcher) handleLogs(user string, p *libwire.LogsParams) libwire.Response {
	row, ok := d.Table.Get(p.Id)
	if !ok {
		return libwire.NewErrorResponse("Process not found")
	}

	if row.User != user {
		return libwire.NewErrorResponse("Not authorized to view these logs")
	}

	return libwire.NewOkResponse(libwire.NewLogsData(row.StdoutPath, row.StderrPath))
}

func (d *Dispatcher) handlePortAllocate(user string, p *libwire.PortAllocateParams) libwire.Response {
	port, ok := d.Ports.Allocate(user, p.Port)
	if !ok {
		return libwire.NewErrorResponse("Port allocation failed")
	}

	return libwire.NewOkResponse(libwire.NewPortAllocatedData(port))
}

func (d *Dispatcher) handlePortFree(p *libwire.PortFreeParams) libwire.Response {
	if !d.Ports.Free(p.Port) {
		return libwire.NewErrorResponse("Port not found or not owned by user")
	}

	return libwire.NewOkResponse(libwire.NewPortFreedData())
}

func (d *Dispatcher) handlePortLookup(p *libwire.PortLookupParams) libwire.Response {
	return libwire.NewOkResponse(libwire.NewPortListData(d.Ports.Lookup(p.User)))
}

func (d *Dispatcher) logError(message string, err error) {
	if d.Log == nil {
		return
	}
	d.Log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, message, err)
}
