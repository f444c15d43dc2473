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
	"context"
	"net/http"
	"os"

	libdur "github.com/luciusmagn/hiisi/duration"
	libptc "github.com/luciusmagn/hiisi/network/protocol"
	libsck "github.com/luciusmagn/hiisi/socket"
	sckcfg "github.com/luciusmagn/hiisi/socket/config"
	libunix "github.com/luciusmagn/hiisi/socket/server/unix"

	libfds "github.com/luciusmagn/hiisi/ioutils/fileDescriptor"
	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libptr "github.com/luciusmagn/hiisi/portreg"
	libproc "github.com/luciusmagn/hiisi/process"
	libticker "github.com/luciusmagn/hiisi/runner/ticker"
	libsysmon "github.com/luciusmagn/hiisi/sysmon"
)

// minOpenFiles is the soft RLIMIT_NOFILE the daemon asks for on Start: the
// request socket, the admin listener, and two log files per supervised
// child add up quickly under the default 1024 most distros ship with.
const minOpenFiles = 4096

// Daemon owns every long-lived piece of the running supervisor: the request
// socket, the process table and port registry it dispatches against, the
// background supervision/persistence/rotation ticks, and the optional admin
// HTTP listener.
type Daemon struct {
	cfg Config
	log liblog.FuncLog

	Table   *libproc.Table
	Ports   *libptr.Registry
	Monitor *libsysmon.Monitor

	socket     libunix.ServerUnix
	dispatcher *Dispatcher

	supervisor libticker.Ticker
	persister  libticker.Ticker
	rotator    libticker.Ticker

	metrics *adminMetrics
	admin   *http.Server
}

// New assembles a Daemon from cfg. It does not bind anything yet: call
// Start to bind the request socket and, if enabled, the admin listener.
func New(cfg Config, log liblog.FuncLog) (*Daemon, error) {
	ports, err := libptr.Load(cfg.PortsFile)
	if err != nil {
		return nil, ErrorPortsLoad.Error(err)
	}

	table := libproc.NewTable()

	d := &Daemon{
		cfg:     cfg,
		log:     log,
		Table:   table,
		Ports:   ports,
		Monitor: libsysmon.New(),
		metrics: newAdminMetrics(),
	}

	d.dispatcher = &Dispatcher{Table: table, Ports: ports, Log: log}

	sockCfg := sckcfg.Server{
		Network:        libptc.NetworkUnix,
		Address:        cfg.SocketPath,
		PermFile:       cfg.SocketPerm,
		GroupPerm:      cfg.SocketGroup,
		ConIdleTimeout: libdur.Duration(cfg.IdleTimeout),
	}

	srv, err := libunix.New(nil, d.dispatcher.Handle, sockCfg)
	if err != nil {
		return nil, ErrorSocketConfig.Error(err)
	}
	d.socket = srv

	d.supervisor = libproc.NewSupervisor(table, log)
	d.persister = libptr.NewPersister(ports, cfg.PortsFile, log)

	maxLogBytes := cfg.MaxLogBytes
	if maxLogBytes == 0 {
		maxLogBytes = libproc.DefaultMaxLogBytes
	}
	d.rotator = libproc.NewRotator(table, maxLogBytes, log)

	return d, nil
}

// Start checks the daemon is running as root, binds the request socket, and
// starts every background task. The admin HTTP listener is started
// additionally when cfg.AdminEnabled is set. Start returns once the request
// socket is accepting connections; Listen itself runs in the background.
func (d *Daemon) Start(ctx context.Context) error {
	if os.Geteuid() != 0 {
		return ErrorNotRoot.Error(nil)
	}

	if _, _, err := libfds.SystemFileDescriptor(minOpenFiles); err != nil && d.log != nil {
		d.log().CheckError(loglvl.WarnLevel, loglvl.NilLevel, "server: could not raise open file limit", err)
	}

	go func() {
		err := d.socket.Listen(ctx)
		if d.log != nil {
			if e := libsck.ErrorFilter(err); e != nil {
				d.log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "server: request socket stopped", e)
			}
		}
	}()

	if err := d.supervisor.Start(ctx); err != nil {
		return err
	}
	if err := d.persister.Start(ctx); err != nil {
		return err
	}
	if err := d.rotator.Start(ctx); err != nil {
		return err
	}

	if d.cfg.AdminEnabled {
		d.admin = &http.Server{
			Addr:    d.cfg.AdminListen,
			Handler: d.adminHandler(),
		}

		go func() {
			err := d.admin.ListenAndServe()
			if err != nil && err != http.ErrServerClosed && d.log != nil {
				d.log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "server: admin listener stopped", err)
			}
		}()
	}

	return nil
}

// Shutdown stops accepting new requests, drains in-flight connections, and
// halts every background task. Running supervised children are left
// running: shutdown never kills them, per the daemon's orphan-on-restart
// design. No extra port-registry flush is performed here: up to one
// persister tick's worth of mutations may be lost, same as any other
// in-memory state the persister periodically snapshots.
func (d *Daemon) Shutdown(ctx context.Context) error {
	_ = d.supervisor.Stop(ctx)
	_ = d.persister.Stop(ctx)
	_ = d.rotator.Stop(ctx)

	if d.admin != nil {
		_ = d.admin.Shutdown(ctx)
	}

	return d.socket.Shutdown(ctx)
}
