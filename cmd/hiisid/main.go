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

// Command hiisid is the supervisor daemon: it binds the request socket, runs
// the supervision and port-persistence loops, and optionally exposes an
// admin HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	libprm "github.com/luciusmagn/hiisi/file/perm"
	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libsrv "github.com/luciusmagn/hiisi/server"
	libvpr "github.com/luciusmagn/hiisi/viper"
)

const envPrefix = "HIISI"

var (
	flagConfig     string
	flagSocket     string
	flagForeground bool
	flagLogLevel   string
	flagAdmin      bool
	flagAdminAddr  string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hiisid",
		Short: "hiisid supervises per-user processes and ports over a local socket",
		RunE:  runDaemon,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "path to the daemon config file")
	cmd.Flags().StringVar(&flagSocket, "socket", "", "override the request socket path")
	cmd.Flags().BoolVar(&flagForeground, "foreground", false, "log to stderr instead of the configured log files")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "minimum log level: debug, info, warning, error")
	cmd.Flags().BoolVar(&flagAdmin, "admin", false, "enable the admin HTTP surface (/healthz, /metrics)")
	cmd.Flags().StringVar(&flagAdminAddr, "admin-listen", "", "override the admin HTTP listen address")

	return cmd
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := liblog.New(ctx)
	log.SetLevel(loglvl.Parse(flagLogLevel))
	if flagForeground {
		log.SetIOWriterLevel(loglvl.Parse(flagLogLevel))
	}
	log.SetSPF13Level(loglvl.WarnLevel, nil)

	funcLog := func() liblog.Logger { return log }

	vpr := libvpr.New(ctx, funcLog)
	vpr.SetEnvVarsPrefix(envPrefix)
	vpr.SetHomeBaseName("hiisi")

	if err := vpr.SetConfigFile(flagConfig); err != nil {
		return fmt.Errorf("hiisid: invalid config file: %w", err)
	}

	if err := vpr.Config(loglvl.WarnLevel, loglvl.InfoLevel); err != nil {
		log.CheckError(loglvl.WarnLevel, loglvl.NilLevel, "hiisid: falling back to default configuration", err)
	}

	cfg := libsrv.DefaultConfig()

	if s := vpr.GetString("socket.path"); s != "" {
		cfg.SocketPath = s
	}
	if flagSocket != "" {
		cfg.SocketPath = flagSocket
	}

	if perm := vpr.GetUint32("socket.perm"); perm != 0 {
		cfg.SocketPerm = libprm.Perm(perm)
	}
	if gid := vpr.GetInt32("socket.group"); gid != 0 {
		cfg.SocketGroup = gid
	}

	if p := vpr.GetString("ports.file"); p != "" {
		cfg.PortsFile = p
	}

	if d := vpr.GetDuration("socket.idle_timeout"); d != 0 {
		cfg.IdleTimeout = d
	}

	if mb := vpr.GetInt64("logs.max_bytes"); mb != 0 {
		cfg.MaxLogBytes = mb
	}

	cfg.AdminEnabled = flagAdmin || vpr.GetBool("admin.enabled")
	if a := vpr.GetString("admin.listen"); a != "" {
		cfg.AdminListen = a
	}
	if flagAdminAddr != "" {
		cfg.AdminListen = flagAdminAddr
	}

	daemon, err := libsrv.New(cfg, funcLog)
	if err != nil {
		return fmt.Errorf("hiisid: %w", err)
	}

	if err = daemon.Start(ctx); err != nil {
		return fmt.Errorf("hiisid: %w", err)
	}
	log.Info("hiisid: started, socket=%s admin=%v", nil, cfg.SocketPath, cfg.AdminEnabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("hiisid: shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err = daemon.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("hiisid: shutdown: %w", err)
	}

	return nil
}
