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

package process

import (
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// SpawnRequest carries everything needed to spawn a new supervised child.
type SpawnRequest struct {
	Id      uint32
	User    string
	Cmd     string
	Cwd     string
	Env     map[string]string
	Restart bool
}

// Spawn resolves the log paths for the request, starts the child with stdout
// and stderr redirected to them, drops privileges to the requested user's
// uid/gid, and returns the resulting Row. No shell is invoked: Cmd is
// tokenized on whitespace, the first token is the program.
func Spawn(req SpawnRequest) (*Row, error) {
	fields := strings.Fields(req.Cmd)
	if len(fields) == 0 {
		return nil, ErrorEmptyCommand.Error(nil)
	}

	u, err := user.Lookup(req.User)
	if err != nil {
		return nil, ErrorUnknownUser.Error(err)
	}

	uid, gid, err := parseIds(u)
	if err != nil {
		return nil, ErrorUnknownUser.Error(err)
	}

	stdoutPath, stderrPath := logPaths(req.User, req.Cwd, req.Cmd)
	if err = os.MkdirAll(filepath.Dir(stdoutPath), 0o755); err != nil {
		return nil, ErrorLogDir.Error(err)
	}

	stdout, err := os.OpenFile(stdoutPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, ErrorLogFile.Error(err)
	}

	stderr, err := os.OpenFile(stderrPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		_ = stdout.Close()
		return nil, ErrorLogFile.Error(err)
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Dir = req.Cwd
	cmd.Env = envSlice(req.Env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: uid, Gid: gid},
	}

	if err = cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, ErrorSpawn.Error(err)
	}

	row := &Row{
		Id:         req.Id,
		User:       req.User,
		Cmd:        req.Cmd,
		Cwd:        req.Cwd,
		Env:        req.Env,
		StartedAt:  time.Now(),
		Restart:    req.Restart,
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
		cmd:        cmd,
		waitCh:     make(chan struct{}),
	}

	go row.reap(stdout, stderr)

	return row, nil
}

// reap waits for the child to exit, records its outcome, and closes the log
// files once the child can no longer write to them.
func (r *Row) reap(stdout, stderr *os.File) {
	err := r.cmd.Wait()
	r.exitErr = err
	if r.cmd.ProcessState != nil {
		r.exitCode = r.cmd.ProcessState.ExitCode()
	}
	close(r.waitCh)

	_ = stdout.Close()
	_ = stderr.Close()
}

func parseIds(u *user.User) (uint32, uint32, error) {
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, 0, err
	}

	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return 0, 0, err
	}

	return uint32(uid), uint32(gid), nil
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

