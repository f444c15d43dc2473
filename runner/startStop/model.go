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

// Package startStop wraps a pair of start/stop functions into a supervised,
// restartable, single-instance runner with uptime and error tracking.
package startStop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// FuncStart is run, once, each time the runner is started. It is expected to
// block for the lifetime of the service and return when ctx is done.
type FuncStart func(ctx context.Context) error

// FuncStop is run once to tear down a running instance.
type FuncStop func(ctx context.Context) error

// StartStop supervises a single start/stop function pair, ensuring at most
// one instance runs at a time.
type StartStop interface {
	// Start launches the start function in the background. If an instance
	// is already running, it is stopped first. Start never blocks on the
	// start function itself; failures are recorded and retrievable through
	// ErrorsLast/ErrorsList.
	Start(ctx context.Context) error

	// Stop tears down the running instance, if any, invoking the stop
	// function and waiting for the start function to return.
	Stop(ctx context.Context) error

	// Restart stops then starts the runner.
	Restart(ctx context.Context) error

	// IsRunning reports whether a start function is currently executing.
	IsRunning() bool

	// Uptime returns how long the current instance has been running, or
	// zero if it is not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recently recorded error, or nil.
	ErrorsLast() error

	// ErrorsList returns every error recorded since the last Start.
	ErrorsList() []error
}

type runner struct {
	mu sync.Mutex

	fctStart FuncStart
	fctStop  FuncStop

	cancel context.CancelFunc
	done   chan struct{}
	since  time.Time

	running atomic.Bool
	errs    []error
}

// New creates a StartStop wrapping the given start and stop functions. Either
// may be nil; invoking a nil function records an error instead of panicking.
func New(start FuncStart, stop FuncStop) StartStop {
	return &runner{
		fctStart: start,
		fctStop:  stop,
	}
}

// clearSince resets the uptime clock once a start function returns on its
// own, provided no newer instance has since been started.
func (r *runner) clearSince(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done == done {
		r.since = time.Time{}
	}
}

func (r *runner) addError(err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// ErrorsLast implements StartStop.
func (r *runner) ErrorsLast() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.errs) == 0 {
		return nil
	}

	return r.errs[len(r.errs)-1]
}

// ErrorsList implements StartStop.
func (r *runner) ErrorsList() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]error, len(r.errs))
	copy(out, r.errs)

	return out
}

// IsRunning implements StartStop.
func (r *runner) IsRunning() bool {
	return r.running.Load()
}

// Uptime implements StartStop.
func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	since := r.since
	r.mu.Unlock()

	if since.IsZero() {
		return 0
	}

	return time.Since(since)
}

// Start implements StartStop.
func (r *runner) Start(ctx context.Context) error {
	_ = r.stop(ctx)

	r.mu.Lock()
	r.errs = nil
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.since = time.Now()
	done := make(chan struct{})
	r.done = done
	fct := r.fctStart
	r.mu.Unlock()

	r.running.Store(true)

	go func() {
		defer close(done)
		defer r.running.Store(false)
		defer r.clearSince(done)
		defer func() {
			if rec := recover(); rec != nil {
				r.addError(fmt.Errorf("panic in start function: %v", rec))
			}
		}()

		if fct == nil {
			r.addError(errors.New("invalid start function"))
			return
		}

		if err := fct(cctx); err != nil {
			r.addError(err)
		}
	}()

	return nil
}

// Stop implements StartStop.
func (r *runner) Stop(ctx context.Context) error {
	return r.stop(ctx)
}

func (r *runner) stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	fct := r.fctStop
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil && done == nil {
		return nil
	}

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	r.since = time.Time{}
	r.mu.Unlock()

	r.runStop(ctx, fct)

	return nil
}

func (r *runner) runStop(ctx context.Context, fct FuncStop) {
	defer func() {
		if rec := recover(); rec != nil {
			r.addError(fmt.Errorf("panic in stop function: %v", rec))
		}
	}()

	if fct == nil {
		r.addError(errors.New("invalid stop function"))
		return
	}

	if err := fct(ctx); err != nil {
		r.addError(err)
	}
}

// Restart implements StartStop.
func (r *runner) Restart(ctx context.Context) error {
	_ = r.stop(ctx)
	return r.Start(ctx)
}
