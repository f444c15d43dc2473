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

// Package ticker wraps a time.Ticker and a callback function into a
// supervised, restartable runner with uptime and error tracking.
package ticker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/luciusmagn/hiisi/errors/pool"
)

// defaultDuration is used whenever the caller-supplied duration is too small
// to be a sensible tick interval.
const defaultDuration = 30 * time.Second

// minDuration is the smallest accepted tick interval; anything below it
// falls back to defaultDuration.
const minDuration = time.Millisecond

// FuncTick is invoked on every tick. tck is the underlying time.Ticker, made
// available so the function may Reset it; ctx is canceled when the runner is
// stopped or its parent context ends.
type FuncTick func(ctx context.Context, tck *time.Ticker) error

// Ticker runs a FuncTick on a fixed interval until stopped.
type Ticker interface {
	// Start begins ticking in the background. If already running, it is
	// stopped and restarted. Start never blocks on the tick function itself.
	Start(ctx context.Context) error

	// Stop halts ticking and waits for the current tick, if any, to finish.
	Stop(ctx context.Context) error

	// Restart stops then starts the ticker.
	Restart(ctx context.Context) error

	// IsRunning reports whether the ticker is currently active.
	IsRunning() bool

	// Uptime returns how long the ticker has been running, or zero if it is
	// not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recently recorded error, or nil.
	ErrorsLast() error

	// ErrorsList returns every error recorded since the last Start/Restart.
	ErrorsList() []error
}

type tck struct {
	mu sync.Mutex

	dur time.Duration
	fct FuncTick

	cancel context.CancelFunc
	done   chan struct{}
	since  time.Time

	running atomic.Bool
	errs    liberr.Pool
}

// New creates a Ticker that runs fct every d. A d smaller than one
// millisecond is replaced with a default interval of 30 seconds.
func New(d time.Duration, fct FuncTick) Ticker {
	if d < minDuration {
		d = defaultDuration
	}

	return &tck{
		dur:  d,
		fct:  fct,
		errs: liberr.New(),
	}
}

func (t *tck) clearSince(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done == done {
		t.since = time.Time{}
	}
}

// ErrorsLast implements Ticker.
func (t *tck) ErrorsLast() error {
	return t.errs.Last()
}

// ErrorsList implements Ticker.
func (t *tck) ErrorsList() []error {
	return t.errs.Slice()
}

// IsRunning implements Ticker.
func (t *tck) IsRunning() bool {
	return t.running.Load()
}

// Uptime implements Ticker.
func (t *tck) Uptime() time.Duration {
	t.mu.Lock()
	since := t.since
	t.mu.Unlock()

	if since.IsZero() {
		return 0
	}

	return time.Since(since)
}

// Start implements Ticker.
func (t *tck) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("runner/ticker: nil context")
	}

	_ = t.stop(ctx)

	t.mu.Lock()
	t.errs.Clear()
	cctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.since = time.Now()
	done := make(chan struct{})
	t.done = done
	dur := t.dur
	fct := t.fct
	t.mu.Unlock()

	t.running.Store(true)

	go t.run(cctx, done, dur, fct)

	return nil
}

func (t *tck) run(ctx context.Context, done chan struct{}, dur time.Duration, fct FuncTick) {
	defer close(done)
	defer t.running.Store(false)
	defer t.clearSince(done)

	tm := time.NewTicker(dur)
	defer tm.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tm.C:
			t.runTick(ctx, tm, fct)
		}
	}
}

func (t *tck) runTick(ctx context.Context, tm *time.Ticker, fct FuncTick) {
	defer func() {
		if r := recover(); r != nil {
			t.errs.Add(fmt.Errorf("runner/ticker: panic in tick function: %v", r))
		}
	}()

	if fct == nil {
		return
	}

	if err := fct(ctx, tm); err != nil {
		t.errs.Add(err)
	}
}

// Stop implements Ticker.
func (t *tck) Stop(ctx context.Context) error {
	return t.stop(ctx)
}

func (t *tck) stop(ctx context.Context) error {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

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

	t.mu.Lock()
	t.since = time.Time{}
	t.mu.Unlock()

	return nil
}

// Restart implements Ticker.
func (t *tck) Restart(ctx context.Context) error {
	_ = t.stop(ctx)
	return t.Start(ctx)
}
