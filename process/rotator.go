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
	"context"
	"time"

	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libticker "github.com/luciusmagn/hiisi/runner/ticker"
)

// rotationInterval is the fixed tick of the log-rotation sweep.
const rotationInterval = 5 * time.Minute

// NewRotator builds a Ticker that, every five minutes, checks every row's
// stdout and stderr log files against maxBytes and rotates those at or
// above it. A maxBytes of zero or less disables rotation entirely.
func NewRotator(table *Table, maxBytes int64, log liblog.FuncLog) libticker.Ticker {
	return libticker.New(rotationInterval, func(_ context.Context, _ *time.Ticker) error {
		rotateSweep(table, maxBytes, log)
		return nil
	})
}

func rotateSweep(table *Table, maxBytes int64, log liblog.FuncLog) {
	if maxBytes <= 0 {
		return
	}

	var paths []string
	table.WithLock(func(rows map[uint32]*Row) {
		for _, row := range rows {
			paths = append(paths, row.StdoutPath, row.StderrPath)
		}
	})

	for _, path := range paths {
		err := RotateIfNeeded(path, maxBytes)
		if log != nil {
			log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "process: log rotation", err)
		}
	}
}
