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
	"sync/atomic"
	"time"

	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libticker "github.com/luciusmagn/hiisi/runner/ticker"
)

// supervisionInterval is the fixed tick of the restart loop.
const supervisionInterval = 1 * time.Second

var restartsTotal uint64
var spawnErrorsTotal uint64

// RestartsTotal reports how many rows the supervision loop has successfully
// respawned since process start, for the admin metrics surface.
func RestartsTotal() uint64 { return atomic.LoadUint64(&restartsTotal) }

// SpawnErrorsTotal reports how many restart attempts have failed to spawn
// since process start, for the admin metrics surface.
func SpawnErrorsTotal() uint64 { return atomic.LoadUint64(&spawnErrorsTotal) }

// NewSupervisor builds a Ticker that, once per second, sweeps table for rows
// with Restart set whose child has exited, and re-spawns them in place,
// preserving their id. The whole sweep-and-respawn pass runs under the
// table's lock, so request handlers never observe a partially restarted
// table.
func NewSupervisor(table *Table, log liblog.FuncLog) libticker.Ticker {
	return libticker.New(supervisionInterval, func(ctx context.Context, _ *time.Ticker) error {
		sweep(table, log)
		return nil
	})
}

func sweep(table *Table, log liblog.FuncLog) {
	var toRespawn []SpawnRequest

	table.WithLock(func(rows map[uint32]*Row) {
		for id, row := range rows {
			if !row.Restart || !row.Exited() {
				continue
			}

			toRespawn = append(toRespawn, SpawnRequest{
				Id:      id,
				User:    row.User,
				Cmd:     row.Cmd,
				Cwd:     row.Cwd,
				Env:     row.Env,
				Restart: row.Restart,
			})
		}

		for _, req := range toRespawn {
			respawned, err := Spawn(req)
			if log != nil {
				log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "process: restart spawn", err)
			}

			if err != nil {
				atomic.AddUint64(&spawnErrorsTotal, 1)
				continue
			}

			atomic.AddUint64(&restartsTotal, 1)

			if _, ok := rows[req.Id]; ok {
				rows[req.Id] = respawned
			}
		}
	})
}
