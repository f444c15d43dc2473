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

package portreg

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"

	liblog "github.com/luciusmagn/hiisi/logger"
	loglvl "github.com/luciusmagn/hiisi/logger/level"
	libticker "github.com/luciusmagn/hiisi/runner/ticker"
)

// DefaultPath is where the registry is persisted absent a config override.
const DefaultPath = "/etc/hiisi/ports.toml"

// persistTick is the fixed interval of the background save ticker.
const persistTick = 30 * time.Second

// saveDebounce is the minimum interval between two successful writes.
const saveDebounce = 60 * time.Second

type fileAllocation struct {
	Port        uint16    `toml:"port"`
	User        string    `toml:"user"`
	AllocatedAt time.Time `toml:"allocated_at"`
}

type fileFormat struct {
	Port []fileAllocation `toml:"port"`
}

// Load reads path into a fresh Registry. A missing or empty file yields an
// empty registry, not an error.
func Load(path string) (*Registry, error) {
	reg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, ErrorPersistRead.Error(err)
	}

	if len(data) == 0 {
		return reg, nil
	}

	var doc fileFormat
	if err = toml.Unmarshal(data, &doc); err != nil {
		return nil, ErrorPersistRead.Error(err)
	}

	for _, row := range doc.Port {
		reg.rows[row.Port] = Allocation{Port: row.Port, User: row.User, AllocatedAt: row.AllocatedAt}
		reg.bits.Set(bitIndex(row.Port))
	}

	return reg, nil
}

// Save writes the registry to path atomically: it writes to a temp file in
// the same directory and renames it over path.
func (r *Registry) Save(path string) error {
	r.mu.Lock()
	doc := fileFormat{Port: make([]fileAllocation, 0, len(r.rows))}
	for _, row := range r.rows {
		doc.Port = append(doc.Port, fileAllocation{Port: row.Port, User: row.User, AllocatedAt: row.AllocatedAt})
	}
	r.mu.Unlock()

	data, err := toml.Marshal(doc)
	if err != nil {
		return ErrorPersistWrite.Error(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ports-*.toml.tmp")
	if err != nil {
		return ErrorPersistWrite.Error(err)
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return ErrorPersistWrite.Error(err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ErrorPersistWrite.Error(err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ErrorPersistWrite.Error(err)
	}

	r.mu.Lock()
	r.lastSave = time.Now()
	r.dirty = false
	r.mu.Unlock()

	return nil
}

// checkSave writes path iff the registry has unsaved changes and at least
// saveDebounce has elapsed since the last successful save. Write errors are
// swallowed: the next tick retries.
func (r *Registry) checkSave(path string, log liblog.FuncLog) {
	r.mu.Lock()
	due := r.dirty && time.Since(r.lastSave) >= saveDebounce
	r.mu.Unlock()

	if !due {
		return
	}

	err := r.Save(path)
	if log != nil {
		log().CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "portreg: persisting registry", err)
	}
}

// NewPersister builds a Ticker that calls checkSave every 30 seconds.
func NewPersister(r *Registry, path string, log liblog.FuncLog) libticker.Ticker {
	return libticker.New(persistTick, func(_ context.Context, _ *time.Ticker) error {
		r.checkSave(path, log)
		return nil
	})
}
