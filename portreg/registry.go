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
	"math/rand"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"

	libwire "github.com/luciusmagn/hiisi/wire"
)

// MinPort and MaxPort bound the allocatable port range.
const (
	MinPort = 1024
	MaxPort = 65535

	bitsetLen = MaxPort - MinPort + 1

	maxRandomAttempts = 100
)

// Allocation is one row of the port registry.
type Allocation struct {
	Port        uint16
	User        string
	AllocatedAt time.Time
}

// Registry is the daemon's port registry: a mutex-protected map from port to
// Allocation, indexed by a bitset for O(1) "is this port taken" checks
// during random allocation. The map is the source of truth; the bitset is a
// derived index rebuilt from it on load.
type Registry struct {
	mu   sync.Mutex
	rows map[uint16]Allocation
	bits *bitset.BitSet

	lastSave time.Time
	dirty    bool
}

// New creates an empty port registry.
func New() *Registry {
	return &Registry{
		rows: map[uint16]Allocation{},
		bits: bitset.New(bitsetLen),
	}
}

func bitIndex(port uint16) uint {
	return uint(port - MinPort)
}

// Allocate records port for user, or a random free port if port is nil.
// Returns the allocated port and true on success; false (and an unspecified
// port value) if the request cannot be satisfied: the given port is out of
// range or taken, or random search exhausts maxRandomAttempts tries.
func (r *Registry) Allocate(user string, port *uint16) (uint16, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if port != nil {
		if *port < MinPort || r.bits.Test(bitIndex(*port)) {
			return 0, false
		}
		r.record(*port, user)
		return *port, true
	}

	for i := 0; i < maxRandomAttempts; i++ {
		candidate := uint16(MinPort + rand.Intn(bitsetLen))
		if !r.bits.Test(bitIndex(candidate)) {
			r.record(candidate, user)
			return candidate, true
		}
	}

	return 0, false
}

func (r *Registry) record(port uint16, user string) {
	r.rows[port] = Allocation{Port: port, User: user, AllocatedAt: time.Now()}
	r.bits.Set(bitIndex(port))
	r.dirty = true
}

// Free removes port's allocation, if present, with no ownership check.
// Reports whether a row was removed.
func (r *Registry) Free(port uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[port]; !ok {
		return false
	}

	delete(r.rows, port)
	r.bits.Clear(bitIndex(port))
	r.dirty = true

	return true
}

// Lookup returns every allocation, optionally filtered by user, rendered as
// wire PortInfo rows. Active is always false.
func (r *Registry) Lookup(user *string) []libwire.PortInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]libwire.PortInfo, 0, len(r.rows))
	for _, row := range r.rows {
		if user != nil && row.User != *user {
			continue
		}

		out = append(out, libwire.PortInfo{
			Port:        row.Port,
			User:        row.User,
			Active:      false,
			AllocatedAt: row.AllocatedAt,
		})
	}

	return out
}
