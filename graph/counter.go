// Mgmt
// Copyright (C) 2013-2022+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package graph

import "sync/atomic"

// atomicCounter is a lock-free int64 counter, used by Metrics. It is
// deliberately narrower than the stdlib atomic.Int64 surface since
// Metrics only ever adds, stores and reads.
type atomicCounter struct {
	v atomic.Int64
}

func newAtomicCounter() *atomicCounter { return &atomicCounter{} }

// Add adds delta and returns the new value.
func (c *atomicCounter) Add(delta int64) int64 { return c.v.Add(delta) }

// Store sets the value, discarding whatever was there before.
func (c *atomicCounter) Store(val int64) { c.v.Store(val) }

// Load reads the current value.
func (c *atomicCounter) Load() int64 { return c.v.Load() }
