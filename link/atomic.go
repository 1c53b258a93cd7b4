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

package link

import "sync/atomic"

// atomicInt is a thin wrapper so Ring's cached size counter reads
// lock-free regardless of Go version nuances around atomic.Int64.
type atomicInt struct {
	v atomic.Int64
}

func (a *atomicInt) Store(n int64) { a.v.Store(n) }
func (a *atomicInt) Load() int64   { return a.v.Load() }
