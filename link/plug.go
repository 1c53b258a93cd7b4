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

// Plug is the disconnected null-object connection: it silently drops
// writes and never has data. A port that has never been wired, or
// whose last real connection was just removed, holds a Plug instead
// of a nil/Option — this is what lets write() and read() skip a
// branch on every call (invariant P3, L4).
type Plug[T any] struct{}

// NewPlug constructs a disconnected placeholder connection.
func NewPlug[T any]() *Plug[T] { return &Plug[T]{} }

// Write implements Connection by doing nothing.
func (p *Plug[T]) Write(T) {}

// ReadLatest implements Connection; always empty.
func (p *Plug[T]) ReadLatest() (T, bool) {
	var zero T
	return zero, false
}

// HasData implements Connection; always false.
func (p *Plug[T]) HasData() bool { return false }

// IsPlug implements Connection; always true.
func (p *Plug[T]) IsPlug() bool { return true }

var (
	_ Connection[int] = (*Ring[int])(nil)
	_ Connection[int] = (*Plug[int])(nil)
)
