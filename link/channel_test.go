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

import "testing"

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	if r.capacity != 1 {
		t.Errorf("NewRing(0).capacity == %d, expected 1", r.capacity)
	}
}

func TestRingWriteReadLatest(t *testing.T) {
	r := NewRing[int](4)
	if _, ok := r.ReadLatest(); ok {
		t.Errorf("expected no data on an empty ring")
	}

	r.Write(1)
	r.Write(2)
	r.Write(3)

	v, ok := r.ReadLatest()
	if !ok || v != 3 {
		t.Errorf("ReadLatest() == (%d, %v), expected (3, true)", v, ok)
	}

	if _, ok := r.ReadLatest(); ok {
		t.Errorf("expected ReadLatest to drain everything in one call")
	}
}

func TestRingRollOff(t *testing.T) {
	r := NewRing[int](2)
	r.Write(1)
	r.Write(2)
	r.Write(3) // rolls off 1

	if n := r.Len(); n != 2 {
		t.Errorf("Len() == %d, expected 2 after roll-off", n)
	}

	v, ok := r.ReadLatest()
	if !ok || v != 3 {
		t.Errorf("ReadLatest() == (%d, %v), expected (3, true)", v, ok)
	}
}

func TestRingHasData(t *testing.T) {
	r := NewRing[int](2)
	if r.HasData() {
		t.Errorf("expected HasData to be false on an empty ring")
	}
	r.Write(1)
	if !r.HasData() {
		t.Errorf("expected HasData to be true after a write")
	}
	r.ReadLatest()
	if r.HasData() {
		t.Errorf("expected HasData to be false after draining")
	}
}

func TestRingWakeupNonBlocking(t *testing.T) {
	r := NewRing[int](4)
	r.Write(1)
	r.Write(2) // second write must not block even though the first wakeup is unconsumed

	select {
	case <-r.Wakeup():
	default:
		t.Errorf("expected a pending wake-up after at least one write")
	}
}

func TestRingIsPlug(t *testing.T) {
	r := NewRing[int](1)
	if r.IsPlug() {
		t.Errorf("a Ring must never report IsPlug() == true")
	}
}

func TestPlugIsNullObject(t *testing.T) {
	p := NewPlug[int]()
	if !p.IsPlug() {
		t.Errorf("expected IsPlug() == true")
	}
	if p.HasData() {
		t.Errorf("expected HasData() == false")
	}
	p.Write(42) // must be silently dropped
	if v, ok := p.ReadLatest(); ok || v != 0 {
		t.Errorf("ReadLatest() == (%d, %v), expected (0, false)", v, ok)
	}
}
