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

package port

import (
	"testing"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/link"
)

func mustLinkID(t *testing.T, s string) graph.LinkUniqueId {
	t.Helper()
	id, err := graph.NewLinkUniqueId(s)
	if err != nil {
		t.Fatalf("NewLinkUniqueId(%q): %v", s, err)
	}
	return id
}

func TestInputPortStartsDisconnected(t *testing.T) {
	p := NewInputPort[int]("in")
	if p.IsConnected() {
		t.Errorf("a fresh InputPort must not be connected")
	}
	if p.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() == %d, expected 0", p.ConnectionCount())
	}
	if p.HasData() {
		t.Errorf("a disconnected port's plug must never have data")
	}
	if _, ok := p.Read(); ok {
		t.Errorf("expected no data from a disconnected port")
	}
}

func TestInputPortAddRemoveConnection(t *testing.T) {
	p := NewInputPort[int]("in")
	id := mustLinkID(t, "a.out>b.in")
	ring := link.NewRing[int](4)

	p.AddConnection(id, ring)
	if !p.IsConnected() || p.ConnectionCount() != 1 {
		t.Errorf("expected exactly one real connection after AddConnection")
	}

	ring.Write(7)
	if v, ok := p.ReadLatest(); !ok || v != 7 {
		t.Errorf("ReadLatest() == (%d, %v), expected (7, true)", v, ok)
	}

	p.RemoveConnection(id)
	if p.IsConnected() {
		t.Errorf("expected disconnected after removing the only real connection")
	}
	if p.HasData() {
		t.Errorf("expected no data once reverted to a plug")
	}
}

func TestOutputPortFanOut(t *testing.T) {
	p := NewOutputPort[int]("out", nil)
	id1 := mustLinkID(t, "a.out>b.in")
	id2 := mustLinkID(t, "a.out>c.in")
	r1 := link.NewRing[int](4)
	r2 := link.NewRing[int](4)

	p.AddConnection(id1, r1)
	p.AddConnection(id2, r2)
	if n := p.ConnectionCount(); n != 2 {
		t.Errorf("ConnectionCount() == %d, expected 2", n)
	}

	p.Write(5)
	if v, ok := r1.ReadLatest(); !ok || v != 5 {
		t.Errorf("destination 1 got (%d, %v), expected (5, true)", v, ok)
	}
	if v, ok := r2.ReadLatest(); !ok || v != 5 {
		t.Errorf("destination 2 got (%d, %v), expected (5, true)", v, ok)
	}

	p.RemoveConnection(id1)
	if n := p.ConnectionCount(); n != 1 {
		t.Errorf("ConnectionCount() == %d, expected 1 after removing one destination", n)
	}
}

func TestOutputPortCloneFunc(t *testing.T) {
	type frame struct{ n int }
	calls := 0
	clone := func(f *frame) *frame {
		calls++
		cp := *f
		return &cp
	}

	p := NewOutputPort[*frame]("out", clone)
	id := mustLinkID(t, "a.out>b.in")
	r := link.NewRing[*frame](2)
	p.AddConnection(id, r)

	original := &frame{n: 1}
	p.Write(original)

	if calls != 1 {
		t.Errorf("clone func called %d times, expected 1", calls)
	}
	got, ok := r.ReadLatest()
	if !ok {
		t.Fatalf("expected a value to have been written")
	}
	if got == original {
		t.Errorf("expected the destination to receive a clone, not the original pointer")
	}
	if got.n != original.n {
		t.Errorf("clone diverged from original: got %+v, want %+v", got, original)
	}
}

func TestAddConnectionAnyTypeMismatch(t *testing.T) {
	p := NewInputPort[int]("in")
	id := mustLinkID(t, "a.out>b.in")
	if err := p.AddConnectionAny(id, "not a connection"); err == nil {
		t.Errorf("expected a type mismatch error")
	}
}

func TestNewConnectionProducesUsableRing(t *testing.T) {
	out := NewOutputPort[int]("out", nil)
	id := mustLinkID(t, "a.out>b.in")
	conn := out.NewConnection(4)

	if err := out.AddConnectionAny(id, conn); err != nil {
		t.Fatalf("AddConnectionAny: %v", err)
	}
	if out.ConnectionCount() != 1 {
		t.Errorf("expected one connection after wiring via the erased Connector surface")
	}
	out.RemoveConnectionAny(id)
	if out.ConnectionCount() != 0 {
		t.Errorf("expected zero connections after RemoveConnectionAny")
	}
}
