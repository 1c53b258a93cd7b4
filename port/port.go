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

// Package port implements the typed input/output port surface that
// processors declare their connections through. Ports are not
// thread-safe across processors; each belongs to exactly one processor
// and is only ever touched from that processor's worker goroutine,
// except for the compiler's wiring/unwiring calls during commit, which
// may arrive while that processor's worker is running; each port
// guards its connection list with its own mutex for that reason.
package port

import (
	"sync"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/link"
)

// connEntry pairs a connection with the link id that produced it, so
// RemoveConnection can find the right one.
type connEntry[T any] struct {
	id   graph.LinkUniqueId
	conn link.Connection[T]
}

// InputPort is a named, typed input port. It always holds at least one
// connection (a Plug if nothing real is wired); read operations
// consult every connection in turn.
type InputPort[T any] struct {
	Name string

	mu    sync.Mutex
	conns []connEntry[T]
}

// NewInputPort constructs a disconnected input port (a single Plug).
func NewInputPort[T any](name string) *InputPort[T] {
	return &InputPort[T]{
		Name:  name,
		conns: []connEntry[T]{{conn: link.NewPlug[T]()}},
	}
}

// AddConnection installs a real connection for the given link id. Used
// only by the compiler during the Wire phase. If the port currently
// only holds its plug, the plug is replaced (an input port admits
// exactly one real link per invariant I1, enforced by the graph
// package before this is ever called).
func (p *InputPort[T]) AddConnection(id graph.LinkUniqueId, conn link.Connection[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns = onlyRealConnections(p.conns)
	p.conns = append(p.conns, connEntry[T]{id: id, conn: conn})
}

// RemoveConnection detaches the connection for the given link id. Used
// only by the compiler during the Unwire phase. When the last real
// connection is removed, a plug is reinstalled atomically with respect
// to subsequent reads (invariant L4).
func (p *InputPort[T]) RemoveConnection(id graph.LinkUniqueId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.conns[:0]
	for _, e := range p.conns {
		if e.conn.IsPlug() || e.id != id {
			kept = append(kept, e)
		}
	}
	p.conns = onlyRealConnections(kept)
}

func onlyRealConnections[T any](entries []connEntry[T]) []connEntry[T] {
	real := entries[:0:0]
	for _, e := range entries {
		if !e.conn.IsPlug() {
			real = append(real, e)
		}
	}
	if len(real) == 0 {
		return []connEntry[T]{{conn: link.NewPlug[T]()}}
	}
	return real
}

// ReadLatest consults every connection in turn and returns the
// freshest available item. No cross-connection ordering guarantee is
// made when more than one real connection is present.
func (p *InputPort[T]) ReadLatest() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var (
		best    T
		found   bool
	)
	for _, e := range p.conns {
		if v, ok := e.conn.ReadLatest(); ok {
			best, found = v, true
		}
	}
	return best, found
}

// Read is an alias for ReadLatest, named to match the specification's
// two read entry points (read() / read_latest() collapse to the same
// latest-read semantics in this implementation).
func (p *InputPort[T]) Read() (T, bool) { return p.ReadLatest() }

// HasData is true iff any connection currently has data (invariant
// P5: a disconnected port's plug never has data).
func (p *InputPort[T]) HasData() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.conns {
		if e.conn.HasData() {
			return true
		}
	}
	return false
}

// ConnectionCount returns the number of real (non-plug) connections.
func (p *InputPort[T]) ConnectionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.conns {
		if !e.conn.IsPlug() {
			n++
		}
	}
	return n
}

// IsConnected reports the port's observable connected state (invariant
// L1): true iff at least one real connection is present.
func (p *InputPort[T]) IsConnected() bool { return p.ConnectionCount() > 0 }

// OutputPort is a named, typed output port. It may own several real
// connections (fan-out) plus the plug; Write broadcasts to all real
// destinations.
type OutputPort[T any] struct {
	Name string

	mu    sync.Mutex
	conns []connEntry[T]
	clone func(T) T // optional; nil means share the value as-is
}

// NewOutputPort constructs a disconnected output port (a single Plug).
// cloneFn may be nil for value types that are already safe to share
// (Go lacks Rust's Clone trait; callers whose element type carries
// shared mutable state, e.g. a pointer-backed frame buffer, should
// supply one so each fan-out destination gets an independent copy).
func NewOutputPort[T any](name string, cloneFn func(T) T) *OutputPort[T] {
	return &OutputPort[T]{
		Name:  name,
		conns: []connEntry[T]{{conn: link.NewPlug[T]()}},
		clone: cloneFn,
	}
}

// AddConnection installs a real connection alongside any existing
// ones. Used only by the compiler during the Wire phase.
func (p *OutputPort[T]) AddConnection(id graph.LinkUniqueId, conn link.Connection[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns = onlyRealConnections(p.conns)
	p.conns = append(p.conns, connEntry[T]{id: id, conn: conn})
}

// RemoveConnection detaches the connection for the given link id. When
// the last real connection is removed, a plug is reinstalled.
func (p *OutputPort[T]) RemoveConnection(id graph.LinkUniqueId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.conns[:0]
	for _, e := range p.conns {
		if e.conn.IsPlug() || e.id != id {
			kept = append(kept, e)
		}
	}
	p.conns = onlyRealConnections(kept)
}

// Write broadcasts value across every real connection, cloning once
// per destination when a clone function was supplied. Never blocks,
// never fails (invariant L2, P9); on plugs the value is simply
// dropped.
func (p *OutputPort[T]) Write(value T) {
	p.mu.Lock()
	conns := append([]connEntry[T](nil), p.conns...)
	p.mu.Unlock()

	for _, e := range conns {
		v := value
		if p.clone != nil && !e.conn.IsPlug() {
			v = p.clone(value)
		}
		e.conn.Write(v)
	}
}

// ConnectionCount returns the number of real (non-plug) connections.
func (p *OutputPort[T]) ConnectionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.conns {
		if !e.conn.IsPlug() {
			n++
		}
	}
	return n
}

// IsConnected reports the port's observable connected state.
func (p *OutputPort[T]) IsConnected() bool { return p.ConnectionCount() > 0 }
