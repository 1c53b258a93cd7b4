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
	"fmt"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/link"
)

// Port is the non-generic surface every InputPort[T]/OutputPort[T]
// satisfies, letting the runtime's compiler manage ports of unknown
// element type during wiring/unwiring without itself being generic.
// This is the Go answer to the element type being erased behind a
// trait object in the original implementation.
type Port interface {
	// ConnectionCount returns the number of real (non-plug) connections.
	ConnectionCount() int
	// IsConnected reports whether any real connection is present.
	IsConnected() bool
}

// Connector is the erased wiring surface the compiler drives. Both
// InputPort[T] and OutputPort[T] implement it.
type Connector interface {
	Port
	// NewConnection constructs a fresh connection of this port's
	// element type and capacity, returned as interface{} so the
	// compiler can hand the exact same value to both endpoints of a
	// link without knowing T.
	NewConnection(capacity int) interface{}
	// AddConnectionAny installs conn (which must be a
	// link.Connection[T] for this port's T) under id. Returns a
	// *graph.Error of kind ErrTypeMismatch if conn is not of the
	// expected type.
	AddConnectionAny(id graph.LinkUniqueId, conn interface{}) error
	// RemoveConnectionAny detaches the connection registered under id.
	RemoveConnectionAny(id graph.LinkUniqueId)
}

var (
	_ Connector = (*InputPort[int])(nil)
	_ Connector = (*OutputPort[int])(nil)
)

// NewConnection implements Connector.
func (p *InputPort[T]) NewConnection(capacity int) interface{} {
	return link.NewRing[T](capacity)
}

// AddConnectionAny implements Connector.
func (p *InputPort[T]) AddConnectionAny(id graph.LinkUniqueId, conn interface{}) error {
	c, ok := conn.(link.Connection[T])
	if !ok {
		return fmt.Errorf("port %q: connection type mismatch", p.Name)
	}
	p.AddConnection(id, c)
	return nil
}

// RemoveConnectionAny implements Connector.
func (p *InputPort[T]) RemoveConnectionAny(id graph.LinkUniqueId) { p.RemoveConnection(id) }

// NewConnection implements Connector.
func (p *OutputPort[T]) NewConnection(capacity int) interface{} {
	return link.NewRing[T](capacity)
}

// AddConnectionAny implements Connector.
func (p *OutputPort[T]) AddConnectionAny(id graph.LinkUniqueId, conn interface{}) error {
	c, ok := conn.(link.Connection[T])
	if !ok {
		return fmt.Errorf("port %q: connection type mismatch", p.Name)
	}
	p.AddConnection(id, c)
	return nil
}

// RemoveConnectionAny implements Connector.
func (p *OutputPort[T]) RemoveConnectionAny(id graph.LinkUniqueId) { p.RemoveConnection(id) }

// PortHost is implemented by concrete processors that expose their
// declared ports for wiring. A processor with no ports (a pure control
// sink, say) need not implement it; the compiler treats a missing
// PortHost as "no ports to wire" rather than an error.
type PortHost interface {
	InputPort(name string) (Connector, bool)
	OutputPort(name string) (Connector, bool)
}

// DirectionSentinel tells the compiler's endpoint lookup which of a
// PortHost's two methods to call; it is not graph.PortDirection
// because it selects a method, not a port's own declared direction.
type DirectionSentinel int

// The two lookup directions.
const (
	DirectionSentinelOutput DirectionSentinel = iota
	DirectionSentinelInput
)
