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

import "sync"

// Graph is the mutable property graph of processor vertices and link
// edges. It is guarded by a single writer / many readers lock (mgmt's
// Engine guards its topology the same way; see engine/graph/engine.go
// in the retrieval pack): the compiler takes the write lock only for
// the short periods needed to mutate topology, never across a whole
// setup/teardown call.
type Graph struct {
	Name string

	mu         sync.RWMutex
	processors map[ProcessorUniqueId]*Processor
	links      map[LinkUniqueId]*Link
}

// NewGraph constructs an empty, named graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:       name,
		processors: make(map[ProcessorUniqueId]*Processor),
		links:      make(map[LinkUniqueId]*Link),
	}
}

// AddProcessor adds a new processor vertex with the given id, registry
// kind name, config blob and static port descriptors. Returns a cursor
// (the *Processor itself) on which component attachment may be
// chained. Fails with ErrGraph on a duplicate id (I-equivalent to
// mgmt's "duplicate IDs ⇒ GraphError").
func (g *Graph) AddProcessor(id ProcessorUniqueId, kind string, config interface{}, ports []PortDescriptor) (*Processor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.processors[id]; exists {
		return nil, newError(ErrGraph, "processor %q already exists", id)
	}
	p := newProcessor(id, kind, config, ports)
	g.processors[id] = p
	return p, nil
}

// Processor looks up a vertex by id (the `v(id)` traversal primitive).
func (g *Graph) Processor(id ProcessorUniqueId) (*Processor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.processors[id]
	return p, ok
}

// Processors returns every vertex currently in the graph, including
// ones bearing PendingDeletion. Callers that care should check
// IsPendingDeletion themselves.
func (g *Graph) Processors() []*Processor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Processor, 0, len(g.processors))
	for _, p := range g.processors {
		out = append(out, p)
	}
	return out
}

// DeleteProcessor removes a vertex from the topology outright. Called
// only by the compiler's Remove phase, after the worker has been
// joined and its components released.
func (g *Graph) DeleteProcessor(id ProcessorUniqueId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.processors, id)
}

// AddLink adds a new edge in the Pending state. Validates invariants
// I1 (destination port uniqueness across wired-or-pending edges), I4
// (both endpoints exist), and I6 (port element types agree at both
// ends, when the declaring processors have static descriptors for
// them).
func (g *Graph) AddLink(id LinkUniqueId, from, to PortAddress, elemType PortType, capacity int) (*Link, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.links[id]; exists {
		return nil, newError(ErrLink, "link %q already exists", id)
	}

	srcProc, ok := g.processors[from.ProcessorID]
	if !ok {
		return nil, newError(ErrGraph, "source processor %q does not exist", from.ProcessorID)
	}
	dstProc, ok := g.processors[to.ProcessorID]
	if !ok {
		return nil, newError(ErrGraph, "destination processor %q does not exist", to.ProcessorID)
	}

	if srcDesc, ok := srcProc.PortDescriptorByName(from.PortName); ok {
		if srcDesc.Direction != DirectionOutput {
			return nil, newError(ErrLink, "port %s is not an output port", from)
		}
		if srcDesc.Type != elemType {
			return nil, newError(ErrTypeMismatch, "source port %s has type %s, link declares %s", from, srcDesc.Type, elemType)
		}
	}
	if dstDesc, ok := dstProc.PortDescriptorByName(to.PortName); ok {
		if dstDesc.Direction != DirectionInput {
			return nil, newError(ErrLink, "port %s is not an input port", to)
		}
		if dstDesc.Type != elemType {
			return nil, newError(ErrTypeMismatch, "destination port %s has type %s, link declares %s", to, dstDesc.Type, elemType)
		}
	}

	for _, existing := range g.links {
		if existing.IsPendingDeletion() {
			continue
		}
		if existing.To == to {
			return nil, newError(ErrLink, "destination port %s already has a link (%s)", to, existing.ID)
		}
	}

	l := newLink(id, from, to, elemType, capacity)
	g.links[id] = l
	return l, nil
}

// Link looks up an edge by id (the `e(id)` traversal primitive).
func (g *Graph) Link(id LinkUniqueId) (*Link, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	l, ok := g.links[id]
	return l, ok
}

// Links returns every edge currently in the graph.
func (g *Graph) Links() []*Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Link, 0, len(g.links))
	for _, l := range g.links {
		out = append(out, l)
	}
	return out
}

// DeleteLink removes an edge from the topology outright. Called only
// by the compiler's Unwire phase.
func (g *Graph) DeleteLink(id LinkUniqueId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.links, id)
}

// LinksFor returns every edge touching the given processor, as source
// or destination, including edges already bearing PendingDeletion.
// Used by the runtime's RemoveProcessor to cascade deletion and by the
// compiler's config-update restart to find links to unwire.
func (g *Graph) LinksFor(id ProcessorUniqueId) []*Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Link
	for _, l := range g.links {
		if l.From.ProcessorID == id || l.To.ProcessorID == id {
			out = append(out, l)
		}
	}
	return out
}
