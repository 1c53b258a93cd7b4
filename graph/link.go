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

// LinkState is the lifecycle state of a link edge.
type LinkState int

// The lifecycle states named by the specification.
const (
	LinkPending LinkState = iota
	LinkWired
	LinkBroken
)

// String implements fmt.Stringer.
func (s LinkState) String() string {
	switch s {
	case LinkPending:
		return "Pending"
	case LinkWired:
		return "Wired"
	case LinkBroken:
		return "Broken"
	default:
		return "Unknown"
	}
}

// DefaultLinkCapacity is the default ring-buffer depth for a newly
// declared link when the caller does not specify one (spec §3: "small,
// 3-8 slots").
const DefaultLinkCapacity = 3

// Link is an edge in the graph: identity, source/destination port
// addresses, element type tag, ring capacity, and lifecycle state.
type Link struct {
	ID       LinkUniqueId
	From     PortAddress // source (output port)
	To       PortAddress // destination (input port)
	Type     PortType
	Capacity int

	mu    sync.RWMutex
	state LinkState

	components *componentStore
}

// newLink constructs a Link edge in the Pending state.
func newLink(id LinkUniqueId, from, to PortAddress, elemType PortType, capacity int) *Link {
	if capacity <= 0 {
		capacity = DefaultLinkCapacity
	}
	return &Link{
		ID:         id,
		From:       from,
		To:         to,
		Type:       elemType,
		Capacity:   capacity,
		state:      LinkPending,
		components: newComponentStore(),
	}
}

// State returns the link's current lifecycle state.
func (l *Link) State() LinkState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// SetState transitions the link's lifecycle state. Called only by the
// compiler's Wire/Unwire phases.
func (l *Link) SetState(s LinkState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
}

// IsPendingDeletion reports whether this edge bears PendingDeletion.
func (l *Link) IsPendingDeletion() bool {
	return hasComponent[PendingDeletion](l.components)
}

// MarkPendingDeletion attaches the PendingDeletion marker.
func (l *Link) MarkPendingDeletion() {
	attachComponent(l.components, PendingDeletion{})
}

// AttachLinkComponent attaches component c to this edge.
func AttachLinkComponent[T any](l *Link, c T) { attachComponent(l.components, c) }

// LinkComponentOf fetches the component of type T attached to this edge.
func LinkComponentOf[T any](l *Link) (T, bool) { return componentOf[T](l.components) }

// DetachLinkComponent removes the component of type T from this edge.
func DetachLinkComponent[T any](l *Link) { detachComponent[T](l.components) }
