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

// ProcessorState is the lifecycle state of a processor vertex.
type ProcessorState int

// The lifecycle states named by the specification.
const (
	StateIdle ProcessorState = iota
	StateStarting
	StateRunning
	StatePaused
	StateStopping
	StateStopped
	StateError
)

// String implements fmt.Stringer.
func (s ProcessorState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PortDirection distinguishes the two static port descriptors a
// processor declares.
type PortDirection int

// The two port directions.
const (
	DirectionInput PortDirection = iota
	DirectionOutput
)

// PortDescriptor is the static (compile-time-known) declaration of one
// of a processor's ports: its stable name, element type tag, and
// direction. The compiler uses these at wiring time to check I6 (type
// agreement) and I1 (destination uniqueness).
type PortDescriptor struct {
	Name      string
	Type      PortType
	Direction PortDirection
}

// Processor is a vertex in the graph: identity, configuration, static
// port descriptors, a lifecycle state, and a heterogeneous component
// bag. Exported so the runtime and registry packages can attach the
// components named in the specification (ProcessorInstance,
// ThreadHandle, ShutdownChannel, State, PauseGate, ReadyBarrier) onto
// it without the graph package needing to know their concrete types.
type Processor struct {
	ID     ProcessorUniqueId
	Kind   string // registry type name, e.g. "camera_source"
	Config interface{}

	ports []PortDescriptor

	mu    sync.RWMutex
	state ProcessorState

	// ConfigChecksum is the stable hash of Config at the time this
	// vertex was last (re)built by the compiler. Compared against the
	// desired graph's checksum during delta computation (spec §4.2).
	ConfigChecksum uint64

	components *componentStore
}

// newProcessor constructs a Processor vertex in the Idle state.
func newProcessor(id ProcessorUniqueId, kind string, config interface{}, ports []PortDescriptor) *Processor {
	return &Processor{
		ID:         id,
		Kind:       kind,
		Config:     config,
		ports:      append([]PortDescriptor(nil), ports...),
		state:      StateIdle,
		components: newComponentStore(),
	}
}

// Ports returns a copy of this processor's static port descriptors.
func (p *Processor) Ports() []PortDescriptor {
	return append([]PortDescriptor(nil), p.ports...)
}

// PortDescriptorByName looks up one port descriptor by name.
func (p *Processor) PortDescriptorByName(name string) (PortDescriptor, bool) {
	for _, d := range p.ports {
		if d.Name == name {
			return d, true
		}
	}
	return PortDescriptor{}, false
}

// State returns the processor's current lifecycle state.
func (p *Processor) State() ProcessorState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// SetState transitions the processor's lifecycle state. Called only by
// the worker runner and the compiler's Add/Remove phases.
func (p *Processor) SetState(s ProcessorState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

// IsPendingDeletion reports whether this vertex bears PendingDeletion
// (invariant I3: once set, it is never cleared).
func (p *Processor) IsPendingDeletion() bool {
	return hasComponent[PendingDeletion](p.components)
}

// MarkPendingDeletion attaches the PendingDeletion marker.
func (p *Processor) MarkPendingDeletion() {
	attachComponent(p.components, PendingDeletion{})
}

// AttachComponent attaches component c to this vertex, replacing any
// existing component of the same concrete type.
func AttachComponent[T any](p *Processor, c T) { attachComponent(p.components, c) }

// ComponentOf fetches the component of type T attached to this vertex.
func ComponentOf[T any](p *Processor) (T, bool) { return componentOf[T](p.components) }

// DetachComponent removes the component of type T from this vertex.
func DetachComponent[T any](p *Processor) { detachComponent[T](p.components) }
