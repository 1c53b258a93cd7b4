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

import (
	"reflect"
	"sync"
)

// componentStore is a heterogeneous bag of components keyed by their
// concrete Go type, shared by processor vertices and link edges. A
// single mutex guards it; critical sections are always a single
// attach/detach/lookup, never a held lock across processor work.
type componentStore struct {
	mu   sync.RWMutex
	bag  map[reflect.Type]interface{}
}

func newComponentStore() *componentStore {
	return &componentStore{bag: make(map[reflect.Type]interface{})}
}

// attachComponent stores c, replacing any existing component of the
// same concrete type.
func attachComponent[T any](cs *componentStore, c T) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.bag[reflect.TypeOf(c)] = c
}

// componentOf fetches the component of type T, if attached.
func componentOf[T any](cs *componentStore) (T, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var zero T
	v, ok := cs.bag[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// detachComponent removes the component of type T, if present.
func detachComponent[T any](cs *componentStore) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var zero T
	delete(cs.bag, reflect.TypeOf(zero))
}

// hasComponent reports whether a component of type T is attached.
func hasComponent[T any](cs *componentStore) bool {
	_, ok := componentOf[T](cs)
	return ok
}

// Canonical processor-vertex components named by the specification.
// ProcessorInstance, ThreadHandle, ShutdownChannel, PauseGate and
// ReadyBarrier are defined in the runtime package (they wrap the
// collaborator and the concurrency primitives that belong with the
// worker runner); the lifecycle state is a field on Processor itself.

// PendingDeletion marks a vertex or edge as soft-deleted: it will be
// removed at the next commit and may never be resurrected (invariant
// I3).
type PendingDeletion struct{}

// Metrics holds opportunistically-populated throughput counters for a
// processor vertex. See SPEC_FULL.md §4.9.
type Metrics struct {
	Frames       *atomicCounter
	LastProcessNs *atomicCounter
}

// NewMetrics constructs a zeroed Metrics component.
func NewMetrics() *Metrics {
	return &Metrics{Frames: newAtomicCounter(), LastProcessNs: newAtomicCounter()}
}

// MainThreadMarker is a scheduling hint: this processor must run on
// the process's designated main thread (e.g. for platform UI/display
// callbacks). Empty marker type, presence is the signal.
type MainThreadMarker struct{}

// LightweightMarker is a scheduling hint: this processor's process()
// is cheap enough that the runner may relax priority elevation.
type LightweightMarker struct{}
