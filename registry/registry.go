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

// Package registry is the process-wide processor-type inventory (spec
// §4.6). It is grounded on engine.RegisterResource/NewResource from
// the teacher (engine/resources.go): a name-keyed map of factories,
// populated by each processor type's own init() via Register, looked
// up by the compiler when a ProcessorSpec names a type rather than
// handing over a typed handle directly.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/processor"
)

// Factory constructs a processor instance from a decoded, type-erased
// config value (typically the result of json.Unmarshal into the
// type's own Config struct, performed by the factory itself).
type Factory func(config json.RawMessage) (processor.Processor, error)

// Entry is what a processor type registers: its introspection
// descriptor, its static port schema (used by the graph package to
// validate links at wiring time), and its construction factory.
type Entry struct {
	Descriptor processor.Descriptor
	Ports      []graph.PortDescriptor
	New        Factory
}

// Registry is a process-wide processor-type inventory. The zero value
// is not usable; construct with NewRegistry. A package-level default
// instance is provided for the common inventory/collection-pattern use
// case (processor types call Register(DefaultRegistry, ...) from their
// own init()).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// DefaultRegistry is the process-wide registry used by processor types
// that register themselves via a package init().
var DefaultRegistry = NewRegistry()

// Register adds kind to the registry. Panics on an empty kind or a
// duplicate registration, matching the teacher's RegisterResource
// (engine/resources.go): registration mistakes are a build-time
// programming error, not a runtime condition to recover from.
func (r *Registry) Register(kind string, entry Entry) {
	if kind == "" {
		panic("registry: cannot register with an empty kind")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[kind]; exists {
		panic(fmt.Sprintf("registry: kind %q is already registered", kind))
	}
	r.entries[kind] = entry
}

// Lookup fetches the registered Entry for kind.
func (r *Registry) Lookup(kind string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[kind]
	return e, ok
}

// Kinds returns every registered type name.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}

// New constructs a processor of the named kind from raw config,
// dispatching through the registered factory. This is the path behind
// the specification's `add_processor(spec)`, as opposed to the typed
// `add_processor::<T>(config)` path that bypasses registry lookup
// entirely (see runtime.Runtime.AddProcessorTyped).
func (r *Registry) New(kind string, config json.RawMessage) (processor.Processor, error) {
	entry, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("registry: unknown processor kind %q", kind)
	}
	return entry.New(config)
}

// Spec is the serialisable form of a processor request: a (type_name,
// config) pair (spec §4.6, §6). It is what a declarative graph file
// carries for each processor entry. The YAML loader (runtime.LoadGraphFile)
// decodes into its own intermediate representation and re-encodes Config
// to JSON before building a Spec, since yaml.v2 has no equivalent of
// json.RawMessage's passthrough decoding.
type Spec struct {
	ProcessorType string          `json:"processor_type"`
	Config        json.RawMessage `json:"config"`
}
