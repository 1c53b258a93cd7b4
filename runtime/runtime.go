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

package runtime

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"github.com/jfontanez/flowmesh/event"
	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/processor"
	"github.com/jfontanez/flowmesh/registry"
	"github.com/jfontanez/flowmesh/util"
)

// Runtime is the public API surface named by spec.md §6: it owns the
// desired/running graph, the registry used to resolve ProcessorSpecs,
// the event bus, and the commit-mode transaction log. One Runtime
// drives one dataflow graph; a process that hosts more than one graph
// constructs more than one Runtime.
type Runtime struct {
	g        *graph.Graph
	registry *registry.Registry
	bus      *event.Bus
	log      *txLog

	commitMu sync.Mutex
	modeMu   sync.Mutex
	mode     CommitMode

	gpu   processor.GPUHandle
	audio processor.AudioConfig

	logf func(format string, v ...interface{})
}

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithRegistry overrides the default, package-level registry.
func WithRegistry(r *registry.Registry) Option {
	return func(rt *Runtime) { rt.registry = r }
}

// WithLogf overrides the default (standard log package) logging sink,
// mirroring the teacher's Logf-closure convention rather than a
// structured logging interface (see SPEC_FULL.md §2.1).
func WithLogf(logf func(format string, v ...interface{})) Option {
	return func(rt *Runtime) { rt.logf = logf }
}

// WithAudioConfig sets the AudioConfig handed to every processor's
// Context at Add phase.
func WithAudioConfig(cfg processor.AudioConfig) Option {
	return func(rt *Runtime) { rt.audio = cfg }
}

// NewRuntime constructs a Runtime over a freshly-named empty graph, in
// Manual commit mode (spec §4.2's default).
func NewRuntime(name string, opts ...Option) *Runtime {
	rt := &Runtime{
		g:        graph.NewGraph(name),
		registry: registry.DefaultRegistry,
		bus:      event.NewBus(),
		log:      newTxLog(),
		mode:     CommitManual,
		logf:     log.Printf,
	}
	for _, o := range opts {
		o(rt)
	}
	return rt
}

// Graph exposes the underlying property graph for read-only
// introspection (metrics dashboards, debugging tools).
func (rt *Runtime) Graph() *graph.Graph { return rt.g }

// CommitMode reports the current commit mode.
func (rt *Runtime) CommitMode() CommitMode {
	rt.modeMu.Lock()
	defer rt.modeMu.Unlock()
	return rt.mode
}

// SetCommitMode switches between Manual and Auto. Switching into Auto
// immediately drains any operations that had accumulated under Manual
// mode by performing one Commit (spec §4.2).
func (rt *Runtime) SetCommitMode(mode CommitMode) error {
	rt.modeMu.Lock()
	rt.mode = mode
	rt.modeMu.Unlock()
	if mode == CommitAuto {
		return rt.Commit()
	}
	return nil
}

func (rt *Runtime) maybeAutoCommit() error {
	if rt.CommitMode() == CommitAuto {
		return rt.Commit()
	}
	return nil
}

// AddProcessor adds a processor described by a registry.Spec,
// resolving its concrete factory through the Runtime's registry (the
// `add_processor(spec)` path of spec §4.6). The returned id is
// generated from the spec's processor type if none is supplied.
func (rt *Runtime) AddProcessor(id graph.ProcessorUniqueId, spec registry.Spec) (graph.ProcessorUniqueId, error) {
	entry, ok := rt.registry.Lookup(spec.ProcessorType)
	if !ok {
		return id, newRuntimeError(ErrConfiguration, "unknown processor type %q", spec.ProcessorType)
	}

	var config interface{}
	if len(spec.Config) > 0 {
		if err := json.Unmarshal(spec.Config, &config); err != nil {
			return id, newRuntimeError(ErrConfiguration, "processor %q: invalid config: %v", id, err)
		}
	}

	factory := func() (processor.Processor, error) { return entry.New(spec.Config) }
	return rt.addProcessorInternal(id, spec.ProcessorType, config, entry.Ports, factory)
}

// AddProcessorTyped constructs a processor of type T directly from a
// typed config value, bypassing registry lookup entirely (the typed
// `add_processor::<T>(config)` path of spec §4.6). It is a
// package-level function, not a method, because Go methods cannot
// themselves be generic.
func AddProcessorTyped[T processor.Processor](
	rt *Runtime,
	id graph.ProcessorUniqueId,
	kind string,
	config interface{},
	ports []graph.PortDescriptor,
	construct func() (T, error),
) (graph.ProcessorUniqueId, error) {
	factory := func() (processor.Processor, error) { return construct() }
	return rt.addProcessorInternal(id, kind, config, ports, factory)
}

func (rt *Runtime) addProcessorInternal(
	id graph.ProcessorUniqueId,
	kind string,
	config interface{},
	ports []graph.PortDescriptor,
	factory func() (processor.Processor, error),
) (graph.ProcessorUniqueId, error) {
	if id.IsZero() {
		id = graph.NewGeneratedProcessorUniqueId(kind)
	}

	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeWillAddProcessor, ProcessorID: id})

	vertex, err := rt.g.AddProcessor(id, kind, config, ports)
	if err != nil {
		return id, fromGraphErr(err)
	}
	graph.AttachComponent(vertex, factoryFunc{fn: factory})

	rt.log.append(PendingOperation{Kind: OpAddProcessor, ProcessorID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeDidAddProcessor, ProcessorID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicGraphDidChange, ProcessorID: id})

	if err := rt.maybeAutoCommit(); err != nil {
		return id, err
	}
	return id, nil
}

// RemoveProcessor marks id for deletion. Every live link touching id is
// cascaded into deletion too (scenario S5: removing a processor tears
// down its edges), since a vertex cannot be joined while a link still
// references its ports. The actual teardown happens at the next
// Commit.
func (rt *Runtime) RemoveProcessor(id graph.ProcessorUniqueId) error {
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return newRuntimeError(ErrRuntime, "processor %q does not exist", id)
	}

	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeWillRemoveProcessor, ProcessorID: id})

	for _, l := range rt.g.LinksFor(id) {
		l.MarkPendingDeletion()
		rt.log.append(PendingOperation{Kind: OpRemoveLink, LinkID: l.ID})
	}
	vertex.MarkPendingDeletion()

	rt.log.append(PendingOperation{Kind: OpRemoveProcessor, ProcessorID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeDidRemoveProcessor, ProcessorID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicGraphDidChange, ProcessorID: id})

	return rt.maybeAutoCommit()
}

// Connect declares a new link from an output port to an input port
// (spec §4.6's `connect`). The id is always generated, in the canonical
// `src.port>dst.port` form.
func (rt *Runtime) Connect(from, to graph.PortAddress, elemType graph.PortType, capacity int) (graph.LinkUniqueId, error) {
	id := graph.NewGeneratedLinkUniqueId(from, to)

	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeWillConnect, From: from, To: to})

	if _, err := rt.g.AddLink(id, from, to, elemType, capacity); err != nil {
		return id, fromGraphErr(err)
	}

	rt.log.append(PendingOperation{Kind: OpAddLink, LinkID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeDidConnect, LinkID: id, From: from, To: to})
	rt.bus.Publish(event.Event{Topic: event.TopicGraphDidChange, LinkID: id, From: from, To: to})

	if err := rt.maybeAutoCommit(); err != nil {
		return id, err
	}
	return id, nil
}

// Disconnect marks a link for deletion; it is unwired at the next
// Commit.
func (rt *Runtime) Disconnect(id graph.LinkUniqueId) error {
	l, ok := rt.g.Link(id)
	if !ok {
		return newRuntimeError(ErrRuntime, "link %q does not exist", id)
	}

	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeWillDisconnect, LinkID: id, From: l.From, To: l.To})
	l.MarkPendingDeletion()
	rt.log.append(PendingOperation{Kind: OpRemoveLink, LinkID: id})
	rt.bus.Publish(event.Event{Topic: event.TopicRuntimeDidDisconnect, LinkID: id, From: l.From, To: l.To})
	rt.bus.Publish(event.Event{Topic: event.TopicGraphDidChange, LinkID: id, From: l.From, To: l.To})

	return rt.maybeAutoCommit()
}

// Start brings the current desired graph up: equivalent to one Commit,
// named separately because it reads better at a program's entry point
// (spec §6).
func (rt *Runtime) Start() error {
	return rt.Commit()
}

// Stop tears the whole runtime down: every processor and link is
// marked for deletion, then a final Commit drains the graph to empty
// (mirrors engine.Engine.Close loading an empty graph and committing
// it).
func (rt *Runtime) Stop() error {
	for _, l := range rt.g.Links() {
		l.MarkPendingDeletion()
	}
	for _, p := range rt.g.Processors() {
		p.MarkPendingDeletion()
	}
	return rt.Commit()
}

// Pause sets id's pause gate. Takes effect on that processor's next
// loop iteration (spec §4.3/§4.6).
func (rt *Runtime) Pause(id graph.ProcessorUniqueId) error {
	return rt.setPauseGate(id, true)
}

// Resume clears id's pause gate.
func (rt *Runtime) Resume(id graph.ProcessorUniqueId) error {
	return rt.setPauseGate(id, false)
}

func (rt *Runtime) setPauseGate(id graph.ProcessorUniqueId, paused bool) error {
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return newRuntimeError(ErrRuntime, "processor %q does not exist", id)
	}
	gate, ok := graph.ComponentOf[*PauseGate](vertex)
	if !ok {
		return newRuntimeError(ErrRuntime, "processor %q is not running", id)
	}
	gate.Set(paused)
	return nil
}

// Paused implements processor.Control: it lets a processor query its
// own pause state through the Context it was handed at Setup, by name
// rather than by ProcessorUniqueId (Context carries only the string
// form to avoid exposing graph.ProcessorUniqueId to the processor
// package).
func (rt *Runtime) Paused(name string) bool {
	id, err := graph.NewProcessorUniqueId(name)
	if err != nil {
		return false
	}
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return false
	}
	gate, ok := graph.ComponentOf[*PauseGate](vertex)
	if !ok {
		return false
	}
	return gate.Get()
}

// Subscribe returns a channel of lifecycle events for topic (""
// subscribes to every topic). See the event package and spec §4.7.
func (rt *Runtime) Subscribe(topic event.Topic) <-chan event.Event {
	return rt.bus.Subscribe(topic)
}

// PendingOperationCount reports how many mutations are queued for the
// next commit, for introspection and tests.
func (rt *Runtime) PendingOperationCount() int {
	return rt.log.len()
}

// LogWriter adapts this Runtime's logf sink into an io.Writer via
// util.LogWriter, for handing to third-party components (an HTTP
// server's ErrorLog, a codec library's diagnostic output) that expect
// a writer rather than a Logf-style closure.
func (rt *Runtime) LogWriter(prefix string) io.Writer {
	return &util.LogWriter{Prefix: prefix, Logf: rt.logf}
}

var _ processor.Control = (*Runtime)(nil)
