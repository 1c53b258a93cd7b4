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
	"github.com/jfontanez/flowmesh/event"
	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/port"
	"github.com/jfontanez/flowmesh/processor"
	"github.com/jfontanez/flowmesh/util/errwrap"
)

// factoryFunc is the component attached to a vertex at AddProcessor
// time, remembered so the compiler's Add phase can (re)construct the
// collaborator without the graph package needing to know about
// processor.Processor at all.
type factoryFunc struct {
	fn func() (processor.Processor, error)
}

// Commit reconciles the desired graph against the currently running
// state: it computes a Delta (spec §4.2) and applies the two-phase
// reconciliation (Add -> Wire -> Unwire -> Remove) grounded on
// engine/graph/engine.go's Commit. Calling Commit with no pending
// changes is a no-op (invariant P6, commit idempotence).
func (rt *Runtime) Commit() error {
	rt.commitMu.Lock()
	defer rt.commitMu.Unlock()
	return rt.commitLocked()
}

func (rt *Runtime) commitLocked() error {
	rt.log.drain() // everything logged since the last commit is about to be applied

	delta := rt.computeCurrentDelta()

	// Config-checksum updates restart the processor (spec §4.2, §9:
	// "the repository's MVP restarts the processor"). Do this first and
	// then recompute the delta: the restarted ids and their unwired
	// links naturally fall out as ordinary adds/wires on the fresh
	// delta, so the remaining logic never needs to special-case
	// updates.
	if len(delta.ProcessorsToUpdate) > 0 {
		for _, change := range delta.ProcessorsToUpdate {
			rt.restartForUpdate(change.ID)
		}
		delta = rt.computeCurrentDelta()
	}

	var result error

	// Phase 1: Add. Spawn every new worker and wait for its ready
	// signal; continue is withheld until after the Wire phase below.
	pendingBarriers := make(map[graph.ProcessorUniqueId]*ReadyBarrier)
	for _, id := range delta.ProcessorsToAdd {
		barrier, err := rt.addPhase(id)
		if err != nil {
			result = errwrap.Append(result, err)
			continue
		}
		pendingBarriers[id] = barrier
	}

	// Phase 2: Wire.
	for _, id := range delta.LinksToAdd {
		if err := rt.wireLink(id); err != nil {
			result = errwrap.Append(result, err)
		}
	}

	// Release every newly-added processor's continue signal now that
	// its links are wired (spec §4.2's ready barrier protocol).
	for _, barrier := range pendingBarriers {
		barrier.SignalContinue()
	}

	// Phase 3: Unwire.
	for _, id := range delta.LinksToRemove {
		if err := rt.unwireLink(id); err != nil {
			result = errwrap.Append(result, err)
		}
	}

	// Phase 4: Remove.
	for _, id := range delta.ProcessorsToRemove {
		if err := rt.removePhase(id); err != nil {
			result = errwrap.Append(result, err)
		}
	}

	return result
}

// addPhase spawns the worker goroutine for id and blocks until it
// signals ready (instance constructed, ProcessorInstance attached).
// The returned barrier's continue signal is the caller's
// responsibility once wiring is done.
func (rt *Runtime) addPhase(id graph.ProcessorUniqueId) (*ReadyBarrier, error) {
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return nil, newRuntimeError(ErrRuntime, "add phase: processor %q vanished", id)
	}
	factory, ok := graph.ComponentOf[factoryFunc](vertex)
	if !ok {
		return nil, newRuntimeError(ErrRuntime, "add phase: processor %q has no factory", id)
	}

	barrier := NewReadyBarrier()
	shutdown := NewShutdownChannel()
	gate := NewPauseGate()
	handle := NewThreadHandle()
	metrics := graph.NewMetrics()

	graph.AttachComponent(vertex, barrier)
	graph.AttachComponent(vertex, shutdown)
	graph.AttachComponent(vertex, gate)
	graph.AttachComponent(vertex, handle)
	graph.AttachComponent(vertex, metrics)
	vertex.SetState(graph.StateStarting)

	ctx := &processor.Context{
		GPU:           rt.gpu,
		Audio:         rt.audio,
		Runtime:       rt,
		ProcessorName: id.String(),
	}

	go runWorker(workerArgs{
		vertex:   vertex,
		barrier:  barrier,
		shutdown: shutdown,
		gate:     gate,
		handle:   handle,
		factory:  factory.fn,
		ctx:      ctx,
		logf:     rt.logf,
		bus: func(instID graph.ProcessorUniqueId, _ processor.Processor) {
			rt.bus.Publish(event.Event{Topic: event.TopicGraphDidChange, ProcessorID: instID})
		},
	})

	barrier.WaitReady()
	vertex.ConfigChecksum = configChecksum(vertex.Config)
	return barrier, nil
}

// wireLink creates the shared ring for id and installs it on both
// endpoints (spec §4.2's Wire phase).
func (rt *Runtime) wireLink(id graph.LinkUniqueId) error {
	l, ok := rt.g.Link(id)
	if !ok {
		return nil // removed before it was ever wired; nothing to do
	}

	srcConn, err := rt.connectorFor(l.From, port.DirectionSentinelOutput)
	if err != nil {
		return err
	}
	dstConn, err := rt.connectorFor(l.To, port.DirectionSentinelInput)
	if err != nil {
		return err
	}

	ring := srcConn.NewConnection(l.Capacity)
	if err := srcConn.AddConnectionAny(id, ring); err != nil {
		return fromGraphErr(&graph.Error{Kind: graph.ErrTypeMismatch, Msg: err.Error()})
	}
	if err := dstConn.AddConnectionAny(id, ring); err != nil {
		srcConn.RemoveConnectionAny(id)
		return fromGraphErr(&graph.Error{Kind: graph.ErrTypeMismatch, Msg: err.Error()})
	}

	l.SetState(graph.LinkWired)
	return nil
}

// unwireLink detaches both endpoints' connections for id. If the edge
// is itself pending deletion, it is then removed from the topology
// entirely; otherwise (a restart-triggered unwire) it reverts to
// Pending so the next delta computation re-wires it.
func (rt *Runtime) unwireLink(id graph.LinkUniqueId) error {
	l, ok := rt.g.Link(id)
	if !ok {
		return nil
	}

	if srcConn, err := rt.connectorFor(l.From, port.DirectionSentinelOutput); err == nil {
		srcConn.RemoveConnectionAny(id)
	}
	if dstConn, err := rt.connectorFor(l.To, port.DirectionSentinelInput); err == nil {
		dstConn.RemoveConnectionAny(id)
	}

	if l.IsPendingDeletion() {
		rt.g.DeleteLink(id)
	} else {
		l.SetState(graph.LinkPending)
	}
	return nil
}

// removePhase signals shutdown, joins the worker (bounded by a grace
// timeout), releases its components, and deletes the vertex.
func (rt *Runtime) removePhase(id graph.ProcessorUniqueId) error {
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return nil
	}
	vertex.SetState(graph.StateStopping)

	if sc, ok := graph.ComponentOf[*ShutdownChannel](vertex); ok {
		sc.Signal()
	}
	if h, ok := graph.ComponentOf[*ThreadHandle](vertex); ok {
		if !h.Join(shutdownGrace) {
			rt.logf("processor %s: teardown exceeded grace period, abandoning join", id)
		}
	}

	graph.DetachComponent[ProcessorInstance](vertex)
	graph.DetachComponent[*ThreadHandle](vertex)
	graph.DetachComponent[*ShutdownChannel](vertex)
	graph.DetachComponent[*PauseGate](vertex)
	graph.DetachComponent[*ReadyBarrier](vertex)
	graph.DetachComponent[*graph.Metrics](vertex)

	rt.g.DeleteProcessor(id)
	return nil
}

// restartForUpdate stops the current worker for id (without removing
// the vertex) and unwires its links, leaving the vertex ready to be
// picked up fresh by the next delta computation's Add phase.
func (rt *Runtime) restartForUpdate(id graph.ProcessorUniqueId) {
	vertex, ok := rt.g.Processor(id)
	if !ok {
		return
	}

	if sc, ok := graph.ComponentOf[*ShutdownChannel](vertex); ok {
		sc.Signal()
	}
	if h, ok := graph.ComponentOf[*ThreadHandle](vertex); ok {
		if !h.Join(shutdownGrace) {
			rt.logf("processor %s: restart join exceeded grace period", id)
		}
	}

	for _, l := range rt.g.LinksFor(id) {
		if l.State() == graph.LinkWired {
			_ = rt.unwireLink(l.ID)
		}
	}

	graph.DetachComponent[ProcessorInstance](vertex)
	graph.DetachComponent[*ThreadHandle](vertex)
	graph.DetachComponent[*ShutdownChannel](vertex)
	graph.DetachComponent[*PauseGate](vertex)
	graph.DetachComponent[*ReadyBarrier](vertex)
	graph.DetachComponent[*graph.Metrics](vertex)
	vertex.SetState(graph.StateStopped)
}

// connectorFor resolves a port.Connector for the given port address,
// failing if the processor is not running or has no such port.
func (rt *Runtime) connectorFor(addr graph.PortAddress, dir port.DirectionSentinel) (port.Connector, error) {
	vertex, ok := rt.g.Processor(addr.ProcessorID)
	if !ok {
		return nil, newRuntimeError(ErrRuntime, "processor %q does not exist", addr.ProcessorID)
	}
	inst, ok := graph.ComponentOf[ProcessorInstance](vertex)
	if !ok {
		return nil, newRuntimeError(ErrRuntime, "processor %q is not running", addr.ProcessorID)
	}
	host, ok := inst.Proc.(port.PortHost)
	if !ok {
		return nil, newRuntimeError(ErrRuntime, "processor %q exposes no ports", addr.ProcessorID)
	}
	var (
		conn port.Connector
		found bool
	)
	if dir == port.DirectionSentinelOutput {
		conn, found = host.OutputPort(addr.PortName)
	} else {
		conn, found = host.InputPort(addr.PortName)
	}
	if !found {
		return nil, newRuntimeError(ErrRuntime, "processor %q has no port %q", addr.ProcessorID, addr.PortName)
	}
	return conn, nil
}

// computeCurrentDelta builds the Delta between the desired graph
// (everything not PendingDeletion) and the currently running state
// (vertices with a ThreadHandle attached, edges in LinkWired state).
func (rt *Runtime) computeCurrentDelta() *Delta {
	desiredProcs := make(map[graph.ProcessorUniqueId]bool)
	runningProcs := make(map[graph.ProcessorUniqueId]bool)
	desiredChecksums := make(map[graph.ProcessorUniqueId]uint64)
	runningChecksums := make(map[graph.ProcessorUniqueId]uint64)

	for _, p := range rt.g.Processors() {
		if !p.IsPendingDeletion() {
			desiredProcs[p.ID] = true
			desiredChecksums[p.ID] = configChecksum(p.Config)
		}
		if _, ok := graph.ComponentOf[*ThreadHandle](p); ok {
			runningProcs[p.ID] = true
			runningChecksums[p.ID] = p.ConfigChecksum
		}
	}

	desiredLinks := make(map[graph.LinkUniqueId]bool)
	wiredLinks := make(map[graph.LinkUniqueId]bool)
	for _, l := range rt.g.Links() {
		if !l.IsPendingDeletion() {
			desiredLinks[l.ID] = true
		}
		if l.State() == graph.LinkWired {
			wiredLinks[l.ID] = true
		}
	}

	return computeDelta(desiredProcs, runningProcs, desiredLinks, wiredLinks, desiredChecksums, runningChecksums)
}
