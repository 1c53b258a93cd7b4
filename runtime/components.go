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

// Package runtime implements the transactional compiler and worker
// thread runner: spec.md §4.2 and §4.3, and the public Runtime API of
// §6. It is grounded on engine/graph/engine.go, engine/graph/actions.go
// and engine/graph/state.go in the retrieval pack, which solve the
// same shape of problem (desired-vs-running graph reconciled by
// spawning/joining per-vertex worker goroutines behind a write lock)
// for system resources instead of media processors.
package runtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfontanez/flowmesh/processor"
)

// ProcessorInstance is the component attached to a processor vertex
// once its worker thread has constructed the concrete collaborator.
// Mirrors the specification's ProcessorInstance component and the role
// state.init/res plays in the teacher's State struct.
type ProcessorInstance struct {
	Proc processor.Processor
	Ctx  *processor.Context
}

// ThreadHandle is attached once a worker goroutine is spawned; Join
// blocks until the goroutine has exited or the timeout elapses.
// Equivalent to the teacher's per-vertex sync.WaitGroup
// (engine/graph/engine.go's obj.waits map) collapsed to a single
// channel since each processor owns exactly one worker goroutine.
type ThreadHandle struct {
	done chan struct{}
}

// NewThreadHandle constructs a handle whose Join will unblock when
// markDone is called.
func NewThreadHandle() *ThreadHandle {
	return &ThreadHandle{done: make(chan struct{})}
}

func (t *ThreadHandle) markDone() { close(t.done) }

// Join waits up to timeout for the worker goroutine to exit. Returns
// false on timeout (spec §5: "the join is abandoned; thread may remain
// until process exit").
func (t *ThreadHandle) Join(timeout time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// ShutdownChannel is a bounded single-shot signal used to request
// graceful stop; Signal is idempotent, and the receiving side is taken
// exactly once by the worker goroutine.
type ShutdownChannel struct {
	ch   chan struct{}
	once sync.Once
}

// NewShutdownChannel constructs an unsignalled channel.
func NewShutdownChannel() *ShutdownChannel {
	return &ShutdownChannel{ch: make(chan struct{})}
}

// Signal requests shutdown. Safe to call more than once or
// concurrently; only the first call has effect.
func (s *ShutdownChannel) Signal() { s.once.Do(func() { close(s.ch) }) }

// C returns the channel that closes when Signal is called.
func (s *ShutdownChannel) C() <-chan struct{} { return s.ch }

// PauseGate is a lock-free shared boolean flag consulted by the worker
// loop (and, per spec §4.6, by the processor's own Context.Paused) to
// skip process() without terminating the thread.
type PauseGate struct {
	paused atomic.Bool
}

// NewPauseGate constructs a gate in the running (not-paused) state.
func NewPauseGate() *PauseGate { return &PauseGate{} }

// Set updates the gate.
func (g *PauseGate) Set(paused bool) { g.paused.Store(paused) }

// Get reads the gate without locking.
func (g *PauseGate) Get() bool { return g.paused.Load() }

// ReadyBarrier is the two-state startup handshake described in spec
// §4.2: a locked phase (instance creation, component attachment, port
// wiring) followed by a lockless phase (setup()). It is a plain
// channel pair rather than a reentrant primitive, exactly as spec §9
// calls for.
type ReadyBarrier struct {
	readyOnce sync.Once
	ready     chan struct{}
	contOnce  sync.Once
	cont      chan struct{}
}

// NewReadyBarrier constructs an unsignalled barrier.
func NewReadyBarrier() *ReadyBarrier {
	return &ReadyBarrier{ready: make(chan struct{}), cont: make(chan struct{})}
}

// SignalReady is called by the worker goroutine once the processor
// instance exists and ProcessorInstance has been attached.
func (b *ReadyBarrier) SignalReady() { b.readyOnce.Do(func() { close(b.ready) }) }

// WaitReady is called by the compiler's Add phase.
func (b *ReadyBarrier) WaitReady() { <-b.ready }

// SignalContinue is called by the compiler once the whole Wire phase,
// including this thread's links, has finished.
func (b *ReadyBarrier) SignalContinue() { b.contOnce.Do(func() { close(b.cont) }) }

// WaitContinue is called by the worker goroutine before invoking
// Setup.
func (b *ReadyBarrier) WaitContinue() { <-b.cont }
