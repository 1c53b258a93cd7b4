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
	goruntime "runtime"
	"time"

	"golang.org/x/time/rate"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/processor"
)

// reactivePollInterval is the microsecond-scale poll period for
// Reactive-mode processors (spec §4.3).
const reactivePollInterval = 200 * time.Microsecond

// defaultContinuousInterval is used when a Continuous processor
// declares an Interval of zero.
const defaultContinuousInterval = time.Millisecond

// pauseSleepInterval is how long Manual mode's parked loop sleeps
// between pause-gate and shutdown checks. Continuous and Reactive
// loops sleep their own interval, paused or not.
const pauseSleepInterval = 2 * time.Millisecond

// shutdownGrace bounds how long Remove phase waits for a worker
// goroutine to exit before giving up on the join (spec §5
// "Cancellation").
const shutdownGrace = 5 * time.Second

// processFailureLimiter throttles how often a persistently-failing
// process() call gets logged, so a stuck processor cannot flood the
// log. One limiter per worker, grounded on the token-bucket use of
// golang.org/x/time/rate in engine/graph/actions.go, applied here to
// failure logging instead of to the output-event channel.
func newProcessFailureLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(2), 5) // 2/s sustained, burst of 5
}

// workerArgs bundles everything runWorker needs, built by the
// compiler's Add phase.
type workerArgs struct {
	vertex   *graph.Processor
	barrier  *ReadyBarrier
	shutdown *ShutdownChannel
	gate     *PauseGate
	handle   *ThreadHandle
	factory  func() (processor.Processor, error)
	ctx      *processor.Context
	logf     func(format string, v ...interface{})
	bus      func(graph.ProcessorUniqueId, processor.Processor) // notified once the instance is constructed and attached
}

// runWorker is the worker thread runner (spec §4.3): it implements the
// ready barrier protocol (spec §4.2) for startup, then drives one of
// the three scheduling modes until shutdown is signalled, sharing one
// pause/resume/shutdown loop across all of them. Grounded on
// engine/graph/actions.go's Worker function, generalised from a single
// Watch-retry loop into the three declared execution modes.
func runWorker(a workerArgs) {
	defer a.handle.markDone()

	if a.ctx.ProcessorName == "" {
		a.ctx.ProcessorName = a.vertex.ID.String()
	}

	proc, err := constructProcessor(a.factory, a.logf)
	if err != nil {
		a.logf("worker %s: construction failed: %v", a.vertex.ID, err)
		a.vertex.SetState(graph.StateError)
		a.barrier.SignalReady() // unblock the compiler's Add phase regardless
		return
	}

	inst := ProcessorInstance{Proc: proc, Ctx: a.ctx}
	graph.AttachComponent(a.vertex, inst)
	if a.bus != nil {
		a.bus(a.vertex.ID, proc)
	}

	a.barrier.SignalReady()
	a.barrier.WaitContinue() // the compiler wires this thread's links during the wait

	if cfg := proc.ExecutionConfig(); cfg.Mode != processor.ModeManual && elevatePriority(cfg.Priority) {
		a.logf("worker %s: elevated to OS thread for priority request", a.vertex.ID)
	}

	if err := safeCall(proc.Setup, a.ctx); err != nil {
		a.logf("worker %s: setup failed: %v", a.vertex.ID, err)
		a.vertex.SetState(graph.StateError)
		return
	}

	a.vertex.SetState(graph.StateRunning)

	switch proc.ExecutionConfig().Mode {
	case processor.ModeManual:
		runManual(a, proc)
	case processor.ModeReactive:
		runLoop(a, proc, reactivePollInterval, true)
	default:
		interval := time.Duration(proc.ExecutionConfig().Interval)
		if interval <= 0 {
			interval = defaultContinuousInterval
		}
		runLoop(a, proc, interval, false)
	}

	if err := safeCallNoArg(proc.Teardown); err != nil {
		a.logf("worker %s: teardown failed: %v", a.vertex.ID, err)
	}
	a.vertex.SetState(graph.StateStopped)
}

// constructProcessor calls the factory, converting a panic into an
// error so a broken factory cannot take the whole runtime down with
// it (spec §7 "Fatal").
func constructProcessor(factory func() (processor.Processor, error), logf func(string, ...interface{})) (proc processor.Processor, err error) {
	defer func() {
		if r := recover(); r != nil {
			logf("processor factory panicked: %v", r)
			err = newRuntimeError(ErrRuntime, "factory panic: %v", r)
		}
	}()
	return factory()
}

// runLoop drives Continuous and Reactive mode: the shared
// pause/resume/shutdown loop plus a conditional or unconditional call
// to process().
func runLoop(a workerArgs, proc processor.Processor, interval time.Duration, reactive bool) {
	limiter := newProcessFailureLimiter()
	paused := false

	for {
		select {
		case <-a.shutdown.C():
			return
		default:
		}

		nowPaused := a.gate.Get()
		if nowPaused != paused {
			if nowPaused {
				if err := safeCallNoArg(proc.OnPause); err != nil {
					a.logf("worker %s: on_pause failed: %v", a.vertex.ID, err)
				}
				a.vertex.SetState(graph.StatePaused)
			} else {
				if err := safeCallNoArg(proc.OnResume); err != nil {
					a.logf("worker %s: on_resume failed: %v", a.vertex.ID, err)
				}
				a.vertex.SetState(graph.StateRunning)
			}
			paused = nowPaused
		}

		if !paused {
			shouldProcess := true
			if reactive {
				if rc, ok := proc.(processor.ReactiveCheck); ok {
					shouldProcess = rc.HasInputData()
				}
			}
			if shouldProcess {
				start := time.Now()
				if err := safeCallNoArg(proc.Process); err != nil {
					if limiter.Allow() {
						a.logf("worker %s: process() failed: %v", a.vertex.ID, err)
					}
				}
				if m, ok := graph.ComponentOf[*graph.Metrics](a.vertex); ok {
					m.Frames.Add(1)
					m.LastProcessNs.Store(time.Since(start).Nanoseconds())
				}
			}
		}

		select {
		case <-a.shutdown.C():
			return
		case <-time.After(interval):
		}
	}
}

// runManual drives Manual mode: start() once, then park on
// pause/resume/shutdown only (spec §4.3). process() is never called.
func runManual(a workerArgs, proc processor.Processor) {
	if err := safeCallNoArg(proc.Start); err != nil {
		a.logf("worker %s: start() failed: %v", a.vertex.ID, err)
		a.vertex.SetState(graph.StateError)
		return
	}

	paused := false
	for {
		select {
		case <-a.shutdown.C():
			if err := safeCallNoArg(proc.Stop); err != nil {
				a.logf("worker %s: stop() failed: %v", a.vertex.ID, err)
			}
			return
		case <-time.After(pauseSleepInterval):
		}

		nowPaused := a.gate.Get()
		if nowPaused != paused {
			if nowPaused {
				if err := safeCallNoArg(proc.OnPause); err != nil {
					a.logf("worker %s: on_pause failed: %v", a.vertex.ID, err)
				}
				a.vertex.SetState(graph.StatePaused)
			} else {
				if err := safeCallNoArg(proc.OnResume); err != nil {
					a.logf("worker %s: on_resume failed: %v", a.vertex.ID, err)
				}
				a.vertex.SetState(graph.StateRunning)
			}
			paused = nowPaused
		}
	}
}

// elevatePriority is the best-effort, portable stand-in for OS thread
// priority elevation: Go has no stdlib API for this, so a RealTime or
// High priority request locks this goroutine to its OS thread
// (runtime.LockOSThread), which at least guarantees the scheduler
// won't migrate it mid-burst. Manual mode never calls this for the
// outer thread (spec §4.3: "real work runs on OS callback threads").
func elevatePriority(p processor.Priority) bool {
	if p == processor.PriorityDefault {
		return false
	}
	goruntime.LockOSThread()
	return true
}

// safeCall and safeCallNoArg isolate a panic inside a lifecycle
// callback the way spec §7 requires ("panics inside worker threads are
// isolated ... they never crash other processors or the runtime").
func safeCallNoArg(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newRuntimeError(ErrRuntime, "panic: %v", r)
		}
	}()
	return fn()
}

func safeCall(fn func(*processor.Context) error, ctx *processor.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newRuntimeError(ErrRuntime, "panic: %v", r)
		}
	}()
	return fn(ctx)
}
