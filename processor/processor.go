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

// Package processor defines the collaborator contract that concrete
// media processors (cameras, displays, audio I/O, GPU effects — all
// out of scope here, see spec.md §1) must implement to be driven by
// the runtime. It plays the role that engine.Res plays in the teacher:
// a small, uniform interface the compiler and worker runner can drive
// without knowing any concrete processor's internals.
package processor

// Priority is an advisory thread-priority request made via
// ExecutionConfig. The runner elevates on a best-effort basis; a
// platform that refuses elevation logs a warning and continues at
// default priority (spec §4.3).
type Priority int

// The declared priority levels.
const (
	PriorityDefault Priority = iota
	PriorityHigh
	PriorityRealTime
)

// Mode selects one of the three worker scheduling modes (spec §4.3).
type Mode int

// The three scheduling modes.
const (
	ModeContinuous Mode = iota
	ModeReactive
	ModeManual
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeContinuous:
		return "Continuous"
	case ModeReactive:
		return "Reactive"
	case ModeManual:
		return "Manual"
	default:
		return "Unknown"
	}
}

// ExecutionConfig describes how the worker runner should drive a
// processor: which of the three scheduling modes, the fixed interval
// for Continuous mode, and an advisory thread priority.
type ExecutionConfig struct {
	Mode     Mode
	Interval int64 // nanoseconds; Continuous mode only, 0 means a short default
	Priority Priority
}

// Processor is the contract a concrete media-processing component must
// satisfy. It deliberately mirrors engine.Res's shape (fmt.Stringer
// plus a small set of lifecycle callbacks) rather than inventing a new
// idiom: construction is separated from initialisation, teardown
// follows a successful setup (a worker whose setup fails is not torn
// down), and errors from
// any single call are always returned rather than panicked (panics
// that do occur are isolated by the worker runner, spec §7).
type Processor interface {
	// Name returns this processor's human-readable identity, usually
	// equal to its ProcessorUniqueId's string form.
	Name() string

	// ExecutionConfig describes how the worker runner should schedule
	// this processor. Read by the worker goroutine once the ready
	// barrier releases it, to pick the priority and scheduling mode.
	ExecutionConfig() ExecutionConfig

	// Setup is called exactly once per worker lifetime, after the
	// ready barrier's continue signal and with no runtime locks held
	// (spec §4.2's ready barrier rationale). It receives the shared
	// Context.
	Setup(ctx *Context) error

	// Teardown is called at most once per worker lifetime, after the
	// last Process/on_pause call, when the worker is shut down (Remove
	// phase, final Stop, or a config-update restart). It is not called
	// when Setup fails.
	Teardown() error

	// OnPause is invoked once at the Running->Paused transition.
	OnPause() error

	// OnResume is invoked once at the Paused->Running transition.
	OnResume() error

	// Process is driven by Continuous and Reactive modes only; Manual
	// mode never calls it (spec §4.3). A Process failure is logged and
	// rate-limited, never fatal to the worker (spec §7). Context
	// carries no handle to the vertex's lifecycle state, so a processor
	// cannot mark itself Error from Process; a failing Process is
	// called again on the next iteration until the worker is shut down.
	Process() error

	// Start is driven by Manual mode only, once, typically to register
	// OS-level callbacks on OS-managed threads. Stop is the paired
	// shutdown call.
	Start() error
	Stop() error
}

// ReactiveCheck lets a Reactive-mode processor tell the worker runner
// whether it currently has queued input, so process() is only called
// when there is something to do (spec §4.3). A processor that does
// not implement this is polled unconditionally at the Reactive
// interval instead — a conservative fallback, since always calling
// process() is always safe, just less efficient.
type ReactiveCheck interface {
	HasInputData() bool
}

// Descriptor is the introspection metadata a processor type publishes
// for registry-based construction (spec §4.6, §6): name, a short
// description, and free-form tags. Port schemas are carried alongside
// as []graph.PortDescriptor by the registry entry itself (see
// registry.Entry) rather than duplicated here.
type Descriptor struct {
	Name        string
	Description string
	Tags        []string
}
