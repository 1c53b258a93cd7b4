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

package processor

// GPUHandle stands in for the GPU resource abstraction (device,
// texture pools, IOSurface/DMA-BUF sharing), which spec.md §1 places
// out of scope. It is kept as an opaque handle so Context has a place
// for the runtime to eventually plug one in without changing this
// package's shape.
type GPUHandle interface{}

// AudioConfig carries the sample rate and buffer size a Manual-mode
// audio processor needs when it registers its OS-level callback.
type AudioConfig struct {
	SampleRate int
	BufferSize int
}

// Control is the minimal slice of the runtime's public API that a
// processor's Setup may need to call back into (e.g. to add a
// companion processor, or to read its own pause state). Defined here
// rather than imported from the runtime package to avoid an import
// cycle (runtime depends on processor, not the reverse) — the same
// shape mgmt's engine.Init uses a closure-based Init struct instead of
// importing engine/graph back into engine.
type Control interface {
	// Paused reports whether this processor's PauseGate is currently
	// set. Safe to call from any goroutine.
	Paused(name string) bool
}

// Context is the per-runtime shared struct handed to a processor's
// Setup call (the specification's RuntimeContext, §4.6).
type Context struct {
	GPU   GPUHandle
	Audio AudioConfig

	// Runtime lets a processor dispatch control-plane calls (see
	// Control above) without a direct import of the runtime package.
	Runtime Control

	// ProcessorName and the pause predicate below let a Manual-mode
	// processor check its own pause state from an OS callback thread
	// without holding any runtime lock.
	ProcessorName string
}

// Paused is a convenience wrapper around Runtime.Paused(ctx.ProcessorName).
func (c *Context) Paused() bool {
	if c.Runtime == nil {
		return false
	}
	return c.Runtime.Paused(c.ProcessorName)
}
