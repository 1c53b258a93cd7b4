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

// Package link implements the typed, single-producer/single-consumer
// ring-buffer transport that carries frames between processor ports,
// along with its plug (null-object) counterpart.
package link

import "sync"

// Connection is the operation set shared by a real ring-buffer channel
// and its disconnected plug counterpart (§4.4, the "plug / null-object
// pattern"). A port always holds at least one Connection[T]; there is
// never an Option/nil branch on the write hot path.
type Connection[T any] interface {
	// Write pushes a value toward the consumer. Never blocks, never
	// returns an error (invariant L2); on a full real ring the oldest
	// element is dropped (roll-off).
	Write(v T)
	// ReadLatest drains everything currently queued and returns the
	// newest element, or the zero value and false if nothing was
	// queued.
	ReadLatest() (T, bool)
	// HasData is a lock-free peek at whether a read would return
	// something.
	HasData() bool
	// IsPlug reports whether this connection is the null-object.
	IsPlug() bool
}

// Ring is the real connection: a mutex-guarded ring buffer of fixed
// capacity with latest-read semantics and roll-off on full. Write and
// ReadLatest each take the buffer's mutex for the duration of a single
// push/drain, so they are not lock-free; only HasData reads the cached
// size without locking. No lock is held across the wake-up send.
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int
	size     atomicInt // lock-free cached count, invariant with len(buf) under mu

	wakeup chan struct{} // bounded-1, non-blocking send (try_send)
}

// NewRing constructs a ring of the given capacity (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		capacity: capacity,
		buf:      make([]T, 0, capacity),
		wakeup:   make(chan struct{}, 1),
	}
}

// Write implements Connection. On a full ring, the oldest element is
// popped and the push retried (roll-off); a wake-up is posted via a
// non-blocking send so a lagging consumer never backpressures the
// producer (invariant L2, P9).
func (r *Ring[T]) Write(v T) {
	r.mu.Lock()
	if len(r.buf) >= r.capacity {
		// roll off the oldest entry to make room
		r.buf = r.buf[1:]
	}
	r.buf = append(r.buf, v)
	r.size.Store(int64(len(r.buf)))
	r.mu.Unlock()

	select {
	case r.wakeup <- struct{}{}:
	default:
		// consumer already has a pending wake-up; drop this one.
	}
}

// ReadLatest implements Connection. It consumes every currently-queued
// element in one chunk read and returns only the newest, avoiding
// clones of elements that would be discarded anyway.
func (r *Ring[T]) ReadLatest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) == 0 {
		var zero T
		return zero, false
	}
	last := r.buf[len(r.buf)-1]
	r.buf = r.buf[:0]
	r.size.Store(0)
	return last, true
}

// HasData implements Connection via a lock-free read of the cached
// atomic size counter (critical for Reactive-mode polling loops that
// check every input port on every iteration).
func (r *Ring[T]) HasData() bool {
	return r.size.Load() > 0
}

// IsPlug implements Connection.
func (r *Ring[T]) IsPlug() bool { return false }

// Wakeup returns the receive side of this ring's bounded-1 wake-up
// channel. Reactive-mode processors currently poll instead of
// consuming this, per spec §4.4; it exists for future event-driven
// variants and for processors that explicitly want to block on it.
func (r *Ring[T]) Wakeup() <-chan struct{} { return r.wakeup }

// Len reports the number of queued elements. For tests and metrics
// only; not part of the Connection contract.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}
