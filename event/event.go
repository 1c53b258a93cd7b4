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

// Package event is the process-local, topic-based pub/sub bus the
// compiler publishes lifecycle events on (spec §4.7). It plays the
// role of engine/event.Msg in the teacher, adapted from a single
// pause/resume/exit signal channel into a general fan-out publisher:
// any number of subscribers may listen on the same topic, and delivery
// to a slow subscriber never blocks the publisher (bounded, drop-oldest
// subscriber channels, mirroring the link package's roll-off discipline).
package event

import (
	"sync"

	"github.com/jfontanez/flowmesh/graph"
)

// Topic names the lifecycle events named by the specification table in
// §4.7.
type Topic string

// The lifecycle topics.
const (
	TopicRuntimeWillAddProcessor    Topic = "RuntimeWillAddProcessor"
	TopicRuntimeDidAddProcessor     Topic = "RuntimeDidAddProcessor"
	TopicRuntimeWillRemoveProcessor Topic = "RuntimeWillRemoveProcessor"
	TopicRuntimeDidRemoveProcessor  Topic = "RuntimeDidRemoveProcessor"
	TopicRuntimeWillConnect         Topic = "RuntimeWillConnect"
	TopicRuntimeDidConnect          Topic = "RuntimeDidConnect"
	TopicRuntimeWillDisconnect      Topic = "RuntimeWillDisconnect"
	TopicRuntimeDidDisconnect       Topic = "RuntimeDidDisconnect"
	TopicGraphDidChange             Topic = "GraphDidChange"
)

// Event is the payload published on the bus. Not every field is
// populated for every topic; see the table in spec.md §4.7.
type Event struct {
	Topic       Topic
	ProcessorID graph.ProcessorUniqueId
	LinkID      graph.LinkUniqueId
	From        graph.PortAddress
	To          graph.PortAddress
}

// subscriberBuffer is the depth of each subscriber's channel. A slow
// subscriber that falls behind has its oldest pending event dropped
// rather than stalling the publisher — publication must never block
// the compiler's control-plane thread.
const subscriberBuffer = 64

// Bus is a topic-based publisher. The zero value is not usable;
// construct with NewBus.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]chan Event
	all  []chan Event // subscribers to every topic
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]chan Event)}
}

// Subscribe returns a channel that receives every Event published on
// topic from this point forward. Passing "" subscribes to all topics.
func (b *Bus) Subscribe(topic Topic) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == "" {
		b.all = append(b.all, ch)
	} else {
		b.subs[topic] = append(b.subs[topic], ch)
	}
	return ch
}

// Publish sends ev to every subscriber of ev.Topic and every
// all-topics subscriber. Delivery is best-effort: a subscriber whose
// buffer is full has its oldest queued event dropped to make room,
// exactly like the link package's roll-off, so Publish itself never
// blocks.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	targets := append(append([]chan Event(nil), b.subs[ev.Topic]...), b.all...)
	b.mu.Unlock()

	for _, ch := range targets {
		rollOffSend(ch, ev)
	}
}

func rollOffSend(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
