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

package event

import (
	"testing"
	"time"
)

func TestSubscribeReceivesMatchingTopic(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(TopicRuntimeDidAddProcessor)

	b.Publish(Event{Topic: TopicRuntimeDidAddProcessor})
	b.Publish(Event{Topic: TopicRuntimeDidRemoveProcessor}) // must not be delivered

	select {
	case ev := <-ch:
		if ev.Topic != TopicRuntimeDidAddProcessor {
			t.Errorf("got topic %q, expected %q", ev.Topic, TopicRuntimeDidAddProcessor)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a matching event to be delivered")
	}

	select {
	case ev := <-ch:
		t.Errorf("did not expect a second event, got %v", ev)
	default:
	}
}

func TestSubscribeAllTopics(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe("")

	b.Publish(Event{Topic: TopicRuntimeDidConnect})
	b.Publish(Event{Topic: TopicRuntimeDidDisconnect})

	got := map[Topic]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			got[ev.Topic] = true
		case <-time.After(time.Second):
			t.Fatalf("expected two events on the all-topics subscriber")
		}
	}
	if !got[TopicRuntimeDidConnect] || !got[TopicRuntimeDidDisconnect] {
		t.Errorf("expected both topics to be delivered, got %v", got)
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(TopicGraphDidChange)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			b.Publish(Event{Topic: TopicGraphDidChange})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked against a never-drained subscriber")
	}

	if n := len(ch); n > subscriberBuffer {
		t.Errorf("subscriber channel holds %d events, expected at most %d", n, subscriberBuffer)
	}
}
