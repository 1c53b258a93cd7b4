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
	"testing"
	"time"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/port"
	"github.com/jfontanez/flowmesh/processor"
)

// fakeSource and fakeSink are minimal Manual-mode processors used to
// exercise the compiler's Add/Wire/Unwire/Remove phases without any
// real media I/O. Manual mode is chosen so the worker never spins a
// Continuous/Reactive loop doing real work, keeping these tests quiet
// and deterministic.

type fakeSource struct {
	name    string
	out     *port.OutputPort[int]
	started chan struct{}
	stopped chan struct{}
}

func newFakeSource(name string) *fakeSource {
	return &fakeSource{
		name:    name,
		out:     port.NewOutputPort[int]("out", nil),
		started: make(chan struct{}, 1),
		stopped: make(chan struct{}, 1),
	}
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) ExecutionConfig() processor.ExecutionConfig {
	return processor.ExecutionConfig{Mode: processor.ModeManual}
}
func (f *fakeSource) Setup(ctx *processor.Context) error { return nil }
func (f *fakeSource) Teardown() error                     { return nil }
func (f *fakeSource) OnPause() error                      { return nil }
func (f *fakeSource) OnResume() error                     { return nil }
func (f *fakeSource) Process() error                      { return nil }
func (f *fakeSource) Start() error                        { f.started <- struct{}{}; return nil }
func (f *fakeSource) Stop() error                         { f.stopped <- struct{}{}; return nil }

func (f *fakeSource) OutputPort(name string) (port.Connector, bool) {
	if name == "out" {
		return f.out, true
	}
	return nil, false
}
func (f *fakeSource) InputPort(name string) (port.Connector, bool) { return nil, false }

var _ processor.Processor = (*fakeSource)(nil)
var _ port.PortHost = (*fakeSource)(nil)

type fakeSink struct {
	name string
	in   *port.InputPort[int]
}

func newFakeSink(name string) *fakeSink {
	return &fakeSink{name: name, in: port.NewInputPort[int]("in")}
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) ExecutionConfig() processor.ExecutionConfig {
	return processor.ExecutionConfig{Mode: processor.ModeManual}
}
func (f *fakeSink) Setup(ctx *processor.Context) error { return nil }
func (f *fakeSink) Teardown() error                     { return nil }
func (f *fakeSink) OnPause() error                      { return nil }
func (f *fakeSink) OnResume() error                     { return nil }
func (f *fakeSink) Process() error                      { return nil }
func (f *fakeSink) Start() error                        { return nil }
func (f *fakeSink) Stop() error                         { return nil }

func (f *fakeSink) InputPort(name string) (port.Connector, bool) {
	if name == "in" {
		return f.in, true
	}
	return nil, false
}
func (f *fakeSink) OutputPort(name string) (port.Connector, bool) { return nil, false }

var _ processor.Processor = (*fakeSink)(nil)
var _ port.PortHost = (*fakeSink)(nil)

func waitForState(t *testing.T, rt *Runtime, id graph.ProcessorUniqueId, want graph.ProcessorState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		vertex, ok := rt.g.Processor(id)
		if ok && vertex.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("processor %s did not reach state %s in time", id, want)
}

func TestCommitWiresAndRunsProcessors(t *testing.T) {
	rt := NewRuntime("test")

	var srcID, sinkID graph.ProcessorUniqueId
	var src *fakeSource

	srcID, err := AddProcessorTyped[*fakeSource](rt, srcID, "fake_source", nil, []graph.PortDescriptor{
		{Name: "out", Type: graph.PortTypeData, Direction: graph.DirectionOutput},
	}, func() (*fakeSource, error) {
		src = newFakeSource("cam")
		return src, nil
	})
	if err != nil {
		t.Fatalf("AddProcessorTyped(source): %v", err)
	}

	sinkID, err = AddProcessorTyped[*fakeSink](rt, sinkID, "fake_sink", nil, []graph.PortDescriptor{
		{Name: "in", Type: graph.PortTypeData, Direction: graph.DirectionInput},
	}, func() (*fakeSink, error) {
		return newFakeSink("enc"), nil
	})
	if err != nil {
		t.Fatalf("AddProcessorTyped(sink): %v", err)
	}

	from := graph.PortAddress{ProcessorID: srcID, PortName: "out"}
	to := graph.PortAddress{ProcessorID: sinkID, PortName: "in"}
	if _, err := rt.Connect(from, to, graph.PortTypeData, graph.DefaultLinkCapacity); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := rt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case <-src.started:
	case <-time.After(time.Second):
		t.Fatalf("expected the Manual-mode source's Start() to have been called")
	}

	waitForState(t, rt, srcID, graph.StateRunning)
	waitForState(t, rt, sinkID, graph.StateRunning)

	srcVertex, _ := rt.g.Processor(srcID)
	inst, ok := graph.ComponentOf[ProcessorInstance](srcVertex)
	if !ok {
		t.Fatalf("expected a ProcessorInstance to be attached after commit")
	}
	host := inst.Proc.(port.PortHost)
	conn, ok := host.OutputPort("out")
	if !ok {
		t.Fatalf("expected the source's output port to be resolvable")
	}
	if !conn.IsConnected() {
		t.Errorf("expected the output port to report connected after wiring")
	}

	if err := rt.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case <-src.stopped:
	case <-time.After(time.Second):
		t.Fatalf("expected the Manual-mode source's Stop() to have been called")
	}

	if _, ok := rt.g.Processor(srcID); ok {
		t.Errorf("expected the source vertex to be gone after Stop")
	}
}

func TestRemoveProcessorCascadesLinks(t *testing.T) {
	rt := NewRuntime("test")

	var srcID, sinkID graph.ProcessorUniqueId
	srcID, _ = AddProcessorTyped[*fakeSource](rt, srcID, "fake_source", nil, nil, func() (*fakeSource, error) {
		return newFakeSource("cam"), nil
	})
	sinkID, _ = AddProcessorTyped[*fakeSink](rt, sinkID, "fake_sink", nil, nil, func() (*fakeSink, error) {
		return newFakeSink("enc"), nil
	})

	from := graph.PortAddress{ProcessorID: srcID, PortName: "out"}
	to := graph.PortAddress{ProcessorID: sinkID, PortName: "in"}
	linkID, err := rt.Connect(from, to, graph.PortTypeUnknown, graph.DefaultLinkCapacity)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := rt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := rt.RemoveProcessor(srcID); err != nil {
		t.Fatalf("RemoveProcessor: %v", err)
	}
	l, ok := rt.g.Link(linkID)
	if !ok || !l.IsPendingDeletion() {
		t.Errorf("expected the touching link to be marked for deletion before commit")
	}

	if err := rt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, ok := rt.g.Processor(srcID); ok {
		t.Errorf("expected the source vertex to be removed")
	}
	if _, ok := rt.g.Link(linkID); ok {
		t.Errorf("expected the cascaded link to be removed")
	}
}

func TestCommitModeAutoDrainsOnSwitch(t *testing.T) {
	rt := NewRuntime("test")
	var id graph.ProcessorUniqueId
	id, _ = AddProcessorTyped[*fakeSink](rt, id, "fake_sink", nil, nil, func() (*fakeSink, error) {
		return newFakeSink("enc"), nil
	})

	if rt.PendingOperationCount() == 0 {
		t.Fatalf("expected a pending operation before any commit")
	}

	if err := rt.SetCommitMode(CommitAuto); err != nil {
		t.Fatalf("SetCommitMode: %v", err)
	}
	waitForState(t, rt, id, graph.StateRunning)

	if _, ok := rt.g.Processor(id); !ok {
		t.Fatalf("expected the processor to still exist after the auto-drain commit")
	}
}

func TestLogWriter(t *testing.T) {
	var got string
	rt := NewRuntime("test", WithLogf(func(format string, v ...interface{}) {
		got = format
	}))

	w := rt.LogWriter("prefix: ")
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got != "prefix: hello" {
		t.Errorf("logf received %q, expected %q", got, "prefix: hello")
	}
}

func TestPauseResume(t *testing.T) {
	rt := NewRuntime("test")
	var id graph.ProcessorUniqueId
	id, _ = AddProcessorTyped[*fakeSink](rt, id, "fake_sink", nil, nil, func() (*fakeSink, error) {
		return newFakeSink("enc"), nil
	})
	if err := rt.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	waitForState(t, rt, id, graph.StateRunning)

	if err := rt.Pause(id); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !rt.Paused(id.String()) {
		t.Errorf("expected Paused() to report true after Pause")
	}

	if err := rt.Resume(id); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if rt.Paused(id.String()) {
		t.Errorf("expected Paused() to report false after Resume")
	}
}
