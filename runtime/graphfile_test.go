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
	"testing"

	"github.com/jfontanez/flowmesh/graph"
	"github.com/jfontanez/flowmesh/processor"
	"github.com/jfontanez/flowmesh/registry"
)

func newGraphFileTestRegistry() *registry.Registry {
	r := registry.NewRegistry()
	r.Register("fake_source", registry.Entry{
		Descriptor: processor.Descriptor{Name: "fake_source"},
		Ports: []graph.PortDescriptor{
			{Name: "out", Type: graph.PortTypeData, Direction: graph.DirectionOutput},
		},
		New: func(config json.RawMessage) (processor.Processor, error) {
			return newFakeSource("cam"), nil
		},
	})
	r.Register("fake_sink", registry.Entry{
		Descriptor: processor.Descriptor{Name: "fake_sink"},
		Ports: []graph.PortDescriptor{
			{Name: "in", Type: graph.PortTypeData, Direction: graph.DirectionInput},
		},
		New: func(config json.RawMessage) (processor.Processor, error) {
			return newFakeSink("enc"), nil
		},
	})
	return r
}

func TestLoadGraphFileYAML(t *testing.T) {
	rt := NewRuntime("test", WithRegistry(newGraphFileTestRegistry()))

	data := []byte(`
name: pipeline
processors:
  - alias: cam
    type: fake_source
  - alias: enc
    type: fake_sink
connections:
  - from: cam.out
    to: enc.in
`)
	if err := LoadGraphFile(rt, data, "yaml"); err != nil {
		t.Fatalf("LoadGraphFile: %v", err)
	}

	if n := len(rt.g.Processors()); n != 2 {
		t.Errorf("expected 2 processors after loading, got %d", n)
	}
	if n := len(rt.g.Links()); n != 1 {
		t.Errorf("expected 1 link after loading, got %d", n)
	}
}

func TestLoadGraphFileJSON(t *testing.T) {
	rt := NewRuntime("test", WithRegistry(newGraphFileTestRegistry()))

	data := []byte(`{
		"name": "pipeline",
		"processors": [
			{"alias": "cam", "type": "fake_source"},
			{"alias": "enc", "type": "fake_sink"}
		],
		"connections": [
			{"from": "cam.out", "to": "enc.in"}
		]
	}`)
	if err := LoadGraphFile(rt, data, "json"); err != nil {
		t.Fatalf("LoadGraphFile: %v", err)
	}
	if n := len(rt.g.Links()); n != 1 {
		t.Errorf("expected 1 link after loading, got %d", n)
	}
}

func TestLoadGraphFileUnknownAlias(t *testing.T) {
	rt := NewRuntime("test", WithRegistry(newGraphFileTestRegistry()))
	data := []byte(`
processors:
  - alias: cam
    type: fake_source
connections:
  - from: cam.out
    to: missing.in
`)
	if err := LoadGraphFile(rt, data, "yaml"); err == nil {
		t.Errorf("expected an error referencing an unknown alias")
	}
}

func TestLoadGraphFileDuplicateAlias(t *testing.T) {
	rt := NewRuntime("test", WithRegistry(newGraphFileTestRegistry()))
	data := []byte(`
processors:
  - alias: cam
    type: fake_source
  - alias: cam
    type: fake_source
`)
	if err := LoadGraphFile(rt, data, "yaml"); err == nil {
		t.Errorf("expected an error for a duplicate alias")
	}
}

func TestParsePortRef(t *testing.T) {
	alias, name, err := parsePortRef("cam.out")
	if err != nil || alias != "cam" || name != "out" {
		t.Errorf("parsePortRef(cam.out) == (%q, %q, %v), unexpected", alias, name, err)
	}
	if _, _, err := parsePortRef("invalid"); err == nil {
		t.Errorf("expected an error for a port reference with no dot")
	}
}
