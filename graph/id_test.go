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

package graph

import "testing"

func TestNewProcessorUniqueIdRejectsEmpty(t *testing.T) {
	if _, err := NewProcessorUniqueId(""); err == nil {
		t.Errorf("expected an error for an empty id")
	}
}

func TestNewProcessorUniqueIdRejectsDisallowedChars(t *testing.T) {
	if _, err := NewProcessorUniqueId("bad id!"); err == nil {
		t.Errorf("expected an error for a disallowed character")
	}
}

func TestNewProcessorUniqueIdAccepts(t *testing.T) {
	id, err := NewProcessorUniqueId("camera_source-1.primary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "camera_source-1.primary" {
		t.Errorf("String() == %q, unexpected", id.String())
	}
	if id.IsZero() {
		t.Errorf("a validly constructed id must not be zero")
	}
}

func TestProcessorUniqueIdZeroValue(t *testing.T) {
	var id ProcessorUniqueId
	if !id.IsZero() {
		t.Errorf("expected the zero value to report IsZero() == true")
	}
}

func TestNewGeneratedProcessorUniqueIdIsUnique(t *testing.T) {
	a := NewGeneratedProcessorUniqueId("camera_source")
	b := NewGeneratedProcessorUniqueId("camera_source")
	if a == b {
		t.Errorf("expected two generated ids to differ")
	}
}

func TestNewGeneratedLinkUniqueIdForm(t *testing.T) {
	src, _ := NewProcessorUniqueId("cam")
	dst, _ := NewProcessorUniqueId("enc")
	from := PortAddress{ProcessorID: src, PortName: "out"}
	to := PortAddress{ProcessorID: dst, PortName: "in"}

	id := NewGeneratedLinkUniqueId(from, to)
	if id.String() != "cam.out>enc.in" {
		t.Errorf("String() == %q, expected %q", id.String(), "cam.out>enc.in")
	}
}

func TestPortTypeString(t *testing.T) {
	if PortTypeVideo.String() != "Video" {
		t.Errorf("PortTypeVideo.String() == %q, expected %q", PortTypeVideo.String(), "Video")
	}
	if PortType(99).String() != "Unknown" {
		t.Errorf("an unrecognized PortType must stringify to %q", "Unknown")
	}
}
