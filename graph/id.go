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

// Package graph contains the processor/link property graph: the typed
// vertex and edge identifiers, the component store, and the traversal
// API used by the runtime's compiler.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// idChars are the permitted characters inside a ProcessorUniqueId or a
// LinkUniqueId, beyond alphanumerics. The arrow and colon forms let the
// compiler auto-generate hierarchical ids like `src.out>dst.in`.
const idChars = "_-.>:"

// validateID implements the shared construction discipline for both id
// types: non-empty, and every rune either alphanumeric or in idChars.
func validateID(kind, s string) error {
	if s == "" {
		return fmt.Errorf("%s: empty id is not permitted", kind)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune(idChars, r):
		default:
			return fmt.Errorf("%s: id %q contains disallowed character %q", kind, s, r)
		}
	}
	return nil
}

// ProcessorUniqueId is a validated, opaque handle identifying one
// processor vertex. It is a distinct nominal type from LinkUniqueId so
// the two can never be mixed up at a call site even though both wrap
// the same validated-string discipline.
type ProcessorUniqueId struct {
	s string
}

// NewProcessorUniqueId validates and constructs a ProcessorUniqueId.
func NewProcessorUniqueId(s string) (ProcessorUniqueId, error) {
	if err := validateID("ProcessorUniqueId", s); err != nil {
		return ProcessorUniqueId{}, err
	}
	return ProcessorUniqueId{s: s}, nil
}

// NewGeneratedProcessorUniqueId builds a fresh id with a uuid suffix,
// used when the caller does not supply one of their own.
func NewGeneratedProcessorUniqueId(prefix string) ProcessorUniqueId {
	s := fmt.Sprintf("%s.%s", prefix, uuid.NewString())
	id, err := NewProcessorUniqueId(s)
	if err != nil {
		// uuid.NewString and prefix are both under our control; a
		// validation failure here is a programming error, not user
		// input, so there is nothing sane to return but a panic.
		panic(err)
	}
	return id
}

// String implements fmt.Stringer.
func (id ProcessorUniqueId) String() string { return id.s }

// IsZero reports whether this is the zero value (never produced by the
// constructors above, useful as a "not set" sentinel).
func (id ProcessorUniqueId) IsZero() bool { return id.s == "" }

// LinkUniqueId is a validated, opaque handle identifying one link edge.
type LinkUniqueId struct {
	s string
}

// NewLinkUniqueId validates and constructs a LinkUniqueId.
func NewLinkUniqueId(s string) (LinkUniqueId, error) {
	if err := validateID("LinkUniqueId", s); err != nil {
		return LinkUniqueId{}, err
	}
	return LinkUniqueId{s: s}, nil
}

// NewGeneratedLinkUniqueId builds the canonical `src.port>dst.port`
// form for a link between two port addresses.
func NewGeneratedLinkUniqueId(from, to PortAddress) LinkUniqueId {
	s := fmt.Sprintf("%s.%s>%s.%s", from.ProcessorID, from.PortName, to.ProcessorID, to.PortName)
	id, err := NewLinkUniqueId(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String implements fmt.Stringer.
func (id LinkUniqueId) String() string { return id.s }

// IsZero reports whether this is the zero value.
func (id LinkUniqueId) IsZero() bool { return id.s == "" }

// PortAddress is the endpoint of a link: a processor id plus the name
// of one of its declared ports.
type PortAddress struct {
	ProcessorID ProcessorUniqueId
	PortName    string
}

// String implements fmt.Stringer.
func (p PortAddress) String() string {
	return fmt.Sprintf("%s.%s", p.ProcessorID, p.PortName)
}

// PortType tags the message kind a port carries, for validation and
// introspection only; the transport itself is monomorphic per link.
type PortType int

// The enumerated port types named by the specification.
const (
	PortTypeUnknown PortType = iota
	PortTypeVideo
	PortTypeData
	PortTypeAudio1
	PortTypeAudio2
	PortTypeAudio4
	PortTypeAudio6
	PortTypeAudio8
)

// String implements fmt.Stringer.
func (t PortType) String() string {
	switch t {
	case PortTypeVideo:
		return "Video"
	case PortTypeData:
		return "Data"
	case PortTypeAudio1:
		return "Audio-1"
	case PortTypeAudio2:
		return "Audio-2"
	case PortTypeAudio4:
		return "Audio-4"
	case PortTypeAudio6:
		return "Audio-6"
	case PortTypeAudio8:
		return "Audio-8"
	default:
		return "Unknown"
	}
}
