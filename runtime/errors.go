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
	"fmt"

	"github.com/jfontanez/flowmesh/graph"
)

// ErrorKind extends graph.ErrorKind with the kinds that only make
// sense at the runtime's public-API boundary (spec §6-7).
type ErrorKind int

// The classified runtime error kinds not already covered by graph.Error.
const (
	ErrNotSupported ErrorKind = iota
	ErrConfiguration
	ErrRuntime
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrNotSupported:
		return "NotSupported"
	case ErrConfiguration:
		return "Configuration"
	case ErrRuntime:
		return "Runtime"
	default:
		return "UnknownRuntimeError"
	}
}

// Error is the public-API error type. It either wraps an underlying
// *graph.Error (GraphError/LinkError/TypeMismatch/InvalidId/
// ProcessorNotFound) or carries one of the runtime-local kinds above.
// Use errors.As to recover either one from a call's returned error.
type Error struct {
	Kind  ErrorKind
	GraphErr *graph.Error
	Msg   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.GraphErr != nil {
		return e.GraphErr.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap lets errors.As/errors.Is see through to the wrapped graph error.
func (e *Error) Unwrap() error {
	if e.GraphErr != nil {
		return e.GraphErr
	}
	return nil
}

func fromGraphErr(err error) error {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*graph.Error); ok {
		return &Error{GraphErr: ge}
	}
	return err
}

func newRuntimeError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
