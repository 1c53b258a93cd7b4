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

import "fmt"

// ErrorKind classifies a graph-level failure per the error taxonomy.
type ErrorKind int

// The classified error kinds named by the specification.
const (
	ErrGraph ErrorKind = iota
	ErrLink
	ErrTypeMismatch
	ErrInvalidId
	ErrProcessorNotFound
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrGraph:
		return "GraphError"
	case ErrLink:
		return "LinkError"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrInvalidId:
		return "InvalidId"
	case ErrProcessorNotFound:
		return "ProcessorNotFound"
	default:
		return "UnknownGraphError"
	}
}

// Error is the graph package's classified error type. Callers that need
// to branch on the kind should use errors.As against *Error.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// newError builds a classified *Error with a formatted message.
func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
