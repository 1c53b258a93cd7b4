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
	"sync"

	"github.com/jfontanez/flowmesh/graph"
)

// OperationKind classifies one entry in the transaction log.
type OperationKind int

// The mutation kinds that get logged.
const (
	OpAddProcessor OperationKind = iota
	OpRemoveProcessor
	OpAddLink
	OpRemoveLink
	OpUpdateConfig
)

// PendingOperation is one logged mutation, appended by every
// graph-mutating call on Runtime (spec §4.2's "Transaction log").
type PendingOperation struct {
	Kind        OperationKind
	ProcessorID graph.ProcessorUniqueId
	LinkID      graph.LinkUniqueId
}

// txLog is an in-memory log of pending operations, drained at the
// start of every commit (spec §4.2's "switching to Auto drains any
// accumulated pending operations" applies equally to a Manual-mode
// Commit() call). The actual reconciliation logic in compile.go still
// derives its delta directly from current graph/running-state set
// membership rather than replaying the log, since that set-arithmetic
// view is equivalent and does not require the log to be exhaustive or
// ordered; the log itself exists for introspection
// (PendingOperationCount) and is cleared once its entries are about to
// be committed. See DESIGN.md for this design decision.
type txLog struct {
	mu  sync.Mutex
	ops []PendingOperation
}

func newTxLog() *txLog { return &txLog{} }

func (t *txLog) append(op PendingOperation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = append(t.ops, op)
}

// drain returns every logged operation since the last drain and clears
// the log.
func (t *txLog) drain() []PendingOperation {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := t.ops
	t.ops = nil
	return ops
}

// len reports how many operations are currently pending.
func (t *txLog) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

// CommitMode selects whether mutations drive a commit synchronously
// (Auto) or only when explicitly requested (Manual). See spec §4.2.
type CommitMode int

// The two commit modes.
const (
	CommitManual CommitMode = iota
	CommitAuto
)

// String implements fmt.Stringer.
func (m CommitMode) String() string {
	if m == CommitAuto {
		return "Auto"
	}
	return "Manual"
}
