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

import "github.com/jfontanez/flowmesh/graph"

// ProcessorConfigChange describes a processor present in both the
// desired and running state whose config checksum has diverged (spec
// §4.2's processors_to_update).
type ProcessorConfigChange struct {
	ID            graph.ProcessorUniqueId
	OldChecksum   uint64
	NewChecksum   uint64
}

// Delta is the set of add/remove/update operations that transform
// running state into desired state (spec §4.2's delta computation
// table and glossary "Delta"). Grounded on
// original_source/libs/streamlib/src/core/compiler/delta.rs's
// GraphDelta, translated from Rust HashSet difference/intersection
// into Go map-based set arithmetic.
type Delta struct {
	ProcessorsToAdd    []graph.ProcessorUniqueId
	ProcessorsToRemove []graph.ProcessorUniqueId
	ProcessorsToUpdate []ProcessorConfigChange
	LinksToAdd         []graph.LinkUniqueId
	LinksToRemove      []graph.LinkUniqueId
}

// IsEmpty reports whether this delta has no changes to apply (mirrors
// GraphDelta::is_empty in the original source).
func (d *Delta) IsEmpty() bool {
	return len(d.ProcessorsToAdd) == 0 &&
		len(d.ProcessorsToRemove) == 0 &&
		len(d.ProcessorsToUpdate) == 0 &&
		len(d.LinksToAdd) == 0 &&
		len(d.LinksToRemove) == 0
}

// ChangeCount returns the total number of changes in this delta.
func (d *Delta) ChangeCount() int {
	return len(d.ProcessorsToAdd) + len(d.ProcessorsToRemove) +
		len(d.ProcessorsToUpdate) + len(d.LinksToAdd) + len(d.LinksToRemove)
}

// computeDelta compares the desired graph's processor/link id sets and
// config checksums against the currently-running ones, per the table
// in spec.md §4.2:
//
//	processors_to_add    = DP \ RP
//	processors_to_remove = RP \ DP
//	processors_to_update = {id ∈ DP ∩ RP : checksum differs}
//	links_to_add         = DL \ WL
//	links_to_remove      = WL \ DL
func computeDelta(
	desiredProcs map[graph.ProcessorUniqueId]bool,
	runningProcs map[graph.ProcessorUniqueId]bool,
	desiredLinks map[graph.LinkUniqueId]bool,
	runningLinks map[graph.LinkUniqueId]bool,
	desiredChecksums map[graph.ProcessorUniqueId]uint64,
	runningChecksums map[graph.ProcessorUniqueId]uint64,
) *Delta {
	d := &Delta{}

	for id := range desiredProcs {
		if !runningProcs[id] {
			d.ProcessorsToAdd = append(d.ProcessorsToAdd, id)
		}
	}
	for id := range runningProcs {
		if !desiredProcs[id] {
			d.ProcessorsToRemove = append(d.ProcessorsToRemove, id)
		}
	}
	for id := range desiredProcs {
		if !runningProcs[id] {
			continue
		}
		oldSum := runningChecksums[id]
		newSum := desiredChecksums[id]
		if oldSum != newSum {
			d.ProcessorsToUpdate = append(d.ProcessorsToUpdate, ProcessorConfigChange{
				ID:          id,
				OldChecksum: oldSum,
				NewChecksum: newSum,
			})
		}
	}

	for id := range desiredLinks {
		if !runningLinks[id] {
			d.LinksToAdd = append(d.LinksToAdd, id)
		}
	}
	for id := range runningLinks {
		if !desiredLinks[id] {
			d.LinksToRemove = append(d.LinksToRemove, id)
		}
	}

	return d
}
