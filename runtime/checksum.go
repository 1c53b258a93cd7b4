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
	"hash/fnv"
)

// configChecksum is a stable hash of the canonicalised serialised
// config (spec §4.2, §9). json.Marshal on a decoded value produces a
// deterministic key order for map[string]interface{} (encoding/json
// sorts map keys), which is the canonicalisation this package relies
// on; see DESIGN.md for why no third-party hashing library is used
// here instead of hash/fnv.
func configChecksum(config interface{}) uint64 {
	data, err := json.Marshal(config)
	if err != nil {
		// A config value that can't be marshalled (e.g. it embeds a
		// channel or a func) degrades to a constant checksum rather
		// than panicking; such configs never trigger a checksum-based
		// update, which callers should avoid by keeping Config plain
		// data.
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
