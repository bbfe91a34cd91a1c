// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manifest

import (
	"sort"

	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// References - the nodes a manifest names directly
type References struct {
	Global       []identifier.NodeId
	DirectAccess []identifier.NodeId
}

// StaticReferences - every reference in the instruction stream, each
// listed once in ascending order
//
// internal nodes can only be reached by direct access
func StaticReferences(instructions []Instruction) References {
	global := make(map[identifier.NodeId]struct{})
	direct := make(map[identifier.NodeId]struct{})
	for _, i := range instructions {
		for _, id := range value.References(InstructionValue(i)) {
			if id.IsGlobal() {
				global[id] = struct{}{}
			} else {
				direct[id] = struct{}{}
			}
		}
	}
	return References{
		Global:       sortedIds(global),
		DirectAccess: sortedIds(direct),
	}
}

func sortedIds(set map[identifier.NodeId]struct{}) []identifier.NodeId {
	ids := make([]identifier.NodeId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) < 0
	})
	return ids
}
