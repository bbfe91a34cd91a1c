// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"sort"

	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// transient nodes; never written to the store
type heap struct {
	nodes map[identifier.NodeId]NodeSubstates
}

func newHeap() *heap {
	return &heap{
		nodes: make(map[identifier.NodeId]NodeSubstates),
	}
}

func (h *heap) contains(id identifier.NodeId) bool {
	_, ok := h.nodes[id]
	return ok
}

func (h *heap) create(id identifier.NodeId, substates NodeSubstates) {
	h.nodes[id] = substates
}

func (h *heap) get(id identifier.NodeId, partition uint8, key storage.SortKey) (value.Value, bool) {
	node, ok := h.nodes[id]
	if !ok {
		return nil, false
	}
	return node.Get(partition, key)
}

func (h *heap) set(id identifier.NodeId, partition uint8, key storage.SortKey, v value.Value) {
	h.nodes[id].Set(partition, key, v)
}

func (h *heap) delete(id identifier.NodeId, partition uint8, key storage.SortKey) {
	if p, ok := h.nodes[id][partition]; ok {
		delete(p, string(key))
	}
}

// sort keys of a partition in ascending order
func (h *heap) list(id identifier.NodeId, partition uint8) []storage.SortKey {
	p := h.nodes[id][partition]
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]storage.SortKey, len(keys))
	for i, k := range keys {
		result[i] = storage.SortKey(k)
	}
	return result
}

func (h *heap) remove(id identifier.NodeId) NodeSubstates {
	node := h.nodes[id]
	delete(h.nodes, id)
	return node
}

func (h *heap) count() int {
	return len(h.nodes)
}
