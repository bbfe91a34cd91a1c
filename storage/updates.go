// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sort"
)

// UpdateKind - how a partition is updated
type UpdateKind int

// update kinds
const (
	Delta UpdateKind = iota
	Reset
)

// DatabaseUpdate - one substate change within a delta
type DatabaseUpdate struct {
	Delete bool
	Value  []byte
}

// PartitionUpdates - either individual changes (Delta) or the complete
// new contents of the partition (Reset)
//
// for a Reset every entry is a set; the old contents are discarded
type PartitionUpdates struct {
	Kind    UpdateKind
	Entries map[string]DatabaseUpdate
}

// NodeUpdates - partition updates of one node
type NodeUpdates struct {
	Partitions map[uint8]*PartitionUpdates
}

// DatabaseUpdates - everything a transaction changes
type DatabaseUpdates struct {
	Nodes map[string]*NodeUpdates
}

// NewDatabaseUpdates - empty set of updates
func NewDatabaseUpdates() *DatabaseUpdates {
	return &DatabaseUpdates{
		Nodes: make(map[string]*NodeUpdates),
	}
}

func newPartitionUpdates(kind UpdateKind) *PartitionUpdates {
	return &PartitionUpdates{
		Kind:    kind,
		Entries: make(map[string]DatabaseUpdate),
	}
}

func (u *DatabaseUpdates) partition(key PartitionKey, kind UpdateKind) *PartitionUpdates {
	n, ok := u.Nodes[string(key.NodeKey)]
	if !ok {
		n = &NodeUpdates{Partitions: make(map[uint8]*PartitionUpdates)}
		u.Nodes[string(key.NodeKey)] = n
	}
	p, ok := n.Partitions[key.Partition]
	if !ok {
		p = newPartitionUpdates(kind)
		n.Partitions[key.Partition] = p
	}
	return p
}

// Lookup - the updates recorded for a partition, if any
func (u *DatabaseUpdates) Lookup(key PartitionKey) (*PartitionUpdates, bool) {
	n, ok := u.Nodes[string(key.NodeKey)]
	if !ok {
		return nil, false
	}
	p, ok := n.Partitions[key.Partition]
	return p, ok
}

// Set - record a substate value
func (u *DatabaseUpdates) Set(key PartitionKey, sortKey SortKey, value []byte) {
	p := u.partition(key, Delta)
	p.Entries[string(sortKey)] = DatabaseUpdate{Value: value}
}

// Delete - record a substate removal
func (u *DatabaseUpdates) Delete(key PartitionKey, sortKey SortKey) {
	p := u.partition(key, Delta)
	if Reset == p.Kind {
		delete(p.Entries, string(sortKey))
		return
	}
	p.Entries[string(sortKey)] = DatabaseUpdate{Delete: true}
}

// ResetPartition - replace the whole partition
func (u *DatabaseUpdates) ResetPartition(key PartitionKey, values map[string][]byte) {
	p := newPartitionUpdates(Reset)
	for k, v := range values {
		p.Entries[k] = DatabaseUpdate{Value: v}
	}
	u.partition(key, Reset)
	u.Nodes[string(key.NodeKey)].Partitions[key.Partition] = p
}

// IsEmpty - nothing recorded
func (u *DatabaseUpdates) IsEmpty() bool {
	return 0 == len(u.Nodes)
}

// Merge - fold later updates into these
//
//   any   + Reset  -> the reset replaces
//   Delta + Delta  -> extended, later entries win
//   Reset + Delta  -> the delta is applied to the reset values
func (u *DatabaseUpdates) Merge(later *DatabaseUpdates) {
	for nodeKey, node := range later.Nodes {
		for partition, p := range node.Partitions {
			key := PartitionKey{NodeKey: []byte(nodeKey), Partition: partition}
			if Reset == p.Kind {
				u.ResetPartition(key, p.values())
				continue
			}
			existing := u.partition(key, Delta)
			for k, entry := range p.Entries {
				if Reset == existing.Kind && entry.Delete {
					delete(existing.Entries, k)
				} else {
					existing.Entries[k] = entry
				}
			}
		}
	}
}

// values of a reset partition
func (p *PartitionUpdates) values() map[string][]byte {
	values := make(map[string][]byte, len(p.Entries))
	for k, entry := range p.Entries {
		if !entry.Delete {
			values[k] = entry.Value
		}
	}
	return values
}

// SortedKeys - entry keys in ascending order
func (p *PartitionUpdates) SortedKeys() []string {
	keys := make([]string, 0, len(p.Entries))
	for k := range p.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubstateCount - number of substate changes recorded
func (u *DatabaseUpdates) SubstateCount() int {
	n := 0
	for _, node := range u.Nodes {
		for _, p := range node.Partitions {
			n += len(p.Entries)
		}
	}
	return n
}
