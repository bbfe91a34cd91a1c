// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sort"
	"sync"
)

// MemoryDatabase - in-memory substate store
type MemoryDatabase struct {
	sync.RWMutex
	partitions map[string]map[string][]byte
}

// NewMemoryDatabase - empty store
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		partitions: make(map[string]map[string][]byte),
	}
}

// Get - read a substate
func (m *MemoryDatabase) Get(partition PartitionKey, sortKey SortKey) ([]byte, bool) {
	m.RLock()
	defer m.RUnlock()

	p, ok := m.partitions[partition.String()]
	if !ok {
		return nil, false
	}
	v, ok := p[string(sortKey)]
	return v, ok
}

// List - snapshot iterator over a partition
func (m *MemoryDatabase) List(partition PartitionKey, from SortKey) Iterator {
	m.RLock()
	defer m.RUnlock()

	p := m.partitions[partition.String()]
	keys := make([]string, 0, len(p))
	for k := range p {
		if k >= string(from) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = p[k]
	}
	return newSliceIterator(keys, values)
}

// Commit - apply updates
func (m *MemoryDatabase) Commit(updates *DatabaseUpdates) error {
	m.Lock()
	defer m.Unlock()

	for nodeKey, node := range updates.Nodes {
		for partition, p := range node.Partitions {
			key := PartitionKey{NodeKey: []byte(nodeKey), Partition: partition}.String()
			current, ok := m.partitions[key]
			if !ok || Reset == p.Kind {
				current = make(map[string][]byte)
				m.partitions[key] = current
			}
			for k, entry := range p.Entries {
				if entry.Delete {
					delete(current, k)
				} else {
					current[k] = entry.Value
				}
			}
			if 0 == len(current) {
				delete(m.partitions, key)
			}
		}
	}
	return nil
}
