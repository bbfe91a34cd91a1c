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

type trackedSubstate struct {
	value   value.Value
	exists  bool
	written bool
	size    int
}

type trackedPartition struct {
	reset   bool
	entries map[string]*trackedSubstate
}

// Track - buffered view of the store for one transaction
//
// reads are cached; writes are held until Updates is called and are
// discarded with the track on failure
type Track struct {
	db      storage.Database
	nodes   map[identifier.NodeId]map[uint8]*trackedPartition
	created []identifier.NodeId
}

// NewTrack - track over a store
func NewTrack(db storage.Database) *Track {
	return &Track{
		db:    db,
		nodes: make(map[identifier.NodeId]map[uint8]*trackedPartition),
	}
}

func (t *Track) partition(id identifier.NodeId, partition uint8) *trackedPartition {
	node, ok := t.nodes[id]
	if !ok {
		node = make(map[uint8]*trackedPartition)
		t.nodes[id] = node
	}
	p, ok := node[partition]
	if !ok {
		p = &trackedPartition{
			entries: make(map[string]*trackedSubstate),
		}
		node[partition] = p
	}
	return p
}

// get - substate value, loading it from the store on first access
// the returned size is the encoded length, zero when not loaded from the store
func (t *Track) get(id identifier.NodeId, partition uint8, key storage.SortKey) (value.Value, bool, int, error) {
	p := t.partition(id, partition)
	if entry, ok := p.entries[string(key)]; ok {
		return entry.value, entry.exists, entry.size, nil
	}
	entry := &trackedSubstate{}
	p.entries[string(key)] = entry
	if p.reset {
		return nil, false, 0, nil
	}

	data, found := t.db.Get(storage.NewPartitionKey(id, partition), key)
	if !found {
		return nil, false, 0, nil
	}
	v, err := value.Decode(data)
	if nil != err {
		delete(p.entries, string(key))
		return nil, false, 0, err
	}
	entry.value = v
	entry.exists = true
	entry.size = len(data)
	return v, true, len(data), nil
}

func (t *Track) set(id identifier.NodeId, partition uint8, key storage.SortKey, v value.Value) {
	p := t.partition(id, partition)
	p.entries[string(key)] = &trackedSubstate{
		value:   v,
		exists:  true,
		written: true,
	}
}

func (t *Track) delete(id identifier.NodeId, partition uint8, key storage.SortKey) {
	p := t.partition(id, partition)
	p.entries[string(key)] = &trackedSubstate{
		written: true,
	}
}

// list - every existing sort key in ascending order
func (t *Track) list(id identifier.NodeId, partition uint8) ([]storage.SortKey, error) {
	p := t.partition(id, partition)
	keys := make(map[string]struct{})
	if !p.reset {
		found, _, err := storage.Collect(t.db.List(storage.NewPartitionKey(id, partition), nil))
		if nil != err {
			return nil, err
		}
		for _, k := range found {
			keys[string(k)] = struct{}{}
		}
	}
	for k, entry := range p.entries {
		if entry.exists {
			keys[k] = struct{}{}
		} else if entry.written {
			delete(keys, k)
		}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	result := make([]storage.SortKey, len(sorted))
	for i, k := range sorted {
		result[i] = storage.SortKey(k)
	}
	return result, nil
}

// createNode - a new node replaces anything stored at its partitions
func (t *Track) createNode(id identifier.NodeId, substates NodeSubstates) {
	for partition, entries := range substates {
		p := t.partition(id, partition)
		p.reset = true
		p.entries = make(map[string]*trackedSubstate, len(entries))
		for k, v := range entries {
			p.entries[k] = &trackedSubstate{
				value:   v,
				exists:  true,
				written: true,
			}
		}
	}
	t.created = append(t.created, id)
}

// exists - the node has a type info substate
func (t *Track) exists(id identifier.NodeId) (bool, error) {
	_, found, _, err := t.get(id, TypeInfoPartition, Field(0))
	return found, err
}

// NewGlobalNodes - global nodes created by the transaction, in creation order
func (t *Track) NewGlobalNodes() []identifier.NodeId {
	result := []identifier.NodeId{}
	for _, id := range t.created {
		if id.IsGlobal() {
			result = append(result, id)
		}
	}
	return result
}

// Updates - encode every write as store updates
func (t *Track) Updates() (*storage.DatabaseUpdates, error) {
	updates := storage.NewDatabaseUpdates()

	ids := make([]identifier.NodeId, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) < 0
	})

	for _, id := range ids {
		for partition, p := range t.nodes[id] {
			key := storage.NewPartitionKey(id, partition)
			if p.reset {
				values := make(map[string][]byte, len(p.entries))
				for k, entry := range p.entries {
					if !entry.exists {
						continue
					}
					data, err := value.Encode(entry.value)
					if nil != err {
						return nil, err
					}
					values[k] = data
				}
				updates.ResetPartition(key, values)
				continue
			}
			for k, entry := range p.entries {
				if !entry.written {
					continue
				}
				if !entry.exists {
					updates.Delete(key, storage.SortKey(k))
					continue
				}
				data, err := value.Encode(entry.value)
				if nil != err {
					return nil, err
				}
				updates.Set(key, storage.SortKey(k), data)
			}
		}
	}
	return updates, nil
}
