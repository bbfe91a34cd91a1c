// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// OverlayDatabase - uncommitted updates layered over a root store
//
// commits are captured in the overlay and never reach the root;
// Updates returns them so they can be committed elsewhere
type OverlayDatabase struct {
	root    Database
	overlay *DatabaseUpdates
}

// NewOverlayDatabase - overlay with nothing pending
func NewOverlayDatabase(root Database) *OverlayDatabase {
	return &OverlayDatabase{
		root:    root,
		overlay: NewDatabaseUpdates(),
	}
}

// Get - overlay first
// a reset partition never falls through to the root
func (o *OverlayDatabase) Get(partition PartitionKey, sortKey SortKey) ([]byte, bool) {
	p, ok := o.overlay.Lookup(partition)
	if !ok {
		return o.root.Get(partition, sortKey)
	}
	entry, found := p.Entries[string(sortKey)]
	switch {
	case found && !entry.Delete:
		return entry.Value, true
	case found || Reset == p.Kind:
		return nil, false
	}
	return o.root.Get(partition, sortKey)
}

// List - merged view of root and overlay
func (o *OverlayDatabase) List(partition PartitionKey, from SortKey) Iterator {
	p, ok := o.overlay.Lookup(partition)
	if !ok {
		return o.root.List(partition, from)
	}
	if Reset == p.Kind {
		keys := []string{}
		values := [][]byte{}
		for _, k := range p.SortedKeys() {
			if k >= string(from) {
				keys = append(keys, k)
				values = append(values, p.Entries[k].Value)
			}
		}
		return newSliceIterator(keys, values)
	}
	return newOverlayIterator(o.root.List(partition, from), p, from)
}

// Commit - merge into the overlay
func (o *OverlayDatabase) Commit(updates *DatabaseUpdates) error {
	o.overlay.Merge(updates)
	return nil
}

// Updates - everything committed to the overlay so far
func (o *OverlayDatabase) Updates() *DatabaseUpdates {
	return o.overlay
}
