// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
)

// an iterator over pre-sorted entries
type sliceIterator struct {
	keys   []string
	values [][]byte
	index  int
}

func newSliceIterator(keys []string, values [][]byte) *sliceIterator {
	return &sliceIterator{
		keys:   keys,
		values: values,
		index:  -1,
	}
}

func (it *sliceIterator) Next() bool {
	if it.index < len(it.keys) {
		it.index += 1
	}
	return it.index < len(it.keys)
}

func (it *sliceIterator) Key() SortKey {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return SortKey(it.keys[it.index])
}

func (it *sliceIterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

func (it *sliceIterator) Release()     { it.index = len(it.keys) }
func (it *sliceIterator) Error() error { return nil }

// merge a root iterator with a sorted delta, the delta wins on equal
// keys and deleted entries are skipped
type overlayIterator struct {
	root      Iterator
	rootValid bool

	keys    []string
	updates []DatabaseUpdate
	index   int

	key   SortKey
	value []byte
}

func newOverlayIterator(root Iterator, delta *PartitionUpdates, from SortKey) *overlayIterator {
	it := &overlayIterator{root: root}
	for _, k := range delta.SortedKeys() {
		if bytes.Compare([]byte(k), from) >= 0 {
			it.keys = append(it.keys, k)
			it.updates = append(it.updates, delta.Entries[k])
		}
	}
	it.rootValid = root.Next()
	return it
}

func (it *overlayIterator) Next() bool {
	for {
		haveDelta := it.index < len(it.keys)
		if !it.rootValid && !haveDelta {
			it.key = nil
			it.value = nil
			return false
		}

		c := 1
		if it.rootValid && haveDelta {
			c = bytes.Compare(it.root.Key(), []byte(it.keys[it.index]))
		} else if it.rootValid {
			c = -1
		}

		if c < 0 {
			it.key = append(SortKey{}, it.root.Key()...)
			it.value = append([]byte{}, it.root.Value()...)
			it.rootValid = it.root.Next()
			return true
		}

		update := it.updates[it.index]
		k := it.keys[it.index]
		it.index += 1
		if 0 == c {
			it.rootValid = it.root.Next()
		}
		if update.Delete {
			continue
		}
		it.key = SortKey(k)
		it.value = update.Value
		return true
	}
}

func (it *overlayIterator) Key() SortKey  { return it.key }
func (it *overlayIterator) Value() []byte { return it.value }

func (it *overlayIterator) Release() {
	it.root.Release()
	it.rootValid = false
	it.index = len(it.keys)
}

func (it *overlayIterator) Error() error { return it.root.Error() }

// Collect - drain an iterator into key/value pairs, releasing it
func Collect(it Iterator) ([]SortKey, [][]byte, error) {
	defer it.Release()

	keys := []SortKey{}
	values := [][]byte{}
	for it.Next() {
		keys = append(keys, append(SortKey{}, it.Key()...))
		values = append(values, append([]byte{}, it.Value()...))
	}
	return keys, values, it.Error()
}
