// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// SortKey - key of a substate within its partition
type SortKey []byte

// PartitionKey - a node key and one of its partitions
type PartitionKey struct {
	NodeKey   []byte
	Partition uint8
}

// String - map key form of a partition key
func (p PartitionKey) String() string {
	return string(p.NodeKey) + string([]byte{p.Partition})
}

// Database - read access to substates
//
// backend faults are unrecoverable and panic; a missing substate is
// reported only by the boolean
type Database interface {
	Get(partition PartitionKey, sortKey SortKey) ([]byte, bool)

	// iterate a partition in ascending sort key order starting at
	// from (inclusive, nil for the first entry)
	List(partition PartitionKey, from SortKey) Iterator
}

// Committable - apply a batch of updates atomically
type Committable interface {
	Commit(updates *DatabaseUpdates) error
}

// CommittableDatabase - both read and commit
type CommittableDatabase interface {
	Database
	Committable
}

// Iterator - ascending cursor over a partition
// same shape as a goleveldb iterator
type Iterator interface {
	Next() bool
	Key() SortKey
	Value() []byte
	Release()
	Error() error
}
