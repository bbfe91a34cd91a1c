// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"sort"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

// table - manifest ids of one kind mapped to nodes
//
// ids are issued in production order and never reused
type table struct {
	entries map[uint32]identifier.NodeId
	next    uint32
}

func newTable() *table {
	return &table{entries: make(map[uint32]identifier.NodeId)}
}

func (t *table) add(id identifier.NodeId) uint32 {
	n := t.next
	t.entries[n] = id
	t.next += 1
	return n
}

func (t *table) get(n uint32, missing func(uint32) error) (identifier.NodeId, error) {
	id, ok := t.entries[n]
	if !ok {
		return identifier.NodeId{}, missing(n)
	}
	return id, nil
}

// take - resolve and consume
func (t *table) take(n uint32, missing func(uint32) error) (identifier.NodeId, error) {
	id, err := t.get(n, missing)
	if nil == err {
		delete(t.entries, n)
	}
	return id, err
}

// drain - consume everything in id order
func (t *table) drain() []identifier.NodeId {
	keys := make([]int, 0, len(t.entries))
	for n := range t.entries {
		keys = append(keys, int(n))
	}
	sort.Ints(keys)
	ids := make([]identifier.NodeId, 0, len(keys))
	for _, n := range keys {
		ids = append(ids, t.entries[uint32(n)])
		delete(t.entries, uint32(n))
	}
	return ids
}

// objects - the identifier mapping of one intent
type objects struct {
	buckets      *table
	proofs       *table
	reservations *table
	addresses    *table
}

func newObjects() *objects {
	return &objects{
		buckets:      newTable(),
		proofs:       newTable(),
		reservations: newTable(),
		addresses:    newTable(),
	}
}

func (o *objects) takeBucket(n uint32) (identifier.NodeId, error) {
	return o.buckets.take(n, fault.BucketNotFound)
}

func (o *objects) bucket(n uint32) (identifier.NodeId, error) {
	return o.buckets.get(n, fault.BucketNotFound)
}

func (o *objects) takeProof(n uint32) (identifier.NodeId, error) {
	return o.proofs.take(n, fault.ProofNotFound)
}

func (o *objects) proof(n uint32) (identifier.NodeId, error) {
	return o.proofs.get(n, fault.ProofNotFound)
}

func (o *objects) takeReservation(n uint32) (identifier.NodeId, error) {
	return o.reservations.take(n, fault.AddressReservationNotFound)
}

// named addresses stay resolvable for the whole intent
func (o *objects) address(n uint32) (identifier.NodeId, error) {
	return o.addresses.get(n, fault.AddressNotFound)
}
