// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier

import (
	"encoding/binary"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
)

// Allocator - deterministic node id source for one transaction
//
// ids are hash(seed || counter) so that replaying the same transaction
// allocates the same ids in the same order
type Allocator struct {
	seed digest.Digest
	next uint32
}

// NewAllocator - seed with the transaction hash
func NewAllocator(seed digest.Digest) *Allocator {
	return &Allocator{seed: seed}
}

// Allocate - next id of the given entity type
func (a *Allocator) Allocate(entity EntityType) (NodeId, error) {
	if ^uint32(0) == a.next {
		return NodeId{}, fault.ErrIdAllocationExhausted
	}
	buffer := make([]byte, digest.Length+4)
	copy(buffer, a.seed[:])
	binary.BigEndian.PutUint32(buffer[digest.Length:], a.next)
	a.next += 1

	h := digest.NewDigest(buffer)
	id := NodeId{}
	id[0] = byte(entity)
	copy(id[1:], h[:NodeIdLength-1])
	return id, nil
}

// Count - number of ids handed out
func (a *Allocator) Count() uint32 {
	return a.next
}
