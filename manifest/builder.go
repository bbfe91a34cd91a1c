// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manifest

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// Builder - assembles a manifest, numbering the ids each instruction
// produces the same way execution will
type Builder struct {
	m            Manifest
	buckets      uint32
	proofs       uint32
	reservations uint32
}

// NewBuilder - empty manifest
func NewBuilder() *Builder {
	return &Builder{}
}

// Add - append any instruction
func (b *Builder) Add(i Instruction) *Builder {
	b.m.Instructions = append(b.m.Instructions, i)
	switch i.Opcode() {
	case OpTakeFromWorktop, OpTakeNonFungiblesFromWorktop, OpTakeAllFromWorktop:
		b.buckets += 1
	case OpPopFromAuthZone,
		OpCreateProofFromAuthZoneOfAmount,
		OpCreateProofFromAuthZoneOfNonFungibles,
		OpCreateProofFromAuthZoneOfAll,
		OpCreateProofFromBucketOfAmount,
		OpCreateProofFromBucketOfNonFungibles,
		OpCreateProofFromBucketOfAll,
		OpCloneProof:
		b.proofs += 1
	case OpAllocateGlobalAddress:
		b.reservations += 1
	}
	return b
}

// TakeFromWorktop - returns the new bucket's id
func (b *Builder) TakeFromWorktop(resource identifier.NodeId, amount decimal.Decimal) value.Bucket {
	id := value.Bucket(b.buckets)
	b.Add(TakeFromWorktop{Resource: resource, Amount: amount})
	return id
}

// TakeNonFungiblesFromWorktop - returns the new bucket's id
func (b *Builder) TakeNonFungiblesFromWorktop(resource identifier.NodeId, ids []identifier.LocalId) value.Bucket {
	id := value.Bucket(b.buckets)
	b.Add(TakeNonFungiblesFromWorktop{Resource: resource, Ids: ids})
	return id
}

// TakeAllFromWorktop - returns the new bucket's id
func (b *Builder) TakeAllFromWorktop(resource identifier.NodeId) value.Bucket {
	id := value.Bucket(b.buckets)
	b.Add(TakeAllFromWorktop{Resource: resource})
	return id
}

// PopFromAuthZone - returns the new proof's id
func (b *Builder) PopFromAuthZone() value.Proof {
	id := value.Proof(b.proofs)
	b.Add(PopFromAuthZone{})
	return id
}

// CreateProofFromAuthZoneOfAmount - returns the new proof's id
func (b *Builder) CreateProofFromAuthZoneOfAmount(resource identifier.NodeId, amount decimal.Decimal) value.Proof {
	id := value.Proof(b.proofs)
	b.Add(CreateProofFromAuthZoneOfAmount{Resource: resource, Amount: amount})
	return id
}

// CreateProofFromBucketOfAmount - returns the new proof's id
func (b *Builder) CreateProofFromBucketOfAmount(bucket value.Bucket, amount decimal.Decimal) value.Proof {
	id := value.Proof(b.proofs)
	b.Add(CreateProofFromBucketOfAmount{Bucket: bucket, Amount: amount})
	return id
}

// CreateProofFromBucketOfAll - returns the new proof's id
func (b *Builder) CreateProofFromBucketOfAll(bucket value.Bucket) value.Proof {
	id := value.Proof(b.proofs)
	b.Add(CreateProofFromBucketOfAll{Bucket: bucket})
	return id
}

// CloneProof - returns the clone's id
func (b *Builder) CloneProof(proof value.Proof) value.Proof {
	id := value.Proof(b.proofs)
	b.Add(CloneProof{Proof: proof})
	return id
}

// AllocateGlobalAddress - returns the reservation and the named address
func (b *Builder) AllocateGlobalAddress(pkg identifier.NodeId, blueprint string) (value.AddressReservation, value.NamedAddress) {
	reservation := value.AddressReservation(b.reservations)
	named := value.NamedAddress(b.reservations)
	b.Add(AllocateGlobalAddress{Package: pkg, Blueprint: blueprint})
	return reservation, named
}

// Blob - attach a blob and return its reference
func (b *Builder) Blob(data []byte) value.Blob {
	b.m.Blobs = append(b.m.Blobs, data)
	return value.Blob(BlobHash(data))
}

// Build - the manifest so far
func (b *Builder) Build() Manifest {
	return b.m
}
