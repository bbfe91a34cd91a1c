// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier

import (
	"bytes"

	"github.com/mr-tron/base58"

	"github.com/bitmark-inc/substated/fault"
)

// NodeIdLength - fixed width of every node id
const NodeIdLength = 30

// NodeId - opaque identifier of a node
// byte 0 is the entity type
type NodeId [NodeIdLength]byte

// well known global addresses
var (
	ResourcePackage             = wellKnown(EntityGlobalPackage, 1)
	Ed25519SignatureResource    = wellKnown(EntityGlobalNonFungibleResource, 1)
	TransactionProcessorPackage = wellKnown(EntityGlobalPackage, 2)
	AccountPackage              = wellKnown(EntityGlobalPackage, 3)
	ConsensusManagerPackage     = wellKnown(EntityGlobalPackage, 4)
	ConsensusManager            = wellKnown(EntityGlobalComponent, 1)
	SystemExecutionResource     = wellKnown(EntityGlobalNonFungibleResource, 2)
	TransactionTracker          = wellKnown(EntityInternalKeyValueStore, 1)
)

func wellKnown(entity EntityType, n byte) NodeId {
	id := NodeId{}
	id[0] = byte(entity)
	id[NodeIdLength-1] = n
	return id
}

// NewNodeId - id from bytes
func NewNodeId(buffer []byte) (NodeId, error) {
	id := NodeId{}
	if NodeIdLength != len(buffer) || !EntityType(buffer[0]).IsValid() {
		return id, fault.ErrInvalidNodeId
	}
	copy(id[:], buffer)
	return id, nil
}

// EntityType - the kind of node
func (id NodeId) EntityType() EntityType {
	return EntityType(id[0])
}

// IsGlobal - permanently addressable
func (id NodeId) IsGlobal() bool {
	return id.EntityType().IsGlobal()
}

// IsZero - unset id
func (id NodeId) IsZero() bool {
	return id == NodeId{}
}

// Bytes - copy of the raw id
func (id NodeId) Bytes() []byte {
	return append([]byte{}, id[:]...)
}

// Compare - byte order
func (id NodeId) Compare(other NodeId) int {
	return bytes.Compare(id[:], other[:])
}

// String - base58 text
func (id NodeId) String() string {
	return base58.Encode(id[:])
}

// GoString - for %#v
func (id NodeId) GoString() string {
	return "<" + id.EntityType().String() + ":" + id.String() + ">"
}

// ParseNodeId - from base58 text
func ParseNodeId(s string) (NodeId, error) {
	buffer, err := base58.Decode(s)
	if nil != err {
		return NodeId{}, fault.ErrInvalidNodeId
	}
	return NewNodeId(buffer)
}

// MarshalText - base58 text
func (id NodeId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - from base58 text
func (id *NodeId) UnmarshalText(s []byte) error {
	n, err := ParseNodeId(string(s))
	if nil != err {
		return err
	}
	*id = n
	return nil
}
