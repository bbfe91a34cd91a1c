// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

// SpreadPrefixLength - hash bytes in front of every node key
// so that sequentially allocated ids do not cluster in the keyspace
const SpreadPrefixLength = 20

// NodeKey - database key of a node
func NodeKey(id identifier.NodeId) []byte {
	h := digest.NewDigest(id[:])
	key := make([]byte, 0, SpreadPrefixLength+identifier.NodeIdLength)
	key = append(key, h[:SpreadPrefixLength]...)
	return append(key, id[:]...)
}

// NodeIdFromKey - recover and verify the node id of a database key
func NodeIdFromKey(key []byte) (identifier.NodeId, error) {
	if SpreadPrefixLength+identifier.NodeIdLength != len(key) {
		return identifier.NodeId{}, fault.ErrInvalidNodeId
	}
	id, err := identifier.NewNodeId(key[SpreadPrefixLength:])
	if nil != err {
		return id, err
	}
	if !bytes.Equal(NodeKey(id), key) {
		return identifier.NodeId{}, fault.ErrInvalidNodeId
	}
	return id, nil
}

// NewPartitionKey - partition key of a node
func NewPartitionKey(id identifier.NodeId, partition uint8) PartitionKey {
	return PartitionKey{
		NodeKey:   NodeKey(id),
		Partition: partition,
	}
}
