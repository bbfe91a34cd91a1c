// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
)

// substate address as a map key
type substateAddress string

func addressOf(id identifier.NodeId, partition uint8, key storage.SortKey) substateAddress {
	buffer := make([]byte, 0, identifier.NodeIdLength+1+len(key))
	buffer = append(buffer, id[:]...)
	buffer = append(buffer, partition)
	buffer = append(buffer, key...)
	return substateAddress(buffer)
}

type lockState struct {
	count   int
	mutable bool
}

// lock table shared by every frame and stack
//
// a mutable lock excludes every other lock on the same address
type lockTable struct {
	substates map[substateAddress]*lockState
	nodes     map[identifier.NodeId]int
}

func newLockTable() *lockTable {
	return &lockTable{
		substates: make(map[substateAddress]*lockState),
		nodes:     make(map[identifier.NodeId]int),
	}
}

func (l *lockTable) lock(id identifier.NodeId, address substateAddress, flags LockFlags) error {
	state, ok := l.substates[address]
	if ok && (state.mutable || Mutable == flags) {
		return fault.ErrSubstateLocked
	}
	if !ok {
		state = &lockState{}
		l.substates[address] = state
	}
	state.count += 1
	state.mutable = Mutable == flags
	l.nodes[id] += 1
	return nil
}

func (l *lockTable) unlock(id identifier.NodeId, address substateAddress) {
	state, ok := l.substates[address]
	if !ok {
		return
	}
	state.count -= 1
	if state.count <= 0 {
		delete(l.substates, address)
	}
	l.nodes[id] -= 1
	if l.nodes[id] <= 0 {
		delete(l.nodes, id)
	}
}

func (l *lockTable) isLocked(address substateAddress) bool {
	_, ok := l.substates[address]
	return ok
}

func (l *lockTable) nodeIsLocked(id identifier.NodeId) bool {
	return l.nodes[id] > 0
}
