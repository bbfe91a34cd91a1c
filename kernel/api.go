// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// API - the primitives available to blueprint code
//
// every call acts on the current frame of the current stack
type API interface {
	// nodes
	AllocateNodeId(entity identifier.EntityType) (identifier.NodeId, error)
	CreateNode(id identifier.NodeId, info TypeInfo, substates NodeSubstates) error
	DropNode(id identifier.NodeId) (NodeSubstates, error)
	GetTypeInfo(id identifier.NodeId) (TypeInfo, error)
	AllocateGlobalAddress(blueprint BlueprintId, entity identifier.EntityType) (identifier.NodeId, identifier.NodeId, error)
	Globalize(reservation identifier.NodeId, substates NodeSubstates) (identifier.NodeId, error)

	// substates
	OpenSubstate(id identifier.NodeId, partition uint8, key storage.SortKey, flags LockFlags) (Handle, error)
	ReadSubstate(handle Handle) (value.Value, error)
	WriteSubstate(handle Handle, v value.Value) error
	CloseSubstate(handle Handle) error
	SetSubstate(id identifier.NodeId, partition uint8, key storage.SortKey, v value.Value) error
	RemoveSubstate(id identifier.NodeId, partition uint8, key storage.SortKey) (value.Value, bool, error)
	ScanKeys(id identifier.NodeId, partition uint8) ([]storage.SortKey, error)

	// invocation
	CallFunction(blueprint BlueprintId, function string, args value.Value) (value.Value, error)
	CallMethod(receiver identifier.NodeId, method string, args value.Value) (value.Value, error)
	CallDirectMethod(receiver identifier.NodeId, method string, args value.Value) (value.Value, error)

	// frame
	Actor() Actor
	AuthZone() (identifier.NodeId, bool)
	CallerAuthZone() (identifier.NodeId, bool)
	AttachAuthZone(id identifier.NodeId) error
}
