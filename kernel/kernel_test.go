// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

func TestCreateAndDropNode(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})

	id, err := newBox(k, value.U32(7))
	assert.Nil(t, err, "create error")
	assert.Equal(t, []identifier.NodeId{id}, k.Owned(), "not owned by root")
	assert.Equal(t, 1, k.HeapSize(), "wrong heap size")

	info, err := k.GetTypeInfo(id)
	assert.Nil(t, err, "type info error")
	assert.True(t, info.Is(boxBlueprint), "wrong blueprint")

	err = k.CreateNode(id, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, nil)
	assert.ErrorIs(t, err, fault.ErrNodeExists, "duplicate create")

	substates, err := k.DropNode(id)
	assert.Nil(t, err, "drop error")
	v, ok := substates.Get(kernel.MainPartition, kernel.Field(0))
	assert.True(t, ok, "missing field")
	assert.Equal(t, value.U32(7), v, "wrong field value")
	_, ok = substates[kernel.TypeInfoPartition]
	assert.False(t, ok, "type info returned")

	assert.Equal(t, 0, k.HeapSize(), "heap not empty")
	assert.Empty(t, k.Owned(), "still owned")

	_, err = k.DropNode(id)
	assert.ErrorIs(t, err, fault.ErrNodeNotOwned, "second drop")
}

func TestCreateNodeReservedPartition(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	id, err := k.AllocateNodeId(identifier.EntityInternalComponent)
	assert.Nil(t, err, "allocate error")

	substates := kernel.Fields(value.Unit())
	substates.Set(kernel.TypeInfoPartition, kernel.Field(1), value.Unit())
	err = k.CreateNode(id, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, substates)
	assert.ErrorIs(t, err, fault.ErrReservedPartition, "type info partition accepted")

	err = k.SetSubstate(id, kernel.TypeInfoPartition, kernel.Field(0), value.Unit())
	assert.ErrorIs(t, err, fault.ErrReservedPartition, "type info write accepted")
}

func TestCreateNodeRejectsManifestValues(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	_, err := newBox(k, value.Bucket(1))
	assert.Error(t, err, "manifest value stored")
}

func TestLockDiscipline(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	id, err := newBox(k, value.U32(1))
	assert.Nil(t, err, "create error")

	h1, err := k.OpenSubstate(id, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.Nil(t, err, "first read lock")
	h2, err := k.OpenSubstate(id, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.Nil(t, err, "second read lock")

	_, err = k.OpenSubstate(id, kernel.MainPartition, kernel.Field(0), kernel.Mutable)
	assert.ErrorIs(t, err, fault.ErrSubstateLocked, "mutable lock over read locks")

	err = k.WriteSubstate(h1, value.U32(2))
	assert.ErrorIs(t, err, fault.ErrHandleNotMutable, "write through read handle")

	err = k.SetSubstate(id, kernel.MainPartition, kernel.Field(0), value.U32(2))
	assert.ErrorIs(t, err, fault.ErrSubstateLocked, "set on locked substate")

	_, err = k.DropNode(id)
	assert.ErrorIs(t, err, fault.ErrNodeLocked, "drop of locked node")

	assert.Nil(t, k.CloseSubstate(h1), "close h1")
	assert.Nil(t, k.CloseSubstate(h2), "close h2")
	assert.ErrorIs(t, k.CloseSubstate(h2), fault.ErrHandleNotFound, "double close")

	h3, err := k.OpenSubstate(id, kernel.MainPartition, kernel.Field(0), kernel.Mutable)
	assert.Nil(t, err, "mutable lock")
	_, err = k.OpenSubstate(id, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.ErrorIs(t, err, fault.ErrSubstateLocked, "read lock over mutable lock")

	// other fields are independent
	h4, err := k.OpenSubstate(id, kernel.MainPartition, kernel.Field(1), kernel.Mutable)
	assert.Nil(t, err, "second field lock")
	assert.Nil(t, k.WriteSubstate(h4, value.String("extra")), "write second field")
	assert.Nil(t, k.CloseSubstate(h4), "close h4")

	assert.Nil(t, k.WriteSubstate(h3, value.U32(2)), "write")
	v, err := k.ReadSubstate(h3)
	assert.Nil(t, err, "read")
	assert.Equal(t, value.U32(2), v, "value not written")
	assert.Nil(t, k.CloseSubstate(h3), "close h3")

	keys, err := k.ScanKeys(id, kernel.MainPartition)
	assert.Nil(t, err, "scan error")
	assert.Equal(t, []storage.SortKey{kernel.Field(0), kernel.Field(1)}, keys, "wrong keys")

	_, err = k.DropNode(id)
	assert.Nil(t, err, "drop after close")
}

func TestMoveIntoNode(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	child, err := newBox(k, value.U32(1))
	assert.Nil(t, err, "child error")
	parent, err := newBox(k, value.Own(child))
	assert.Nil(t, err, "parent error")

	assert.Equal(t, []identifier.NodeId{parent}, k.Owned(), "child still owned by frame")

	_, err = k.DropNode(child)
	assert.ErrorIs(t, err, fault.ErrNodeNotOwned, "dropped a child node")

	_, err = newBox(k, value.Own(child))
	assert.ErrorIs(t, err, fault.ErrNodeNotOwned, "moved a node twice")

	substates, err := k.DropNode(parent)
	assert.Nil(t, err, "drop parent")
	v, _ := substates.Get(kernel.MainPartition, kernel.Field(0))
	assert.Equal(t, value.Own(child), v, "wrong contents")
	assert.Equal(t, []identifier.NodeId{child}, k.Owned(), "child not returned to frame")

	_, err = k.DropNode(child)
	assert.Nil(t, err, "drop child")
}

func TestRemoveSubstateReturnsOwnership(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	child, err := newBox(k, value.Unit())
	assert.Nil(t, err, "child error")
	parent, err := newBox(k, value.Unit())
	assert.Nil(t, err, "parent error")

	err = k.SetSubstate(parent, kernel.MainPartition, kernel.Field(3), value.Own(child))
	assert.Nil(t, err, "set error")
	assert.Equal(t, []identifier.NodeId{parent}, k.Owned(), "child not moved")

	v, found, err := k.RemoveSubstate(parent, kernel.MainPartition, kernel.Field(3))
	assert.Nil(t, err, "remove error")
	assert.True(t, found, "not found")
	assert.Equal(t, value.Own(child), v, "wrong removed value")
	assert.ElementsMatch(t, []identifier.NodeId{parent, child}, k.Owned(), "child not returned")

	_, found, err = k.RemoveSubstate(parent, kernel.MainPartition, kernel.Field(3))
	assert.Nil(t, err, "second remove error")
	assert.False(t, found, "removed twice")
}

func TestNodeCannotOwnItself(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	id, err := newBox(k, value.Unit())
	assert.Nil(t, err, "create error")

	err = k.SetSubstate(id, kernel.MainPartition, kernel.Field(0), value.Own(id))
	assert.ErrorIs(t, err, fault.ErrInvalidReference, "self ownership")
}

func TestBorrowedVisibility(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	child, err := newBox(k, value.U32(5))
	assert.Nil(t, err, "child error")
	parent, err := newBox(k, value.Own(child))
	assert.Nil(t, err, "parent error")

	_, err = k.OpenSubstate(child, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.ErrorIs(t, err, fault.ErrNodeNotVisible, "child visible without borrow")

	h, err := k.OpenSubstate(parent, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.Nil(t, err, "open parent")
	_, err = k.ReadSubstate(h)
	assert.Nil(t, err, "read parent")

	hc, err := k.OpenSubstate(child, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.Nil(t, err, "child not visible through parent")
	v, err := k.ReadSubstate(hc)
	assert.Nil(t, err, "read child")
	assert.Equal(t, value.U32(5), v, "wrong child value")
	assert.Nil(t, k.CloseSubstate(hc), "close child")
	assert.Nil(t, k.CloseSubstate(h), "close parent")

	_, err = k.OpenSubstate(child, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	assert.ErrorIs(t, err, fault.ErrNodeNotVisible, "child visible after close")
}

func TestGlobalPersistence(t *testing.T) {
	db := storage.NewMemoryDatabase()
	k := newTestKernel(t, db, kernel.Config{})

	child, err := newBox(k, value.U32(3))
	assert.Nil(t, err, "child error")
	address, err := k.AllocateNodeId(identifier.EntityGlobalComponent)
	assert.Nil(t, err, "allocate error")

	// a global node may not refer to heap nodes
	other, err := newBox(k, value.Unit())
	assert.Nil(t, err, "other error")
	err = k.CreateNode(address, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, kernel.Fields(value.Reference(other)))
	assert.ErrorIs(t, err, fault.ErrTransientReferencePersisted, "transient reference stored")

	err = k.CreateNode(address, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, kernel.Fields(value.Own(child), value.U32(9)))
	assert.Nil(t, err, "global create")
	assert.Equal(t, []identifier.NodeId{other}, k.Owned(), "global node owned")
	assert.Equal(t, 1, k.HeapSize(), "child left on the heap")

	_, err = k.DropNode(address)
	assert.ErrorIs(t, err, fault.ErrCannotDropGlobalNode, "dropped a global")

	// stored children cannot be moved out
	_, err = k.CallMethod(address, "take", nil)
	assert.ErrorIs(t, err, fault.ErrCannotMoveStoredNode, "stored child moved")

	_, err = k.DropNode(other)
	assert.Nil(t, err, "drop other")

	assert.Equal(t, []identifier.NodeId{address}, k.Track().NewGlobalNodes(), "wrong new globals")
	updates, err := k.Track().Updates()
	assert.Nil(t, err, "updates error")
	assert.False(t, updates.IsEmpty(), "no updates")
	assert.Nil(t, db.Commit(updates), "commit error")

	// a second transaction sees the committed state
	k2 := newTestKernel(t, db, kernel.Config{})
	_, err = k2.CallMethod(address, "get", nil)
	assert.ErrorIs(t, err, fault.ErrNodeNotVisible, "global visible without reference")

	assert.Nil(t, k2.AddReference(address), "add reference")
	h, err := k2.OpenSubstate(address, kernel.MainPartition, kernel.Field(1), kernel.ReadOnly)
	assert.Nil(t, err, "open stored")
	v, err := k2.ReadSubstate(h)
	assert.Nil(t, err, "read stored")
	assert.Equal(t, value.U32(9), v, "wrong stored value")
	assert.Nil(t, k2.CloseSubstate(h), "close")

	assert.Nil(t, k2.AddDirectAccessReference(child), "direct reference")
	v, err = k2.CallDirectMethod(child, "get", nil)
	assert.Nil(t, err, "direct call")
	assert.Equal(t, value.String("direct"), v, "wrong direct result")

	_, err = k2.CallMethod(child, "get", nil)
	assert.ErrorIs(t, err, fault.ErrNodeNotVisible, "direct reference usable for normal calls")

	_, err = k2.CallDirectMethod(address, "get", nil)
	assert.ErrorIs(t, err, fault.ErrDirectAccessDenied, "direct call without direct reference")

	assert.ErrorIs(t, k2.AddReference(makeNodeId(identifier.EntityGlobalComponent, 0x99)), fault.ErrNodeNotFound, "reference to missing node")
}

func TestTransientPersistenceProhibited(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})

	token, err := k.CallFunction(tokenBlueprint, "new", nil)
	assert.Nil(t, err, "token error")
	id, err := value.AsOwn(token)
	assert.Nil(t, err, "not an own")

	address, err := k.AllocateNodeId(identifier.EntityGlobalComponent)
	assert.Nil(t, err, "allocate error")
	err = k.CreateNode(address, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, kernel.Fields(value.Own(id)))
	assert.ErrorIs(t, err, fault.ErrPersistenceProhibited, "transient node persisted")
}

func TestFailedCreateKeepsChildren(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})

	token, err := k.CallFunction(tokenBlueprint, "new", nil)
	require.Nil(t, err, "token error")
	tokenId, err := value.AsOwn(token)
	require.Nil(t, err, "not an own")
	inner, err := newBox(k, value.Own(tokenId))
	require.Nil(t, err, "inner box error")

	address, err := k.AllocateNodeId(identifier.EntityGlobalComponent)
	require.Nil(t, err, "allocate error")
	err = k.CreateNode(address, kernel.TypeInfo{Kind: kernel.ObjectNode, Blueprint: boxBlueprint}, kernel.Fields(value.Own(inner)))
	assert.ErrorIs(t, err, fault.ErrPersistenceProhibited, "nested transient node persisted")
	assert.Contains(t, k.Owned(), inner, "child moved by a failed create")

	_, err = newBox(k, value.Tuple{value.Own(inner), value.Own(inner)})
	assert.ErrorIs(t, err, fault.ErrNodeNotOwned, "same child moved twice")
	assert.Contains(t, k.Owned(), inner, "child moved by a failed create")

	outer, err := newBox(k, value.Own(inner))
	assert.Nil(t, err, "child not movable after failures")
	assert.Equal(t, []identifier.NodeId{outer}, k.Owned(), "owned after move")
}

func TestStacks(t *testing.T) {
	k := newTestKernel(t, nil, kernel.Config{})
	id, err := newBox(k, value.Unit())
	assert.Nil(t, err, "create error")

	child := k.AddStack()
	assert.Equal(t, 1, child, "wrong stack index")
	assert.Equal(t, 0, k.CurrentStack(), "stack switched")

	assert.Nil(t, k.SendToStack(child, value.Own(id)), "send error")
	assert.Empty(t, k.Owned(), "still owned by sender")
	assert.ErrorIs(t, k.SendToStack(child, value.Own(id)), fault.ErrNodeNotOwned, "sent twice")

	assert.ErrorIs(t, k.SwitchStack(5), fault.ErrStackNotFound, "missing stack")
	assert.Nil(t, k.SwitchStack(child), "switch error")
	assert.Equal(t, []identifier.NodeId{id}, k.Owned(), "not received")

	err = k.FinalizeRoot()
	assert.ErrorIs(t, err, fault.ErrOrphanedNodes, "orphan not detected")
}
