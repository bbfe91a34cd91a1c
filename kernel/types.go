// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"
	"sort"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// partition numbers
const (
	TypeInfoPartition uint8 = 0
	MainPartition     uint8 = 64
)

// Field - sort key of a numbered field
func Field(n uint8) storage.SortKey {
	return storage.SortKey{n}
}

// LockFlags - substate open mode
type LockFlags uint8

// open modes
const (
	ReadOnly LockFlags = iota
	Mutable
)

// Handle - an open substate
type Handle uint32

// BlueprintId - package address and blueprint name
type BlueprintId struct {
	Package identifier.NodeId
	Name    string
}

// String - for logging
func (b BlueprintId) String() string {
	return fmt.Sprintf("%s::%s", b.Package, b.Name)
}

// TypeInfoKind - what a node is
type TypeInfoKind uint8

// node kinds
const (
	ObjectNode TypeInfoKind = iota
	KeyValueStoreNode
	ReservationNode
)

// TypeInfo - immutable description stored with every node
//
// for a reservation node Blueprint is the blueprint the address was
// reserved for and Address is the reserved address
type TypeInfo struct {
	Kind      TypeInfoKind
	Blueprint BlueprintId
	Outer     identifier.NodeId
	Address   identifier.NodeId
}

// HasOuter - the object belongs to an outer global object
func (t TypeInfo) HasOuter() bool {
	return !t.Outer.IsZero()
}

// Is - object of the given blueprint
func (t TypeInfo) Is(blueprint BlueprintId) bool {
	return ObjectNode == t.Kind && t.Blueprint == blueprint
}

func (t TypeInfo) toValue() value.Value {
	return value.Tuple{
		value.U8(t.Kind),
		value.Bytes(t.Blueprint.Package.Bytes()),
		value.String(t.Blueprint.Name),
		value.Bytes(t.Outer.Bytes()),
		value.Bytes(t.Address.Bytes()),
	}
}

func typeInfoFromValue(v value.Value) (TypeInfo, error) {
	t := TypeInfo{}
	fields, err := value.AsTuple(v, 5)
	if nil != err {
		return t, err
	}
	kind, err := value.AsU8(fields[0])
	if nil != err {
		return t, err
	}
	t.Kind = TypeInfoKind(kind)
	pkg, err := value.AsBytes(fields[1])
	if nil != err {
		return t, err
	}
	copy(t.Blueprint.Package[:], pkg)
	t.Blueprint.Name, err = value.AsString(fields[2])
	if nil != err {
		return t, err
	}
	outer, err := value.AsBytes(fields[3])
	if nil != err {
		return t, err
	}
	copy(t.Outer[:], outer)
	address, err := value.AsBytes(fields[4])
	if nil != err {
		return t, err
	}
	copy(t.Address[:], address)
	return t, nil
}

// NodeSubstates - partition -> sort key -> value
type NodeSubstates map[uint8]map[string]value.Value

// Set - add a substate
func (n NodeSubstates) Set(partition uint8, key storage.SortKey, v value.Value) {
	p, ok := n[partition]
	if !ok {
		p = make(map[string]value.Value)
		n[partition] = p
	}
	p[string(key)] = v
}

// Get - a substate if present
func (n NodeSubstates) Get(partition uint8, key storage.SortKey) (value.Value, bool) {
	p, ok := n[partition]
	if !ok {
		return nil, false
	}
	v, ok := p[string(key)]
	return v, ok
}

// Fields - main partition fields in order
func Fields(fields ...value.Value) NodeSubstates {
	n := make(NodeSubstates)
	for i, f := range fields {
		n.Set(MainPartition, Field(uint8(i)), f)
	}
	return n
}

// owned nodes embedded anywhere in the substates, in a stable order
func (n NodeSubstates) ownedNodes() []identifier.NodeId {
	result := []identifier.NodeId{}
	for _, partition := range n.sortedPartitions() {
		p := n[partition]
		for _, k := range sortedKeys(p) {
			result = append(result, value.OwnedNodes(p[k])...)
		}
	}
	return result
}

// references embedded anywhere in the substates
func (n NodeSubstates) references() []identifier.NodeId {
	result := []identifier.NodeId{}
	for _, partition := range n.sortedPartitions() {
		p := n[partition]
		for _, k := range sortedKeys(p) {
			result = append(result, value.References(p[k])...)
		}
	}
	return result
}

func (n NodeSubstates) sortedPartitions() []uint8 {
	partitions := make([]int, 0, len(n))
	for p := range n {
		partitions = append(partitions, int(p))
	}
	sort.Ints(partitions)
	result := make([]uint8, len(partitions))
	for i, p := range partitions {
		result[i] = uint8(p)
	}
	return result
}

func sortedKeys(p map[string]value.Value) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Actor - what a call frame is running
//
// Outer is the receiver's outer object, e.g. the resource manager of a
// vault; it is visible to the frame
type Actor struct {
	Root         bool
	Blueprint    BlueprintId
	Export       string
	Receiver     identifier.NodeId
	Outer        identifier.NodeId
	DirectAccess bool
}

// IsMethod - the actor has a receiver
func (a Actor) IsMethod() bool {
	return !a.Receiver.IsZero()
}

// String - for logging
func (a Actor) String() string {
	switch {
	case a.Root:
		return "root"
	case a.IsMethod():
		return fmt.Sprintf("%s.%s(%s)", a.Blueprint, a.Export, a.Receiver)
	default:
		return fmt.Sprintf("%s::%s", a.Blueprint, a.Export)
	}
}

// check a substate address is open to callers
func checkPartition(partition uint8) error {
	if TypeInfoPartition == partition {
		return fault.ErrReservedPartition
	}
	return nil
}
