// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// DefaultMaxCallDepth - frames allowed above a root frame
const DefaultMaxCallDepth = 8

// Config - per transaction kernel settings
type Config struct {
	MaxCallDepth int
	Modules      []Module
	Hooks        FrameHooks
	Wasm         WasmEngine
	WellKnown    []identifier.NodeId
}

// Kernel - one transaction's execution state
type Kernel struct {
	log        *logger.L
	config     Config
	registry   *Registry
	allocator  *identifier.Allocator
	heap       *heap
	track      *Track
	locks      *lockTable
	stacks     []*callStack
	current    int
	nextHandle Handle
	wellKnown  map[identifier.NodeId]struct{}
}

// New - kernel with a single stack holding an empty root frame
func New(track *Track, registry *Registry, allocator *identifier.Allocator, config Config) *Kernel {
	if config.MaxCallDepth <= 0 {
		config.MaxCallDepth = DefaultMaxCallDepth
	}
	k := &Kernel{
		log:        logger.New("kernel"),
		config:     config,
		registry:   registry,
		allocator:  allocator,
		heap:       newHeap(),
		track:      track,
		locks:      newLockTable(),
		nextHandle: 1,
		wellKnown:  make(map[identifier.NodeId]struct{}),
	}
	for _, pkg := range registry.Packages() {
		k.wellKnown[pkg] = struct{}{}
	}
	for _, id := range config.WellKnown {
		k.wellKnown[id] = struct{}{}
	}
	k.AddStack()
	return k
}

// Track - the buffered store view
func (k *Kernel) Track() *Track {
	return k.track
}

// HeapSize - number of live transient nodes
func (k *Kernel) HeapSize() int {
	return k.heap.count()
}

func (k *Kernel) frame() *callFrame {
	return k.stacks[k.current].top()
}

func (k *Kernel) depth() int {
	return len(k.stacks[k.current].frames) - 1
}

func (k *Kernel) isWellKnown(id identifier.NodeId) bool {
	_, ok := k.wellKnown[id]
	return ok
}

func (k *Kernel) checkVisible(f *callFrame, id identifier.NodeId) error {
	if f.visible(id) || k.isWellKnown(id) || k.isOuterOfVisible(f, id) {
		return nil
	}
	return fault.Detailf(fault.ErrNodeNotVisible, "%s", id)
}

// the outer object of an owned or borrowed node is visible with it
func (k *Kernel) isOuterOfVisible(f *callFrame, id identifier.NodeId) bool {
	if !id.IsGlobal() {
		return false
	}
	for node := range f.owned {
		if info, err := k.typeInfo(node); nil == err && info.Outer == id {
			return true
		}
	}
	for node := range f.borrowed {
		if info, err := k.typeInfo(node); nil == err && info.Outer == id {
			return true
		}
	}
	return false
}

// locate - true when the node is in the track
func (k *Kernel) locate(id identifier.NodeId) (bool, error) {
	if k.heap.contains(id) {
		return false, nil
	}
	found, err := k.track.exists(id)
	if nil != err {
		return false, err
	}
	if !found {
		return false, fault.Detailf(fault.ErrNodeNotFound, "%s", id)
	}
	return true, nil
}

func (k *Kernel) read(id identifier.NodeId, stored bool, partition uint8, key storage.SortKey) (value.Value, bool, int, error) {
	if !stored {
		v, found := k.heap.get(id, partition, key)
		return v, found, 0, nil
	}
	return k.track.get(id, partition, key)
}

func (k *Kernel) typeInfo(id identifier.NodeId) (TypeInfo, error) {
	stored, err := k.locate(id)
	if nil != err {
		return TypeInfo{}, err
	}
	v, found, _, err := k.read(id, stored, TypeInfoPartition, Field(0))
	if nil != err {
		return TypeInfo{}, err
	}
	if !found {
		return TypeInfo{}, fault.Detailf(fault.ErrNodeNotFound, "%s", id)
	}
	return typeInfoFromValue(v)
}

func (k *Kernel) isTransient(info TypeInfo) (bool, error) {
	switch info.Kind {
	case ReservationNode:
		return true, nil
	case KeyValueStoreNode:
		return false, nil
	}
	blueprint, err := k.registry.Lookup(info.Blueprint)
	if nil != err {
		return false, err
	}
	return blueprint.Transient, nil
}

// remove nodes from the current frame so they can be moved elsewhere
func (k *Kernel) takeOwned(f *callFrame, ids []identifier.NodeId) error {
	seen := make(map[identifier.NodeId]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fault.Detailf(fault.ErrNodeNotOwned, "%s moved twice", id)
		}
		seen[id] = struct{}{}
		if !f.owns(id) || id == f.authZone {
			return fault.Detailf(fault.ErrNodeNotOwned, "%s", id)
		}
		if k.locks.nodeIsLocked(id) {
			return fault.Detailf(fault.ErrNodeLocked, "%s", id)
		}
	}
	for _, id := range ids {
		delete(f.owned, id)
		if err := k.emit(Event{Kind: EventMoveNode, Node: id}); nil != err {
			return err
		}
	}
	return nil
}

// true if target is root or is owned somewhere below root on the heap
func (k *Kernel) subtreeContains(root identifier.NodeId, target identifier.NodeId) bool {
	if root == target {
		return true
	}
	substates, ok := k.heap.nodes[root]
	if !ok {
		return false
	}
	for _, child := range substates.ownedNodes() {
		if k.subtreeContains(child, target) {
			return true
		}
	}
	return false
}

// check that heap subtrees may be written to the store
func (k *Kernel) checkPersistable(ids []identifier.NodeId) error {
	for _, id := range ids {
		substates, ok := k.heap.nodes[id]
		if !ok {
			return fault.Detailf(fault.ErrCannotMoveStoredNode, "%s", id)
		}
		info, err := k.typeInfo(id)
		if nil != err {
			return err
		}
		transient, err := k.isTransient(info)
		if nil != err {
			return err
		}
		if transient {
			return fault.Detailf(fault.ErrPersistenceProhibited, "%s", info.Blueprint)
		}
		if err := checkGlobalReferences(substates.references()); nil != err {
			return err
		}
		if err := k.checkPersistable(substates.ownedNodes()); nil != err {
			return err
		}
	}
	return nil
}

func checkGlobalReferences(refs []identifier.NodeId) error {
	for _, ref := range refs {
		if !ref.IsGlobal() {
			return fault.Detailf(fault.ErrTransientReferencePersisted, "%s", ref)
		}
	}
	return nil
}

// move checked heap subtrees into the track
func (k *Kernel) persist(ids []identifier.NodeId) {
	for _, id := range ids {
		substates := k.heap.remove(id)
		k.track.createNode(id, substates)
		k.persist(substates.ownedNodes())
	}
}

// AllocateNodeId - next deterministic id
func (k *Kernel) AllocateNodeId(entity identifier.EntityType) (identifier.NodeId, error) {
	if !entity.IsValid() {
		return identifier.NodeId{}, fault.ErrWrongEntityType
	}
	if err := k.emit(Event{Kind: EventAllocateNodeId}); nil != err {
		return identifier.NodeId{}, err
	}
	return k.allocator.Allocate(entity)
}

// CreateNode - add a node owned by the current frame
//
// owned nodes embedded in the substates move from the frame into the new
// node; a global node is written straight to the track together with
// everything it owns
func (k *Kernel) CreateNode(id identifier.NodeId, info TypeInfo, substates NodeSubstates) error {
	f := k.frame()
	if err := k.emit(Event{Kind: EventCreateNode, Node: id}); nil != err {
		return err
	}
	if nil == substates {
		substates = make(NodeSubstates)
	}
	if _, ok := substates[TypeInfoPartition]; ok {
		return fault.ErrReservedPartition
	}
	if id.IsGlobal() && ObjectNode != info.Kind {
		return fault.ErrWrongEntityType
	}
	if ObjectNode == info.Kind {
		if _, err := k.registry.Lookup(info.Blueprint); nil != err {
			return err
		}
	}

	if k.heap.contains(id) {
		return fault.ErrNodeExists
	}
	found, err := k.track.exists(id)
	if nil != err {
		return err
	}
	if found {
		return fault.ErrNodeExists
	}

	for _, ref := range substates.references() {
		if err := k.checkVisible(f, ref); nil != err {
			return err
		}
	}
	for _, partition := range substates {
		for _, v := range partition {
			if _, err := value.Encode(v); nil != err {
				return err
			}
		}
	}

	children := substates.ownedNodes()
	if id.IsGlobal() {
		transient, err := k.isTransient(info)
		if nil != err {
			return err
		}
		if transient {
			return fault.Detailf(fault.ErrPersistenceProhibited, "%s", info.Blueprint)
		}
		if err := checkGlobalReferences(substates.references()); nil != err {
			return err
		}
		if err := k.checkPersistable(children); nil != err {
			return err
		}
	}
	if err := k.takeOwned(f, children); nil != err {
		return err
	}

	all := make(NodeSubstates, len(substates)+1)
	for partition, entries := range substates {
		all[partition] = make(map[string]value.Value, len(entries))
		for key, v := range entries {
			all[partition][key] = v
		}
	}
	all.Set(TypeInfoPartition, Field(0), info.toValue())

	if id.IsGlobal() {
		k.track.createNode(id, all)
		k.persist(children)
		f.refs[id] = refGlobal
		k.log.Debugf("created global: %s  blueprint: %s", id, info.Blueprint)
		return nil
	}

	k.heap.create(id, all)
	f.owned[id] = struct{}{}
	return nil
}

// DropNode - destroy an owned heap node returning its substates
// nodes it owned become owned by the current frame
func (k *Kernel) DropNode(id identifier.NodeId) (NodeSubstates, error) {
	f := k.frame()
	if err := k.emit(Event{Kind: EventDropNode, Node: id}); nil != err {
		return nil, err
	}
	if id.IsGlobal() {
		return nil, fault.ErrCannotDropGlobalNode
	}
	if !f.owns(id) {
		return nil, fault.Detailf(fault.ErrNodeNotOwned, "%s", id)
	}
	if k.locks.nodeIsLocked(id) {
		return nil, fault.Detailf(fault.ErrNodeLocked, "%s", id)
	}
	if f.authZone == id {
		f.authZone = identifier.NodeId{}
	}

	substates := k.heap.remove(id)
	delete(f.owned, id)
	for _, child := range substates.ownedNodes() {
		f.owned[child] = struct{}{}
	}
	delete(substates, TypeInfoPartition)
	return substates, nil
}

// GetTypeInfo - type of a visible node
func (k *Kernel) GetTypeInfo(id identifier.NodeId) (TypeInfo, error) {
	f := k.frame()
	if err := k.checkVisible(f, id); nil != err && !f.directAccess(id) {
		return TypeInfo{}, err
	}
	return k.typeInfo(id)
}

// AllocateGlobalAddress - reserve a global address for a blueprint
// returns the owned reservation node and the address
func (k *Kernel) AllocateGlobalAddress(blueprint BlueprintId, entity identifier.EntityType) (identifier.NodeId, identifier.NodeId, error) {
	if !entity.IsGlobal() {
		return identifier.NodeId{}, identifier.NodeId{}, fault.ErrWrongEntityType
	}
	if _, err := k.registry.Lookup(blueprint); nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	address, err := k.AllocateNodeId(entity)
	if nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	reservation, err := k.AllocateNodeId(identifier.EntityInternalComponent)
	if nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	info := TypeInfo{
		Kind:      ReservationNode,
		Blueprint: blueprint,
		Address:   address,
	}
	if err := k.CreateNode(reservation, info, nil); nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	k.frame().refs[address] = refGlobal
	return reservation, address, nil
}

// Globalize - consume a reservation creating the global object
func (k *Kernel) Globalize(reservation identifier.NodeId, substates NodeSubstates) (identifier.NodeId, error) {
	f := k.frame()
	if !f.owns(reservation) {
		return identifier.NodeId{}, fault.Detailf(fault.ErrNodeNotOwned, "%s", reservation)
	}
	info, err := k.typeInfo(reservation)
	if nil != err {
		return identifier.NodeId{}, err
	}
	if ReservationNode != info.Kind {
		return identifier.NodeId{}, fault.ErrTypeMismatch
	}
	if _, err := k.DropNode(reservation); nil != err {
		return identifier.NodeId{}, err
	}
	object := TypeInfo{
		Kind:      ObjectNode,
		Blueprint: info.Blueprint,
	}
	if err := k.CreateNode(info.Address, object, substates); nil != err {
		return identifier.NodeId{}, err
	}
	return info.Address, nil
}

// OpenSubstate - lock a substate address for the current frame
func (k *Kernel) OpenSubstate(id identifier.NodeId, partition uint8, key storage.SortKey, flags LockFlags) (Handle, error) {
	f := k.frame()
	if err := k.emit(Event{Kind: EventOpenSubstate, Node: id}); nil != err {
		return 0, err
	}
	if Mutable == flags {
		if err := checkPartition(partition); nil != err {
			return 0, err
		}
	}
	if f.readOnlyZone(id) {
		if ReadOnly != flags {
			return 0, fault.Detailf(fault.ErrNodeNotVisible, "caller auth zone is read only: %s", id)
		}
	} else if err := k.checkVisible(f, id); nil != err {
		return 0, err
	}
	stored, err := k.locate(id)
	if nil != err {
		return 0, err
	}
	address := addressOf(id, partition, key)
	if err := k.locks.lock(id, address, flags); nil != err {
		return 0, fault.Detailf(err, "%s partition: %d", id, partition)
	}

	h := k.nextHandle
	k.nextHandle += 1
	f.handles[h] = &openSubstate{
		node:      id,
		partition: partition,
		key:       append(storage.SortKey{}, key...),
		address:   address,
		flags:     flags,
		stored:    stored,
	}
	return h, nil
}

func (k *Kernel) handle(f *callFrame, h Handle) (*openSubstate, error) {
	open, ok := f.handles[h]
	if !ok {
		return nil, fault.ErrHandleNotFound
	}
	return open, nil
}

// ReadSubstate - value behind a handle
// nodes owned or referenced by the value become visible while the handle is open
func (k *Kernel) ReadSubstate(h Handle) (value.Value, error) {
	f := k.frame()
	open, err := k.handle(f, h)
	if nil != err {
		return nil, err
	}
	v, found, size, err := k.read(open.node, open.stored, open.partition, open.key)
	if nil != err {
		return nil, err
	}
	if err := k.emit(Event{Kind: EventReadSubstate, Node: open.node, Size: size}); nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.Detailf(fault.ErrSubstateNotFound, "%s partition: %d", open.node, open.partition)
	}

	for _, id := range value.OwnedNodes(v) {
		f.borrow(open, id)
	}
	for _, id := range value.References(v) {
		if id.IsGlobal() {
			if _, ok := f.refs[id]; !ok {
				f.refs[id] = refGlobal
			}
			continue
		}
		f.borrow(open, id)
	}
	return v, nil
}

// WriteSubstate - replace the value behind a mutable handle
func (k *Kernel) WriteSubstate(h Handle, v value.Value) error {
	f := k.frame()
	open, err := k.handle(f, h)
	if nil != err {
		return err
	}
	if Mutable != open.flags {
		return fault.ErrHandleNotMutable
	}
	return k.update(f, open.node, open.stored, open.partition, open.key, v)
}

// CloseSubstate - release a handle
func (k *Kernel) CloseSubstate(h Handle) error {
	f := k.frame()
	open, err := k.handle(f, h)
	if nil != err {
		return err
	}
	if err := k.emit(Event{Kind: EventCloseSubstate, Node: open.node}); nil != err {
		return err
	}
	k.close(f, h, open)
	return nil
}

func (k *Kernel) close(f *callFrame, h Handle, open *openSubstate) {
	k.locks.unlock(open.node, open.address)
	f.release(open)
	delete(f.handles, h)
}

// SetSubstate - write a substate that is not currently open
func (k *Kernel) SetSubstate(id identifier.NodeId, partition uint8, key storage.SortKey, v value.Value) error {
	f := k.frame()
	if err := checkPartition(partition); nil != err {
		return err
	}
	if err := k.checkVisible(f, id); nil != err {
		return err
	}
	stored, err := k.locate(id)
	if nil != err {
		return err
	}
	if k.locks.isLocked(addressOf(id, partition, key)) {
		return fault.ErrSubstateLocked
	}
	return k.update(f, id, stored, partition, key, v)
}

// RemoveSubstate - delete a substate that is not currently open
// nodes owned by the removed value become owned by the current frame
func (k *Kernel) RemoveSubstate(id identifier.NodeId, partition uint8, key storage.SortKey) (value.Value, bool, error) {
	f := k.frame()
	if err := checkPartition(partition); nil != err {
		return nil, false, err
	}
	if err := k.checkVisible(f, id); nil != err {
		return nil, false, err
	}
	stored, err := k.locate(id)
	if nil != err {
		return nil, false, err
	}
	if k.locks.isLocked(addressOf(id, partition, key)) {
		return nil, false, fault.ErrSubstateLocked
	}
	old, found, _, err := k.read(id, stored, partition, key)
	if nil != err {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	if err := k.update(f, id, stored, partition, key, nil); nil != err {
		return nil, false, err
	}
	for _, ref := range value.References(old) {
		if ref.IsGlobal() {
			if _, ok := f.refs[ref]; !ok {
				f.refs[ref] = refGlobal
			}
		}
	}
	return old, true, nil
}

// ScanKeys - sort keys of a partition in ascending order
func (k *Kernel) ScanKeys(id identifier.NodeId, partition uint8) ([]storage.SortKey, error) {
	f := k.frame()
	if err := k.checkVisible(f, id); nil != err {
		return nil, err
	}
	stored, err := k.locate(id)
	if nil != err {
		return nil, err
	}
	if err := k.emit(Event{Kind: EventReadSubstate, Node: id}); nil != err {
		return nil, err
	}
	if !stored {
		return k.heap.list(id, partition), nil
	}
	return k.track.list(id, partition)
}

// update - write or (nil value) delete a substate moving owned nodes
// between the frame and the node
func (k *Kernel) update(f *callFrame, id identifier.NodeId, stored bool, partition uint8, key storage.SortKey, v value.Value) error {
	size := 0
	if nil != v {
		data, err := value.Encode(v)
		if nil != err {
			return err
		}
		size = len(data)
	}
	if err := k.emit(Event{Kind: EventWriteSubstate, Node: id, Size: size}); nil != err {
		return err
	}

	old, _, _, err := k.read(id, stored, partition, key)
	if nil != err {
		return err
	}

	oldOwned := make(map[identifier.NodeId]struct{})
	for _, o := range value.OwnedNodes(old) {
		oldOwned[o] = struct{}{}
	}
	oldRefs := make(map[identifier.NodeId]struct{})
	for _, r := range value.References(old) {
		oldRefs[r] = struct{}{}
	}

	added := []identifier.NodeId{}
	kept := make(map[identifier.NodeId]struct{})
	for _, o := range value.OwnedNodes(v) {
		if _, ok := oldOwned[o]; ok {
			kept[o] = struct{}{}
			continue
		}
		if k.subtreeContains(o, id) {
			return fault.Detailf(fault.ErrInvalidReference, "%s would own itself", id)
		}
		added = append(added, o)
	}
	removed := []identifier.NodeId{}
	for _, o := range value.OwnedNodes(old) {
		if _, ok := kept[o]; !ok {
			removed = append(removed, o)
		}
	}

	newRefs := value.References(v)
	for _, r := range newRefs {
		if _, ok := oldRefs[r]; ok {
			continue
		}
		if err := k.checkVisible(f, r); nil != err {
			return err
		}
	}

	if stored {
		if len(removed) > 0 {
			return fault.Detailf(fault.ErrCannotMoveStoredNode, "%s", removed[0])
		}
		if err := checkGlobalReferences(newRefs); nil != err {
			return err
		}
		if err := k.checkPersistable(added); nil != err {
			return err
		}
	}
	if err := k.takeOwned(f, added); nil != err {
		return err
	}

	if stored {
		k.persist(added)
		if nil == v {
			k.track.delete(id, partition, key)
		} else {
			k.track.set(id, partition, key, v)
		}
		return nil
	}

	if nil == v {
		k.heap.delete(id, partition, key)
	} else {
		k.heap.set(id, partition, key, v)
	}
	for _, o := range removed {
		f.owned[o] = struct{}{}
	}
	return nil
}

// Actor - what the current frame is running
func (k *Kernel) Actor() Actor {
	return k.frame().actor
}

// AuthZone - the current frame's auth zone if one is attached
func (k *Kernel) AuthZone() (identifier.NodeId, bool) {
	id := k.frame().authZone
	return id, !id.IsZero()
}

// CallerAuthZone - the auth zone of the nearest calling frame that has
// one; its substates may be read but it cannot be invoked
func (k *Kernel) CallerAuthZone() (identifier.NodeId, bool) {
	id := k.frame().callerZone
	return id, !id.IsZero()
}

// AttachAuthZone - pin an owned node as the current frame's auth zone
func (k *Kernel) AttachAuthZone(id identifier.NodeId) error {
	f := k.frame()
	if !f.owns(id) {
		return fault.Detailf(fault.ErrNodeNotOwned, "%s", id)
	}
	f.authZone = id
	return nil
}
