// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// CallFunction - invoke a blueprint function
func (k *Kernel) CallFunction(blueprint BlueprintId, function string, args value.Value) (value.Value, error) {
	actor := Actor{
		Blueprint: blueprint,
		Export:    function,
	}
	return k.invoke(actor, args)
}

// CallMethod - invoke a method on a visible object
func (k *Kernel) CallMethod(receiver identifier.NodeId, method string, args value.Value) (value.Value, error) {
	f := k.frame()
	if f.readOnlyZone(receiver) {
		return nil, fault.Detailf(fault.ErrNodeNotVisible, "caller auth zone: %s", receiver)
	}
	if err := k.checkVisible(f, receiver); nil != err {
		return nil, err
	}
	return k.callMethod(receiver, method, false, args)
}

// CallDirectMethod - invoke a method reachable only through a direct
// access reference, e.g. recalling a vault
func (k *Kernel) CallDirectMethod(receiver identifier.NodeId, method string, args value.Value) (value.Value, error) {
	if !k.frame().directAccess(receiver) {
		return nil, fault.Detailf(fault.ErrDirectAccessDenied, "%s", receiver)
	}
	return k.callMethod(receiver, method, true, args)
}

func (k *Kernel) callMethod(receiver identifier.NodeId, method string, direct bool, args value.Value) (value.Value, error) {
	info, err := k.typeInfo(receiver)
	if nil != err {
		return nil, err
	}
	if ObjectNode != info.Kind {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s", receiver)
	}
	actor := Actor{
		Blueprint:    info.Blueprint,
		Export:       method,
		Receiver:     receiver,
		Outer:        info.Outer,
		DirectAccess: direct,
	}
	return k.invoke(actor, args)
}

// run an actor in a new frame on the current stack
//
// owned nodes in args move to the new frame and owned nodes in its
// output move back; anything else the frame still owns when it returns
// is handed to the exit hook and must be gone afterwards
func (k *Kernel) invoke(actor Actor, args value.Value) (value.Value, error) {
	stack := k.stacks[k.current]
	caller := stack.top()

	if len(stack.frames) > k.config.MaxCallDepth {
		return nil, fault.Detailf(fault.ErrCallDepthExceeded, "%s", actor)
	}
	blueprint, err := k.registry.Lookup(actor.Blueprint)
	if nil != err {
		return nil, err
	}
	if err := k.emit(Event{Kind: EventInvokeEnter, Node: actor.Receiver, Export: actor.Export}); nil != err {
		return nil, err
	}
	if nil == args {
		args = value.Unit()
	}
	if _, err := value.Encode(args); nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "%s: %v", actor, err)
	}

	callee := newCallFrame(actor, caller.depth+1)
	callee.callerZone = stack.callerAuthZone(actor.Receiver)
	for _, ref := range value.References(args) {
		if err := k.checkVisible(caller, ref); nil != err {
			return nil, err
		}
		if ref.IsGlobal() {
			callee.refs[ref] = refGlobal
		} else {
			callee.refs[ref] = refTransient
		}
	}
	if actor.IsMethod() {
		if actor.Receiver.IsGlobal() {
			callee.refs[actor.Receiver] = refGlobal
		} else {
			callee.refs[actor.Receiver] = refTransient
		}
	}
	if !actor.Outer.IsZero() {
		callee.refs[actor.Outer] = refGlobal
	}
	owned := value.OwnedNodes(args)
	if err := k.takeOwned(caller, owned); nil != err {
		return nil, err
	}
	for _, id := range owned {
		callee.owned[id] = struct{}{}
	}

	k.log.Debugf("enter: %s  depth: %d", actor, callee.depth)
	stack.frames = append(stack.frames, callee)

	output, err := k.run(blueprint, actor, args)
	if nil != err {
		k.abandon(callee)
		stack.frames = stack.frames[:len(stack.frames)-1]
		return nil, err
	}

	outOwned := value.OwnedNodes(output)
	outRefs := value.References(output)
	if err := k.exitFrame(callee, outOwned, outRefs); nil != err {
		k.abandon(callee)
		stack.frames = stack.frames[:len(stack.frames)-1]
		return nil, err
	}
	stack.frames = stack.frames[:len(stack.frames)-1]

	for _, id := range outOwned {
		caller.owned[id] = struct{}{}
	}
	returned := make(map[identifier.NodeId]struct{}, len(outOwned))
	for _, id := range outOwned {
		returned[id] = struct{}{}
	}
	for _, ref := range outRefs {
		if ref.IsGlobal() {
			if _, ok := caller.refs[ref]; !ok {
				caller.refs[ref] = refGlobal
			}
			continue
		}
		if _, ok := returned[ref]; ok || caller.visible(ref) {
			continue
		}
		return nil, fault.Detailf(fault.ErrInvalidReference, "%s returned by %s", ref, actor)
	}

	k.log.Debugf("exit: %s  depth: %d", actor, callee.depth)
	if err := k.emit(Event{Kind: EventInvokeExit, Node: actor.Receiver, Export: actor.Export}); nil != err {
		return nil, err
	}
	return output, nil
}

// enter hook, code, output validation
func (k *Kernel) run(blueprint *Blueprint, actor Actor, args value.Value) (value.Value, error) {
	if nil != k.config.Hooks {
		if err := k.config.Hooks.OnCallFrameEnter(k); nil != err {
			return nil, err
		}
	}
	output, err := k.dispatch(blueprint, actor, args)
	if nil != err {
		return nil, err
	}
	if nil == output {
		output = value.Unit()
	}
	if _, err := value.Encode(output); nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "output of %s: %v", actor, err)
	}
	return output, nil
}

// finish a frame that is the current frame
func (k *Kernel) exitFrame(f *callFrame, outOwned []identifier.NodeId, outRefs []identifier.NodeId) error {
	for _, ref := range outRefs {
		if err := k.checkVisible(f, ref); nil != err {
			return err
		}
	}
	if err := k.takeOwned(f, outOwned); nil != err {
		return err
	}
	for _, h := range f.openHandles() {
		if err := k.CloseSubstate(h); nil != err {
			return err
		}
	}

	leftovers := f.ownedNodes()
	if len(leftovers) > 0 && nil != k.config.Hooks {
		if err := k.config.Hooks.OnCallFrameExit(k, leftovers); nil != err {
			return err
		}
	}
	if remaining := f.ownedNodes(); len(remaining) > 0 {
		return fault.Detailf(fault.ErrOrphanedNodes, "%s: %d nodes including %#v", f.actor, len(remaining), remaining[0])
	}
	return nil
}

// release the locks of a failed frame
func (k *Kernel) abandon(f *callFrame) {
	for _, h := range f.openHandles() {
		k.close(f, h, f.handles[h])
	}
}

// the actor of every root frame
var rootActor = Actor{
	Root: true,
	Blueprint: BlueprintId{
		Package: identifier.TransactionProcessorPackage,
		Name:    "TransactionProcessor",
	},
}

// AddStack - new stack with an empty root frame, returning its index
func (k *Kernel) AddStack() int {
	root := newCallFrame(rootActor, 0)
	k.stacks = append(k.stacks, &callStack{
		frames: []*callFrame{root},
	})
	return len(k.stacks) - 1
}

// SwitchStack - make another stack current
func (k *Kernel) SwitchStack(index int) error {
	if index < 0 || index >= len(k.stacks) {
		return fault.ErrStackNotFound
	}
	k.current = index
	return nil
}

// CurrentStack - index of the current stack
func (k *Kernel) CurrentStack() int {
	return k.current
}

// SendToStack - move a value's owned nodes from the current frame to the
// current frame of another stack
func (k *Kernel) SendToStack(index int, v value.Value) error {
	if index < 0 || index >= len(k.stacks) {
		return fault.ErrStackNotFound
	}
	from := k.frame()
	to := k.stacks[index].top()

	refs := value.References(v)
	for _, ref := range refs {
		if err := k.checkVisible(from, ref); nil != err {
			return err
		}
		if !ref.IsGlobal() {
			return fault.Detailf(fault.ErrInvalidReference, "%s", ref)
		}
	}
	owned := value.OwnedNodes(v)
	if err := k.takeOwned(from, owned); nil != err {
		return err
	}
	for _, id := range owned {
		to.owned[id] = struct{}{}
	}
	for _, ref := range refs {
		if _, ok := to.refs[ref]; !ok {
			to.refs[ref] = refGlobal
		}
	}
	return nil
}

// AddReference - make an existing global node visible to the current frame
func (k *Kernel) AddReference(id identifier.NodeId) error {
	if !id.IsGlobal() {
		return fault.Detailf(fault.ErrInvalidReference, "%s", id)
	}
	if !k.isWellKnown(id) {
		found, err := k.track.exists(id)
		if nil != err {
			return err
		}
		if !found {
			return fault.Detailf(fault.ErrNodeNotFound, "%s", id)
		}
	}
	f := k.frame()
	if _, ok := f.refs[id]; !ok {
		f.refs[id] = refGlobal
	}
	return nil
}

// AddDirectAccessReference - allow direct method calls on a stored
// internal node from the current frame
func (k *Kernel) AddDirectAccessReference(id identifier.NodeId) error {
	if id.IsGlobal() {
		return fault.Detailf(fault.ErrInvalidReference, "%s", id)
	}
	found, err := k.track.exists(id)
	if nil != err {
		return err
	}
	if !found {
		return fault.Detailf(fault.ErrNodeNotFound, "%s", id)
	}
	f := k.frame()
	if _, ok := f.refs[id]; !ok {
		f.refs[id] = refDirectAccess
	}
	return nil
}

// InitializeRoot - run the enter hook for the current stack's root frame
func (k *Kernel) InitializeRoot() error {
	if nil == k.config.Hooks {
		return nil
	}
	return k.config.Hooks.OnCallFrameEnter(k)
}

// FinalizeRoot - close the current root frame
//
// any nodes it still owns are passed to the exit hook and must be gone
// afterwards
func (k *Kernel) FinalizeRoot() error {
	stack := k.stacks[k.current]
	if 1 != len(stack.frames) {
		return fault.Detailf(fault.ErrCallDepthExceeded, "stack %d is not at its root", k.current)
	}
	return k.exitFrame(stack.top(), nil, nil)
}

// Owned - nodes owned by the current frame in ascending order
func (k *Kernel) Owned() []identifier.NodeId {
	return k.frame().ownedNodes()
}
