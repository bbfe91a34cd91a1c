// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"sort"
	"sync"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// CodeType - how a blueprint's exports are executed
type CodeType uint8

// code types
const (
	NativeCode CodeType = iota
	WasmCode
)

// String - for logging
func (c CodeType) String() string {
	switch c {
	case NativeCode:
		return "native"
	case WasmCode:
		return "wasm"
	default:
		return "*unknown*"
	}
}

// NativeFunction - a blueprint export implemented in Go
// receiver is the zero id for functions
type NativeFunction func(api API, receiver identifier.NodeId, args value.Value) (value.Value, error)

// WasmEngine - external runtime for wasm blueprints
type WasmEngine interface {
	Invoke(api API, blueprint BlueprintId, export string, receiver identifier.NodeId, args value.Value) (value.Value, error)
}

// Blueprint - the exports of one blueprint
//
// for wasm blueprints the export maps hold nil entries naming the exports
type Blueprint struct {
	Name          string
	CodeType      CodeType
	Transient     bool
	Functions     map[string]NativeFunction
	Methods       map[string]NativeFunction
	DirectMethods map[string]NativeFunction
}

// Registry - packages known to the kernel
type Registry struct {
	sync.RWMutex
	packages map[identifier.NodeId]map[string]*Blueprint
}

// NewRegistry - empty registry
func NewRegistry() *Registry {
	return &Registry{
		packages: make(map[identifier.NodeId]map[string]*Blueprint),
	}
}

// Register - add a blueprint to a package
func (r *Registry) Register(pkg identifier.NodeId, blueprint *Blueprint) error {
	if identifier.EntityGlobalPackage != pkg.EntityType() {
		return fault.ErrNotPackageAddress
	}
	r.Lock()
	defer r.Unlock()

	blueprints, ok := r.packages[pkg]
	if !ok {
		blueprints = make(map[string]*Blueprint)
		r.packages[pkg] = blueprints
	}
	if _, ok := blueprints[blueprint.Name]; ok {
		return fault.ErrNodeExists
	}
	blueprints[blueprint.Name] = blueprint
	return nil
}

// Lookup - find a blueprint
func (r *Registry) Lookup(id BlueprintId) (*Blueprint, error) {
	r.RLock()
	defer r.RUnlock()

	blueprints, ok := r.packages[id.Package]
	if !ok {
		return nil, fault.ErrBlueprintNotFound
	}
	blueprint, ok := blueprints[id.Name]
	if !ok {
		return nil, fault.ErrBlueprintNotFound
	}
	return blueprint, nil
}

// Packages - registered package addresses in ascending order
func (r *Registry) Packages() []identifier.NodeId {
	r.RLock()
	defer r.RUnlock()

	result := make([]identifier.NodeId, 0, len(r.packages))
	for pkg := range r.packages {
		result = append(result, pkg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Compare(result[j]) < 0
	})
	return result
}

// find the export for an actor
func (b *Blueprint) export(actor Actor) (NativeFunction, error) {
	exports := b.Functions
	switch {
	case actor.DirectAccess:
		exports = b.DirectMethods
	case actor.IsMethod():
		exports = b.Methods
	}
	fn, ok := exports[actor.Export]
	if !ok {
		return nil, fault.Detailf(fault.ErrExportNotFound, "%s", actor)
	}
	return fn, nil
}

// run the actor's code in the current frame
func (k *Kernel) dispatch(blueprint *Blueprint, actor Actor, args value.Value) (value.Value, error) {
	fn, err := blueprint.export(actor)
	if nil != err {
		return nil, err
	}

	switch blueprint.CodeType {
	case NativeCode:
		if nil == fn {
			return nil, fault.Detailf(fault.ErrExportNotFound, "%s", actor)
		}
		return fn(k, actor.Receiver, args)

	case WasmCode:
		if nil == k.config.Wasm {
			return nil, fault.ErrWasmUnavailable
		}
		if err := k.emit(Event{Kind: EventWasmInstantiate, Export: actor.Export}); nil != err {
			return nil, err
		}
		return k.config.Wasm.Invoke(k, actor.Blueprint, actor.Export, actor.Receiver, args)

	default:
		return nil, fault.ErrBlueprintNotFound
	}
}
