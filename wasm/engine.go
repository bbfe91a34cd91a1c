// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wasm

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// names every module must export
const (
	exportMemory = "memory"
	exportAlloc  = "alloc"
)

// Engine - compiled wasm blueprints run through wasmer
//
// an engine serves one kernel at a time; nested invocations on the
// same goroutine are allowed
type Engine struct {
	sync.RWMutex
	log     *logger.L
	store   *wasmer.Store
	modules map[kernel.BlueprintId]*wasmer.Module
}

// New - engine with no blueprints
func New() *Engine {
	return &Engine{
		log:     logger.New("wasm"),
		store:   wasmer.NewStore(wasmer.NewEngine()),
		modules: make(map[kernel.BlueprintId]*wasmer.Module),
	}
}

// Deploy - compile code for a blueprint and register it
//
// functions and methods name the exports callable through the kernel
func (e *Engine) Deploy(registry *kernel.Registry, blueprint kernel.BlueprintId, code []byte, functions []string, methods []string) error {
	module, err := wasmer.NewModule(e.store, code)
	if nil != err {
		return fault.Detailf(fault.ErrInvalidWasmModule, "%s: %s", blueprint.Name, err)
	}
	if err := checkExports(module, append(append([]string{}, functions...), methods...)); nil != err {
		return fault.Detailf(err, "%s", blueprint.Name)
	}

	b := &kernel.Blueprint{
		Name:      blueprint.Name,
		CodeType:  kernel.WasmCode,
		Functions: make(map[string]kernel.NativeFunction),
		Methods:   make(map[string]kernel.NativeFunction),
	}
	for _, name := range functions {
		b.Functions[name] = nil
	}
	for _, name := range methods {
		b.Methods[name] = nil
	}
	if err := registry.Register(blueprint.Package, b); nil != err {
		return err
	}

	e.Lock()
	e.modules[blueprint] = module
	e.Unlock()
	e.log.Infof("deployed: %s  functions: %d  methods: %d", blueprint.Name, len(functions), len(methods))
	return nil
}

func checkExports(module *wasmer.Module, names []string) error {
	exported := make(map[string]wasmer.ExternKind)
	for _, export := range module.Exports() {
		exported[export.Name()] = export.Type().Kind()
	}
	if kind, ok := exported[exportMemory]; !ok || wasmer.MEMORY != kind {
		return fault.Detailf(fault.ErrInvalidWasmModule, "no %s export", exportMemory)
	}
	for _, name := range append([]string{exportAlloc}, names...) {
		if kind, ok := exported[name]; !ok || wasmer.FUNCTION != kind {
			return fault.Detailf(fault.ErrInvalidWasmModule, "no function export: %s", name)
		}
	}
	return nil
}

// Invoke - run one export in a fresh instance
func (e *Engine) Invoke(api kernel.API, blueprint kernel.BlueprintId, export string, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	e.RLock()
	module, ok := e.modules[blueprint]
	e.RUnlock()
	if !ok {
		return nil, fault.Detailf(fault.ErrBlueprintNotFound, "%s", blueprint.Name)
	}

	inv := &invocation{
		api:      api,
		receiver: receiver,
		log:      e.log,
	}
	instance, err := wasmer.NewInstance(module, inv.imports(e.store))
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidWasmModule, "%s: %s", blueprint.Name, err)
	}

	if inv.memory, err = instance.Exports.GetMemory(exportMemory); nil != err {
		return nil, fault.Detailf(fault.ErrInvalidWasmModule, "%s", err)
	}
	if inv.alloc, err = instance.Exports.GetFunction(exportAlloc); nil != err {
		return nil, fault.Detailf(fault.ErrInvalidWasmModule, "%s", err)
	}
	fn, err := instance.Exports.GetFunction(export)
	if nil != err {
		return nil, fault.Detailf(fault.ErrExportNotFound, "%s::%s", blueprint.Name, export)
	}

	if nil == args {
		args = value.Unit()
	}
	input, err := value.Encode(args)
	if nil != err {
		return nil, err
	}
	ptr, err := inv.write(input)
	if nil != err {
		return nil, err
	}

	result, err := fn(ptr, int32(len(input)))
	if nil != inv.err {
		return nil, inv.err
	}
	if nil != err {
		return nil, fault.Detailf(fault.ErrWasmTrap, "%s::%s: %s", blueprint.Name, export, err)
	}
	packed, ok := result.(int64)
	if !ok {
		return nil, fault.Detailf(fault.ErrWasmTrap, "%s::%s: result is not i64", blueprint.Name, export)
	}
	output, err := inv.read(packed)
	if nil != err {
		return nil, err
	}
	if 0 == len(output) {
		return nil, nil
	}
	return value.Decode(output)
}
