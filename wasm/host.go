// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wasm

import (
	"github.com/bitmark-inc/logger"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// host import namespace
const namespace = "env"

// invocation - state shared by the host functions of one instance
//
// err keeps the first kernel error so its class survives the trap
type invocation struct {
	api      kernel.API
	receiver identifier.NodeId
	log      *logger.L
	memory   *wasmer.Memory
	alloc    wasmer.NativeFunction
	err      error
}

func (inv *invocation) imports(store *wasmer.Store) *wasmer.ImportObject {
	i32 := wasmer.NewValueTypes(wasmer.I32)
	i32i32 := wasmer.NewValueTypes(wasmer.I32, wasmer.I32)
	i64 := wasmer.NewValueTypes(wasmer.I64)
	none := wasmer.NewValueTypes()

	imports := wasmer.NewImportObject()
	imports.Register(namespace, map[string]wasmer.IntoExtern{
		"call_function": wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, i64), inv.callFunction),
		"call_method":   wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, i64), inv.callMethod),
		"receiver":      wasmer.NewFunction(store, wasmer.NewFunctionType(none, i64), inv.getReceiver),
		"read_field":    wasmer.NewFunction(store, wasmer.NewFunctionType(i32, i64), inv.readField),
		"write_field":   wasmer.NewFunction(store, wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32), none), inv.writeField),
		"log":           wasmer.NewFunction(store, wasmer.NewFunctionType(i32i32, none), inv.logMessage),
	})
	return imports
}

// fail - record the error and trap
func (inv *invocation) fail(err error) ([]wasmer.Value, error) {
	if nil == inv.err {
		inv.err = err
	}
	return nil, err
}

// write - copy bytes into guest memory allocated by the guest
func (inv *invocation) write(data []byte) (int32, error) {
	result, err := inv.alloc(int32(len(data)))
	if nil != err {
		return 0, fault.Detailf(fault.ErrWasmTrap, "alloc: %s", err)
	}
	ptr, ok := result.(int32)
	if !ok {
		return 0, fault.Detailf(fault.ErrWasmTrap, "alloc result is not i32")
	}
	memory := inv.memory.Data()
	if ptr < 0 || int(ptr)+len(data) > len(memory) {
		return 0, fault.Detailf(fault.ErrWasmMemoryAccess, "write %d bytes at %d", len(data), ptr)
	}
	copy(memory[ptr:], data)
	return ptr, nil
}

// slice - guest memory at ptr, copied out
func (inv *invocation) slice(ptr int32, length int32) ([]byte, error) {
	memory := inv.memory.Data()
	if ptr < 0 || length < 0 || int(ptr)+int(length) > len(memory) {
		return nil, fault.Detailf(fault.ErrWasmMemoryAccess, "read %d bytes at %d", length, ptr)
	}
	return append([]byte{}, memory[ptr:ptr+length]...), nil
}

// read - bytes named by a packed pointer: high word address, low word length
func (inv *invocation) read(packed int64) ([]byte, error) {
	return inv.slice(int32(uint64(packed)>>32), int32(uint32(packed)))
}

// encoded value from guest memory
func (inv *invocation) value(args []wasmer.Value) (value.Value, error) {
	data, err := inv.slice(args[0].I32(), args[1].I32())
	if nil != err {
		return nil, err
	}
	return value.Decode(data)
}

// result - encode a host result into guest memory as a packed pointer
//
// an absent result is the zero pointer
func (inv *invocation) result(v value.Value) ([]wasmer.Value, error) {
	if nil == v {
		return []wasmer.Value{wasmer.NewI64(0)}, nil
	}
	data, err := value.Encode(v)
	if nil != err {
		return inv.fail(err)
	}
	ptr, err := inv.write(data)
	if nil != err {
		return inv.fail(err)
	}
	return []wasmer.Value{wasmer.NewI64(int64(uint64(uint32(ptr))<<32 | uint64(len(data))))}, nil
}

// call_function: (package reference, blueprint, function, args)
func (inv *invocation) callFunction(args []wasmer.Value) ([]wasmer.Value, error) {
	v, err := inv.value(args)
	if nil != err {
		return inv.fail(err)
	}
	t, err := value.AsTuple(v, 4)
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "call_function: %s", err))
	}
	pkg, err := value.AsReference(t[0])
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "package: %s", err))
	}
	name, err := value.AsString(t[1])
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "blueprint: %s", err))
	}
	function, err := value.AsString(t[2])
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "function: %s", err))
	}
	output, err := inv.api.CallFunction(kernel.BlueprintId{Package: pkg, Name: name}, function, t[3])
	if nil != err {
		return inv.fail(err)
	}
	return inv.result(output)
}

// call_method: (receiver reference, method, args)
func (inv *invocation) callMethod(args []wasmer.Value) ([]wasmer.Value, error) {
	v, err := inv.value(args)
	if nil != err {
		return inv.fail(err)
	}
	t, err := value.AsTuple(v, 3)
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "call_method: %s", err))
	}
	receiver, err := value.AsReference(t[0])
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "receiver: %s", err))
	}
	method, err := value.AsString(t[1])
	if nil != err {
		return inv.fail(fault.Detailf(fault.ErrInvalidCallData, "method: %s", err))
	}
	output, err := inv.api.CallMethod(receiver, method, t[2])
	if nil != err {
		return inv.fail(err)
	}
	return inv.result(output)
}

// receiver: the method receiver, absent for functions
func (inv *invocation) getReceiver(_ []wasmer.Value) ([]wasmer.Value, error) {
	if (identifier.NodeId{}) == inv.receiver {
		return inv.result(nil)
	}
	return inv.result(value.Reference(inv.receiver))
}

func (inv *invocation) field(n int32, flags kernel.LockFlags) (kernel.Handle, error) {
	if (identifier.NodeId{}) == inv.receiver {
		return 0, fault.Detailf(fault.ErrInvalidCallData, "field access outside a method")
	}
	if n < 0 || n > 255 {
		return 0, fault.Detailf(fault.ErrInvalidCallData, "field: %d", n)
	}
	return inv.api.OpenSubstate(inv.receiver, kernel.MainPartition, kernel.Field(uint8(n)), flags)
}

// read_field: one field of the receiver
func (inv *invocation) readField(args []wasmer.Value) ([]wasmer.Value, error) {
	h, err := inv.field(args[0].I32(), kernel.ReadOnly)
	if nil != err {
		return inv.fail(err)
	}
	v, err := inv.api.ReadSubstate(h)
	if nil != err {
		_ = inv.api.CloseSubstate(h)
		return inv.fail(err)
	}
	if err := inv.api.CloseSubstate(h); nil != err {
		return inv.fail(err)
	}
	return inv.result(v)
}

// write_field: (field, value pointer, value length)
func (inv *invocation) writeField(args []wasmer.Value) ([]wasmer.Value, error) {
	data, err := inv.slice(args[1].I32(), args[2].I32())
	if nil != err {
		return inv.fail(err)
	}
	v, err := value.Decode(data)
	if nil != err {
		return inv.fail(err)
	}
	h, err := inv.field(args[0].I32(), kernel.Mutable)
	if nil != err {
		return inv.fail(err)
	}
	if err := inv.api.WriteSubstate(h, v); nil != err {
		_ = inv.api.CloseSubstate(h)
		return inv.fail(err)
	}
	if err := inv.api.CloseSubstate(h); nil != err {
		return inv.fail(err)
	}
	return []wasmer.Value{}, nil
}

// log: a utf-8 message from the guest
func (inv *invocation) logMessage(args []wasmer.Value) ([]wasmer.Value, error) {
	data, err := inv.slice(args[0].I32(), args[1].I32())
	if nil != err {
		return inv.fail(err)
	}
	inv.log.Debugf("guest: %s", data)
	return []wasmer.Value{}, nil
}
