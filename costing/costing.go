// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package costing meters kernel checkpoints
//
// both types here are kernel modules: the kernel reports every
// checkpoint and a module error aborts the transaction
package costing

import (
	"sort"

	"github.com/bitmark-inc/substated/counter"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/kernel"
)

// Fee - cost units for one checkpoint kind
//
// PerByte applies to the size of substates loaded from or written to
// the store
type Fee struct {
	Base    uint64
	PerByte uint64
}

// FeeTable - fee for each checkpoint kind, missing kinds are free
type FeeTable map[kernel.EventKind]Fee

// DefaultFeeTable - the standard execution fees
func DefaultFeeTable() FeeTable {
	return FeeTable{
		kernel.EventAllocateNodeId:  {Base: 100},
		kernel.EventCreateNode:      {Base: 500},
		kernel.EventDropNode:        {Base: 300},
		kernel.EventMoveNode:        {Base: 50},
		kernel.EventOpenSubstate:    {Base: 200},
		kernel.EventReadSubstate:    {Base: 100, PerByte: 2},
		kernel.EventWriteSubstate:   {Base: 200, PerByte: 4},
		kernel.EventCloseSubstate:   {Base: 50},
		kernel.EventInvokeEnter:     {Base: 1000},
		kernel.EventInvokeExit:      {Base: 100},
		kernel.EventWasmInstantiate: {Base: 50000},
	}
}

// DefaultCostUnitLimit - cost units for one transaction
const DefaultCostUnitLimit = 100000000

// FeeReserve - charges cost units until a limit is reached
type FeeReserve struct {
	limit     uint64
	table     FeeTable
	consumed  counter.Counter
	breakdown map[kernel.EventKind]uint64
}

// NewFeeReserve - reserve with a cost unit limit
func NewFeeReserve(limit uint64, table FeeTable) *FeeReserve {
	if nil == table {
		table = DefaultFeeTable()
	}
	return &FeeReserve{
		limit:     limit,
		table:     table,
		breakdown: make(map[kernel.EventKind]uint64),
	}
}

// OnEvent - charge for a checkpoint
func (f *FeeReserve) OnEvent(event kernel.Event) error {
	fee, ok := f.table[event.Kind]
	if !ok {
		return nil
	}
	units := fee.Base + fee.PerByte*uint64(event.Size)
	if f.consumed.Uint64()+units > f.limit {
		return fault.Detailf(fault.ErrFeeReserveExhausted, "%s needs %d units, %d remaining", event.Kind, units, f.limit-f.consumed.Uint64())
	}
	f.consumed.Add(units)
	f.breakdown[event.Kind] += units
	return nil
}

// Consumed - cost units charged so far
func (f *FeeReserve) Consumed() uint64 {
	return f.consumed.Uint64()
}

// Remaining - cost units left
func (f *FeeReserve) Remaining() uint64 {
	return f.limit - f.consumed.Uint64()
}

// Breakdown - cost units per checkpoint name
func (f *FeeReserve) Breakdown() map[string]uint64 {
	result := make(map[string]uint64, len(f.breakdown))
	for kind, units := range f.breakdown {
		result[kind.String()] = units
	}
	return result
}

// BreakdownNames - checkpoint names that were charged, sorted
func (f *FeeReserve) BreakdownNames() []string {
	names := make([]string, 0, len(f.breakdown))
	for kind := range f.breakdown {
		names = append(names, kind.String())
	}
	sort.Strings(names)
	return names
}

// InjectFailure - fail at a fixed checkpoint count
//
// used to test that a failure at any point leaves no partial state
type InjectFailure struct {
	after uint64
	count counter.Counter
}

// NewInjectFailure - fail once more than after checkpoints have been seen
func NewInjectFailure(after uint64) *InjectFailure {
	return &InjectFailure{
		after: after,
	}
}

// OnEvent - count a checkpoint
func (i *InjectFailure) OnEvent(event kernel.Event) error {
	if i.count.Increment() > i.after {
		return fault.Detailf(fault.ErrInjectedFailure, "at %s checkpoint %d", event.Kind, i.count.Uint64())
	}
	return nil
}

// Count - checkpoints seen
func (i *InjectFailure) Count() uint64 {
	return i.count.Uint64()
}
