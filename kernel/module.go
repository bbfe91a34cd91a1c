// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/bitmark-inc/substated/identifier"
)

// EventKind - kernel checkpoint
type EventKind uint8

// checkpoints reported to modules
const (
	EventAllocateNodeId EventKind = iota
	EventCreateNode
	EventDropNode
	EventMoveNode
	EventOpenSubstate
	EventReadSubstate
	EventWriteSubstate
	EventCloseSubstate
	EventInvokeEnter
	EventInvokeExit
	EventWasmInstantiate
)

var eventNames = []string{
	"AllocateNodeId",
	"CreateNode",
	"DropNode",
	"MoveNode",
	"OpenSubstate",
	"ReadSubstate",
	"WriteSubstate",
	"CloseSubstate",
	"InvokeEnter",
	"InvokeExit",
	"WasmInstantiate",
}

// String - for logging
func (e EventKind) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "*unknown*"
}

// Event - details of one checkpoint
//
// Size is the encoded length of the substate when it was loaded from or
// will be written to the store, zero for heap access
type Event struct {
	Kind   EventKind
	Node   identifier.NodeId
	Size   int
	Depth  int
	Export string
}

// Module - observer of kernel checkpoints that may abort execution
type Module interface {
	OnEvent(event Event) error
}

// FrameHooks - system behaviour at frame boundaries
//
// leftovers are the nodes still owned by the frame after its output has
// been moved to the caller; the hook must drop the ones it understands
type FrameHooks interface {
	OnCallFrameEnter(api API) error
	OnCallFrameExit(api API, leftovers []identifier.NodeId) error
}

func (k *Kernel) emit(event Event) error {
	event.Depth = k.depth()
	for _, module := range k.config.Modules {
		if err := module.OnEvent(event); nil != err {
			return err
		}
	}
	return nil
}
