// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"sort"

	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
)

// how a frame came to see a node
type refOrigin uint8

const (
	refGlobal refOrigin = iota
	refDirectAccess
	refTransient
)

type openSubstate struct {
	node      identifier.NodeId
	partition uint8
	key       storage.SortKey
	address   substateAddress
	flags     LockFlags
	stored    bool
	borrowed  []identifier.NodeId
}

// activation record of one invocation
type callFrame struct {
	actor    Actor
	depth    int
	owned    map[identifier.NodeId]struct{}
	refs     map[identifier.NodeId]refOrigin
	borrowed map[identifier.NodeId]int
	handles  map[Handle]*openSubstate
	authZone identifier.NodeId

	// nearest auth zone below this frame, readable but not callable
	callerZone identifier.NodeId
}

func newCallFrame(actor Actor, depth int) *callFrame {
	return &callFrame{
		actor:    actor,
		depth:    depth,
		owned:    make(map[identifier.NodeId]struct{}),
		refs:     make(map[identifier.NodeId]refOrigin),
		borrowed: make(map[identifier.NodeId]int),
		handles:  make(map[Handle]*openSubstate),
	}
}

func (f *callFrame) owns(id identifier.NodeId) bool {
	_, ok := f.owned[id]
	return ok
}

// visible - owned, referenced or borrowed through an open handle
func (f *callFrame) visible(id identifier.NodeId) bool {
	if f.owns(id) {
		return true
	}
	if origin, ok := f.refs[id]; ok && refDirectAccess != origin {
		return true
	}
	return f.borrowed[id] > 0
}

// direct access references are only usable by direct method calls
func (f *callFrame) directAccess(id identifier.NodeId) bool {
	origin, ok := f.refs[id]
	return ok && refDirectAccess == origin
}

func (f *callFrame) borrow(handle *openSubstate, id identifier.NodeId) {
	f.borrowed[id] += 1
	handle.borrowed = append(handle.borrowed, id)
}

func (f *callFrame) release(handle *openSubstate) {
	for _, id := range handle.borrowed {
		f.borrowed[id] -= 1
		if f.borrowed[id] <= 0 {
			delete(f.borrowed, id)
		}
	}
	handle.borrowed = nil
}

// owned nodes in ascending id order
func (f *callFrame) ownedNodes() []identifier.NodeId {
	result := make([]identifier.NodeId, 0, len(f.owned))
	for id := range f.owned {
		result = append(result, id)
	}
	sortNodeIds(result)
	return result
}

// open handles in ascending order
func (f *callFrame) openHandles() []Handle {
	result := make([]Handle, 0, len(f.handles))
	for h := range f.handles {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}

func sortNodeIds(ids []identifier.NodeId) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) < 0
	})
}

// one thread of execution; the last frame is current
type callStack struct {
	frames []*callFrame
}

func (s *callStack) top() *callFrame {
	return s.frames[len(s.frames)-1]
}

// callerAuthZone - nearest auth zone below a new frame
//
// a zone invoked as the receiver belongs to the callee, so the search
// continues below its owner
func (s *callStack) callerAuthZone(receiver identifier.NodeId) identifier.NodeId {
	for i := len(s.frames) - 1; i >= 0; i -= 1 {
		zone := s.frames[i].authZone
		if zone.IsZero() || zone == receiver {
			continue
		}
		return zone
	}
	return identifier.NodeId{}
}

// a zone that the frame may read but not call or write
func (f *callFrame) readOnlyZone(id identifier.NodeId) bool {
	return !f.callerZone.IsZero() && id == f.callerZone && id != f.authZone
}
