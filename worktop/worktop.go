// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package worktop holds the buckets a transaction has in hand between
// instructions, at most one bucket per resource
package worktop

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// BlueprintName - the worktop blueprint in the resource package
const BlueprintName = "Worktop"

// exports
const (
	functionDrop                     = "drop"
	methodPut                        = "put"
	methodTake                       = "take"
	methodTakeNonFungibles           = "take_non_fungibles"
	methodTakeAll                    = "take_all"
	methodDrain                      = "drain"
	methodAssertContains             = "assert_contains"
	methodAssertContainsAmount       = "assert_contains_amount"
	methodAssertContainsNonFungibles = "assert_contains_non_fungibles"
	methodAssertResourcesInclude     = "assert_resources_include"
	methodAssertResourcesOnly        = "assert_resources_only"
)

// resource -> bucket map
const bucketsField uint8 = 0

// Blueprint - id of the worktop blueprint
func Blueprint() kernel.BlueprintId {
	return kernel.BlueprintId{
		Package: identifier.ResourcePackage,
		Name:    BlueprintName,
	}
}

// Register - add the worktop blueprint to a registry
func Register(registry *kernel.Registry) error {
	return registry.Register(identifier.ResourcePackage, &kernel.Blueprint{
		Name:      BlueprintName,
		CodeType:  kernel.NativeCode,
		Transient: true,
		Functions: map[string]kernel.NativeFunction{
			functionDrop: worktopDrop,
		},
		Methods: map[string]kernel.NativeFunction{
			methodPut:                        worktopPut,
			methodTake:                       worktopTake,
			methodTakeNonFungibles:           worktopTakeNonFungibles,
			methodTakeAll:                    worktopTakeAll,
			methodDrain:                      worktopDrain,
			methodAssertContains:             worktopAssertContains,
			methodAssertContainsAmount:       worktopAssertContainsAmount,
			methodAssertContainsNonFungibles: worktopAssertContainsNonFungibles,
			methodAssertResourcesInclude:     worktopAssertResourcesInclude,
			methodAssertResourcesOnly:        worktopAssertResourcesOnly,
		},
	})
}

// New - empty worktop owned by the current frame
func New(api kernel.API) (identifier.NodeId, error) {
	id, err := api.AllocateNodeId(identifier.EntityInternalComponent)
	if nil != err {
		return identifier.NodeId{}, err
	}
	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: Blueprint(),
	}
	if err := api.CreateNode(id, info, kernel.Fields(contents{}.toValue())); nil != err {
		return identifier.NodeId{}, err
	}
	return id, nil
}

// buckets in the order their resources first arrived
type contents struct {
	resources []identifier.NodeId
	buckets   map[identifier.NodeId]identifier.NodeId
}

func (c contents) toValue() value.Value {
	m := value.Map{Key: value.KindReference, Value: value.KindOwn}
	for _, resource := range c.resources {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.Reference(resource),
			Value: value.Own(c.buckets[resource]),
		})
	}
	return m
}

func contentsFromValue(v value.Value) (contents, error) {
	m, ok := v.(value.Map)
	if !ok {
		return contents{}, fault.ErrUnexpectedKind
	}
	c := contents{
		buckets: make(map[identifier.NodeId]identifier.NodeId, len(m.Entries)),
	}
	for _, entry := range m.Entries {
		resource, err := value.AsReference(entry.Key)
		if nil != err {
			return contents{}, err
		}
		bucket, err := value.AsOwn(entry.Value)
		if nil != err {
			return contents{}, err
		}
		c.resources = append(c.resources, resource)
		c.buckets[resource] = bucket
	}
	return c, nil
}

func (c *contents) insert(resource identifier.NodeId, bucket identifier.NodeId) {
	if nil == c.buckets {
		c.buckets = make(map[identifier.NodeId]identifier.NodeId)
	}
	c.resources = append(c.resources, resource)
	c.buckets[resource] = bucket
}

func (c *contents) remove(resource identifier.NodeId) {
	delete(c.buckets, resource)
	for i, r := range c.resources {
		if r == resource {
			c.resources = append(c.resources[:i:i], c.resources[i+1:]...)
			return
		}
	}
}

// close a handle on return, keeping the first error
func closeHandle(api kernel.API, h kernel.Handle, err *error) {
	if e := api.CloseSubstate(h); nil == *err {
		*err = e
	}
}

// open the buckets field; the buckets stay visible while the handle is open
func open(api kernel.API, worktop identifier.NodeId, flags kernel.LockFlags) (kernel.Handle, contents, error) {
	h, err := api.OpenSubstate(worktop, kernel.MainPartition, kernel.Field(bucketsField), flags)
	if nil != err {
		return 0, contents{}, err
	}
	v, err := api.ReadSubstate(h)
	if nil != err {
		_ = api.CloseSubstate(h)
		return 0, contents{}, err
	}
	c, err := contentsFromValue(v)
	if nil != err {
		_ = api.CloseSubstate(h)
		return 0, contents{}, err
	}
	return h, c, nil
}

// IsWorktop - a worktop node
func IsWorktop(info kernel.TypeInfo) bool {
	return info.Is(Blueprint())
}
