// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worktop

import (
	"github.com/bitmark-inc/substated/constraint"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

func bucketResult(v value.Value, err error) (identifier.NodeId, error) {
	if nil != err {
		return identifier.NodeId{}, err
	}
	return value.AsOwn(v)
}

func unitResult(_ value.Value, err error) error {
	return err
}

// Put - add a bucket; empty buckets are dropped
func Put(api kernel.API, worktop identifier.NodeId, bucket identifier.NodeId) error {
	return unitResult(api.CallMethod(worktop, methodPut, value.Tuple{value.Own(bucket)}))
}

// Take - an amount of a resource; zero from an absent resource is an empty bucket
func Take(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	args := value.Tuple{value.Reference(resource), value.NewDecimal(amount)}
	return bucketResult(api.CallMethod(worktop, methodTake, args))
}

// TakeNonFungibles - specific non-fungibles of a resource
func TakeNonFungibles(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId, ids []identifier.LocalId) (identifier.NodeId, error) {
	args := value.Tuple{value.Reference(resource), value.LocalIds(ids)}
	return bucketResult(api.CallMethod(worktop, methodTakeNonFungibles, args))
}

// TakeAll - everything of a resource, possibly an empty bucket
func TakeAll(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId) (identifier.NodeId, error) {
	return bucketResult(api.CallMethod(worktop, methodTakeAll, value.Tuple{value.Reference(resource)}))
}

// Drain - every bucket in arrival order
func Drain(api kernel.API, worktop identifier.NodeId) ([]identifier.NodeId, error) {
	v, err := api.CallMethod(worktop, methodDrain, value.Tuple{})
	if nil != err {
		return nil, err
	}
	return value.AsOwnArray(v)
}

// AssertContains - a non-zero amount of the resource is present
func AssertContains(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId) error {
	return unitResult(api.CallMethod(worktop, methodAssertContains, value.Tuple{value.Reference(resource)}))
}

// AssertContainsAmount - at least the amount is present
func AssertContainsAmount(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId, amount decimal.Decimal) error {
	args := value.Tuple{value.Reference(resource), value.NewDecimal(amount)}
	return unitResult(api.CallMethod(worktop, methodAssertContainsAmount, args))
}

// AssertContainsNonFungibles - every id is present
func AssertContainsNonFungibles(api kernel.API, worktop identifier.NodeId, resource identifier.NodeId, ids []identifier.LocalId) error {
	args := value.Tuple{value.Reference(resource), value.LocalIds(ids)}
	return unitResult(api.CallMethod(worktop, methodAssertContainsNonFungibles, args))
}

// AssertResourcesInclude - every constraint holds
func AssertResourcesInclude(api kernel.API, worktop identifier.NodeId, cs constraint.Constraints) error {
	return unitResult(api.CallMethod(worktop, methodAssertResourcesInclude, value.Tuple{cs.Value()}))
}

// AssertResourcesOnly - every constraint holds and nothing else is present
func AssertResourcesOnly(api kernel.API, worktop identifier.NodeId, cs constraint.Constraints) error {
	return unitResult(api.CallMethod(worktop, methodAssertResourcesOnly, value.Tuple{cs.Value()}))
}

// Drop - consume an empty worktop
func Drop(api kernel.API, worktop identifier.NodeId) error {
	return unitResult(api.CallFunction(Blueprint(), functionDrop, value.Tuple{value.Own(worktop)}))
}
