// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worktop

import (
	"github.com/bitmark-inc/substated/constraint"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
)

func params(args value.Value, n int) (value.Tuple, error) {
	t, err := value.AsTuple(args, n)
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "expected %d parameters", n)
	}
	return t, nil
}

func resourceParam(p value.Tuple) (identifier.NodeId, error) {
	id, err := value.AsReference(p[0])
	if nil != err || !id.EntityType().IsResource() {
		return identifier.NodeId{}, fault.Detailf(fault.ErrInvalidCallData, "resource: %v", p[0])
	}
	return id, nil
}

func worktopPut(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	bucket, err := value.AsOwn(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "bucket: %v", err)
	}
	info, err := api.GetTypeInfo(bucket)
	if nil != err {
		return nil, err
	}
	if !resource.IsBucket(info) {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s is not a bucket", bucket)
	}
	amount, err := resource.Amount(api, bucket)
	if nil != err {
		return nil, err
	}
	if amount.IsZero() {
		return nil, resource.DropEmptyBucket(api, bucket)
	}

	h, c, err := open(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	if existing, ok := c.buckets[info.Outer]; ok {
		return nil, resource.Put(api, existing, bucket)
	}
	c.insert(info.Outer, bucket)
	return nil, api.WriteSubstate(h, c.toValue())
}

func worktopTake(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	amount, err := value.AsDecimal(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
	}
	if amount.IsNegative() {
		return nil, fault.Detailf(fault.ErrInvalidAmount, "%s", amount)
	}

	h, c, err := open(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	existing, ok := c.buckets[address]
	if !ok {
		if !amount.IsZero() {
			return nil, fault.Detailf(fault.ErrInsufficientBalance, "worktop holds no %s", address)
		}
		return ownResult(resource.CreateEmptyBucket(api, address))
	}
	held, err := resource.Amount(api, existing)
	if nil != err {
		return nil, err
	}
	if held.Equal(amount) {
		c.remove(address)
		if err := api.WriteSubstate(h, c.toValue()); nil != err {
			return nil, err
		}
		return value.Own(existing), nil
	}
	return ownResult(resource.Take(api, existing, amount))
}

func worktopTakeNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	ids, err := value.AsLocalIds(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
	}

	h, c, err := open(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	existing, ok := c.buckets[address]
	if !ok {
		if 0 != len(ids) {
			return nil, fault.Detailf(fault.ErrInsufficientBalance, "worktop holds no %s", address)
		}
		return ownResult(resource.CreateEmptyBucket(api, address))
	}
	return ownResult(resource.TakeNonFungibles(api, existing, ids))
}

func worktopTakeAll(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}

	h, c, err := open(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	existing, ok := c.buckets[address]
	if !ok {
		return ownResult(resource.CreateEmptyBucket(api, address))
	}
	c.remove(address)
	if err := api.WriteSubstate(h, c.toValue()); nil != err {
		return nil, err
	}
	return value.Own(existing), nil
}

func worktopDrain(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	h, c, err := open(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	buckets := make([]identifier.NodeId, 0, len(c.resources))
	for _, r := range c.resources {
		buckets = append(buckets, c.buckets[r])
	}
	if err := api.WriteSubstate(h, contents{}.toValue()); nil != err {
		return nil, err
	}
	return value.Owns(buckets), nil
}

// balance of one resource on the worktop; zero when absent
func balance(api kernel.API, c contents, address identifier.NodeId) (constraint.Balance, error) {
	b := constraint.Balance{Amount: decimal.Zero}
	bucket, ok := c.buckets[address]
	if !ok {
		return b, nil
	}
	var err error
	b.Amount, err = resource.Amount(api, bucket)
	if nil != err {
		return b, err
	}
	if !address.EntityType().IsFungibleResource() {
		b.Ids, err = resource.LocalIds(api, bucket)
	}
	return b, err
}

func balances(api kernel.API, c contents) (map[identifier.NodeId]constraint.Balance, error) {
	result := make(map[identifier.NodeId]constraint.Balance, len(c.resources))
	for _, r := range c.resources {
		b, err := balance(api, c, r)
		if nil != err {
			return nil, err
		}
		result[r] = b
	}
	return result, nil
}

// run an assertion over a read-only view of the worktop
func inspect(api kernel.API, worktop identifier.NodeId, check func(c contents) error) error {
	h, c, err := open(api, worktop, kernel.ReadOnly)
	if nil != err {
		return err
	}
	err = check(c)
	if e := api.CloseSubstate(h); nil == err {
		err = e
	}
	return err
}

func worktopAssertContains(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	return nil, inspect(api, receiver, func(c contents) error {
		b, err := balance(api, c, address)
		if nil != err {
			return err
		}
		if !b.Amount.IsPositive() {
			return fault.Detailf(fault.ErrWorktopAssertionFailed, "no %s", address)
		}
		return nil
	})
}

func worktopAssertContainsAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	amount, err := value.AsDecimal(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
	}
	return nil, inspect(api, receiver, func(c contents) error {
		b, err := balance(api, c, address)
		if nil != err {
			return err
		}
		if b.Amount.Cmp(amount) < 0 {
			return fault.Detailf(fault.ErrWorktopAssertionFailed, "%s of %s: holds %s", amount, address, b.Amount)
		}
		return nil
	})
}

func worktopAssertContainsNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	ids, err := value.AsLocalIds(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
	}
	return nil, inspect(api, receiver, func(c contents) error {
		b, err := balance(api, c, address)
		if nil != err {
			return err
		}
		held := make(map[identifier.LocalId]struct{}, len(b.Ids))
		for _, id := range b.Ids {
			held[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := held[id]; !ok {
				return fault.Detailf(fault.ErrWorktopAssertionFailed, "%s of %s", id, address)
			}
		}
		return nil
	})
}

func constraintsParam(args value.Value) (constraint.Constraints, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	cs, err := constraint.ConstraintsFromValue(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "constraints: %v", err)
	}
	return cs, cs.Validate()
}

func worktopAssertResourcesInclude(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	cs, err := constraintsParam(args)
	if nil != err {
		return nil, err
	}
	return nil, inspect(api, receiver, func(c contents) error {
		held, err := balances(api, c)
		if nil != err {
			return err
		}
		return cs.CheckInclude(held)
	})
}

func worktopAssertResourcesOnly(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	cs, err := constraintsParam(args)
	if nil != err {
		return nil, err
	}
	return nil, inspect(api, receiver, func(c contents) error {
		held, err := balances(api, c)
		if nil != err {
			return err
		}
		return cs.CheckOnly(held)
	})
}

// consume a worktop whose buckets are all empty
func worktopDrop(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	worktop, err := value.AsOwn(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "worktop: %v", err)
	}
	info, err := api.GetTypeInfo(worktop)
	if nil != err {
		return nil, err
	}
	if !IsWorktop(info) {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s is not a worktop", worktop)
	}
	err = inspect(api, worktop, func(c contents) error {
		for _, r := range c.resources {
			amount, err := resource.Amount(api, c.buckets[r])
			if nil != err {
				return err
			}
			if !amount.IsZero() {
				return fault.Detailf(fault.ErrWorktopNotEmpty, "%s of %s", amount, r)
			}
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	substates, err := api.DropNode(worktop)
	if nil != err {
		return nil, err
	}
	v, _ := substates.Get(kernel.MainPartition, kernel.Field(bucketsField))
	c, err := contentsFromValue(v)
	if nil != err {
		return nil, err
	}
	for _, r := range c.resources {
		if err := resource.DropEmptyBucket(api, c.buckets[r]); nil != err {
			return nil, err
		}
	}
	return nil, nil
}

func ownResult(id identifier.NodeId, err error) (value.Value, error) {
	if nil != err {
		return nil, err
	}
	return value.Own(id), nil
}
