// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// container method names
const (
	methodPut                       = "put"
	methodTake                      = "take"
	methodTakeAdvanced              = "take_advanced"
	methodTakeNonFungibles          = "take_non_fungibles"
	methodGetAmount                 = "get_amount"
	methodGetNonFungibleLocalIds    = "get_non_fungible_local_ids"
	methodGetResourceAddress        = "get_resource_address"
	methodCreateProofOfAmount       = "create_proof_of_amount"
	methodCreateProofOfNonFungibles = "create_proof_of_non_fungibles"
	methodCreateProofOfAll          = "create_proof_of_all"
	methodLockAmount                = "lock_amount"
	methodUnlockAmount              = "unlock_amount"
	methodLockNonFungibles          = "lock_non_fungibles"
	methodUnlockNonFungibles        = "unlock_non_fungibles"
	methodBurn                      = "burn"
	methodRecall                    = "recall"
	methodRecallNonFungibles        = "recall_non_fungibles"
)

// positional parameters of a call
func params(args value.Value, n int) (value.Tuple, error) {
	t, err := value.AsTuple(args, n)
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "expected %d parameters", n)
	}
	return t, nil
}

func decimalParam(args value.Value) (decimal.Decimal, error) {
	p, err := params(args, 1)
	if nil != err {
		return decimal.Zero, err
	}
	amount, err := value.AsDecimal(p[0])
	if nil != err {
		return decimal.Zero, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
	}
	return amount, nil
}

func localIdsParam(args value.Value) ([]identifier.LocalId, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	ids, err := value.AsLocalIds(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
	}
	return ids, nil
}

func ownParam(args value.Value) (identifier.NodeId, error) {
	p, err := params(args, 1)
	if nil != err {
		return identifier.NodeId{}, err
	}
	id, err := value.AsOwn(p[0])
	if nil != err {
		return identifier.NodeId{}, fault.Detailf(fault.ErrInvalidCallData, "bucket: %v", err)
	}
	return id, nil
}

// open handles on both container fields
type containerHandles struct {
	liquid kernel.Handle
	locked kernel.Handle
}

func openContainer(api kernel.API, id identifier.NodeId, flags kernel.LockFlags) (containerHandles, value.Value, value.Value, error) {
	h := containerHandles{}
	var err error
	h.liquid, err = api.OpenSubstate(id, kernel.MainPartition, kernel.Field(liquidField), flags)
	if nil != err {
		return h, nil, nil, err
	}
	h.locked, err = api.OpenSubstate(id, kernel.MainPartition, kernel.Field(lockedField), flags)
	if nil != err {
		_ = api.CloseSubstate(h.liquid)
		return h, nil, nil, err
	}
	liquid, err := api.ReadSubstate(h.liquid)
	if nil != err {
		h.close(api)
		return h, nil, nil, err
	}
	locked, err := api.ReadSubstate(h.locked)
	if nil != err {
		h.close(api)
		return h, nil, nil, err
	}
	return h, liquid, locked, nil
}

func (h containerHandles) write(api kernel.API, liquid value.Value, locked value.Value) error {
	if err := api.WriteSubstate(h.liquid, liquid); nil != err {
		return err
	}
	return api.WriteSubstate(h.locked, locked)
}

func (h containerHandles) close(api kernel.API) error {
	err := api.CloseSubstate(h.locked)
	if e := api.CloseSubstate(h.liquid); nil == err {
		err = e
	}
	return err
}

func readFungible(api kernel.API, id identifier.NodeId) (*fungibleState, error) {
	h, liquid, locked, err := openContainer(api, id, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	s, err := fungibleStateFromValues(liquid, locked)
	if e := h.close(api); nil == err {
		err = e
	}
	return s, err
}

func readNonFungible(api kernel.API, id identifier.NodeId) (*nonFungibleState, error) {
	h, liquid, locked, err := openContainer(api, id, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	s, err := nonFungibleStateFromValues(liquid, locked)
	if e := h.close(api); nil == err {
		err = e
	}
	return s, err
}

// apply a change to a fungible container; nothing is written on error
func modifyFungible(api kernel.API, id identifier.NodeId, change func(s *fungibleState) error) error {
	h, liquid, locked, err := openContainer(api, id, kernel.Mutable)
	if nil != err {
		return err
	}
	s, err := fungibleStateFromValues(liquid, locked)
	if nil == err {
		err = change(s)
	}
	if nil == err {
		err = h.write(api, s.liquidValue(), s.lockedValue())
	}
	if e := h.close(api); nil == err {
		err = e
	}
	return err
}

// apply a change to a non-fungible container; nothing is written on error
func modifyNonFungible(api kernel.API, id identifier.NodeId, change func(s *nonFungibleState) error) error {
	h, liquid, locked, err := openContainer(api, id, kernel.Mutable)
	if nil != err {
		return err
	}
	s, err := nonFungibleStateFromValues(liquid, locked)
	if nil == err {
		err = change(s)
	}
	if nil == err {
		err = h.write(api, s.liquidValue(), s.lockedValue())
	}
	if e := h.close(api); nil == err {
		err = e
	}
	return err
}

// create a bucket owned by the current frame
func newBucket(api kernel.API, resource identifier.NodeId, liquid value.Value) (identifier.NodeId, error) {
	return newContainer(api, resource, bucketBlueprint(resource), identifier.EntityInternalComponent, liquid)
}

func newVault(api kernel.API, resource identifier.NodeId) (identifier.NodeId, error) {
	entity := identifier.EntityInternalNonFungibleVault
	if isFungible(resource) {
		entity = identifier.EntityInternalFungibleVault
	}
	return newContainer(api, resource, vaultBlueprint(resource), entity, emptyLiquid(resource))
}

func newContainer(api kernel.API, resource identifier.NodeId, blueprint kernel.BlueprintId, entity identifier.EntityType, liquid value.Value) (identifier.NodeId, error) {
	id, err := api.AllocateNodeId(entity)
	if nil != err {
		return id, err
	}
	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: blueprint,
		Outer:     resource,
	}
	locked := value.Map{Key: value.KindDecimal, Value: value.KindU32}
	if !isFungible(resource) {
		locked = value.Map{Key: value.KindLocalId, Value: value.KindU32}
	}
	return id, api.CreateNode(id, info, kernel.Fields(liquid, locked))
}

func emptyLiquid(resource identifier.NodeId) value.Value {
	if isFungible(resource) {
		return value.NewDecimal(decimal.Zero)
	}
	return value.LocalIds(nil)
}

// amount must be non-negative and fit the divisibility
func checkAmount(amount decimal.Decimal, divisibility uint8) error {
	if amount.IsNegative() || amount.DecimalPlaces() > int32(divisibility) {
		return fault.Detailf(fault.ErrInvalidAmount, "%s with divisibility %d", amount, divisibility)
	}
	return nil
}

// the resource of the container a method runs on
func containerResource(api kernel.API) identifier.NodeId {
	return api.Actor().Outer
}

// withdraw an amount from a container into a new bucket
func withdraw(api kernel.API, container identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	resource := containerResource(api)
	if isFungible(resource) {
		m, err := readManager(api, resource)
		if nil != err {
			return identifier.NodeId{}, err
		}
		if err := checkAmount(amount, m.divisibility); nil != err {
			return identifier.NodeId{}, err
		}
		err = modifyFungible(api, container, func(s *fungibleState) error {
			return s.take(amount)
		})
		if nil != err {
			return identifier.NodeId{}, err
		}
		return newBucket(api, resource, value.NewDecimal(amount))
	}

	if err := checkAmount(amount, 0); nil != err {
		return identifier.NodeId{}, err
	}
	n, err := amount.Int64()
	if nil != err {
		return identifier.NodeId{}, fault.Detailf(fault.ErrInsufficientBalance, "requested: %s", amount)
	}
	var ids []identifier.LocalId
	err = modifyNonFungible(api, container, func(s *nonFungibleState) error {
		taken, e := s.takeCount(n)
		ids = taken
		return e
	})
	if nil != err {
		return identifier.NodeId{}, err
	}
	return newBucket(api, resource, value.LocalIds(ids))
}

func withdrawNonFungibles(api kernel.API, container identifier.NodeId, ids []identifier.LocalId) (identifier.NodeId, error) {
	resource := containerResource(api)
	if isFungible(resource) {
		return identifier.NodeId{}, fault.ErrNotSupportedByResource
	}
	err := modifyNonFungible(api, container, func(s *nonFungibleState) error {
		return s.takeIds(ids)
	})
	if nil != err {
		return identifier.NodeId{}, err
	}
	sorted := append([]identifier.LocalId{}, ids...)
	identifier.SortLocalIds(sorted)
	return newBucket(api, resource, value.LocalIds(sorted))
}

// consume a bucket owned by the current frame returning its contents
func consumeBucket(api kernel.API, resource identifier.NodeId, bucket identifier.NodeId) (value.Value, error) {
	info, err := api.GetTypeInfo(bucket)
	if nil != err {
		return nil, err
	}
	if !IsBucket(info) {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s is not a bucket", bucket)
	}
	if info.Outer != resource {
		return nil, fault.Detailf(fault.ErrResourceMismatch, "expected: %s  actual: %s", resource, info.Outer)
	}
	h, liquid, locked, err := openContainer(api, bucket, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	if e := h.close(api); nil != e {
		return nil, e
	}
	if m, ok := locked.(value.Map); !ok || 0 != len(m.Entries) {
		return nil, fault.Detailf(fault.ErrResourceLocked, "%s", bucket)
	}
	if _, err := api.DropNode(bucket); nil != err {
		return nil, err
	}
	return liquid, nil
}

func containerPut(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	bucket, err := ownParam(args)
	if nil != err {
		return nil, err
	}
	resource := containerResource(api)
	liquid, err := consumeBucket(api, resource, bucket)
	if nil != err {
		return nil, err
	}
	if isFungible(resource) {
		amount, err := value.AsDecimal(liquid)
		if nil != err {
			return nil, err
		}
		return nil, modifyFungible(api, receiver, func(s *fungibleState) error {
			return s.put(amount)
		})
	}
	ids, err := value.AsLocalIds(liquid)
	if nil != err {
		return nil, err
	}
	return nil, modifyNonFungible(api, receiver, func(s *nonFungibleState) error {
		return s.put(ids)
	})
}

func containerTake(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	bucket, err := withdraw(api, receiver, amount)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func containerTakeAdvanced(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	amount, err := value.AsDecimal(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
	}
	strategy, err := WithdrawStrategyFromValue(p[1])
	if nil != err {
		return nil, err
	}
	divisibility := uint8(0)
	resource := containerResource(api)
	if isFungible(resource) {
		m, err := readManager(api, resource)
		if nil != err {
			return nil, err
		}
		divisibility = m.divisibility
	}
	amount, err = strategy.Apply(amount, divisibility)
	if nil != err {
		return nil, err
	}
	bucket, err := withdraw(api, receiver, amount)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func containerTakeNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	ids, err := localIdsParam(args)
	if nil != err {
		return nil, err
	}
	bucket, err := withdrawNonFungibles(api, receiver, ids)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func containerAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if isFungible(containerResource(api)) {
		s, err := readFungible(api, receiver)
		if nil != err {
			return nil, err
		}
		amount, err := s.amount()
		if nil != err {
			return nil, err
		}
		return value.NewDecimal(amount), nil
	}
	s, err := readNonFungible(api, receiver)
	if nil != err {
		return nil, err
	}
	return value.NewDecimal(s.amount()), nil
}

func containerLocalIds(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if isFungible(containerResource(api)) {
		return nil, fault.ErrNotSupportedByResource
	}
	s, err := readNonFungible(api, receiver)
	if nil != err {
		return nil, err
	}
	return value.LocalIds(s.ids()), nil
}

func resourceAddress(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	return value.Reference(containerResource(api)), nil
}

func containerLockAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	if !isFungible(containerResource(api)) {
		return nil, fault.ErrNotSupportedByResource
	}
	return nil, modifyFungible(api, receiver, func(s *fungibleState) error {
		return s.lock(amount)
	})
}

func containerUnlockAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	if !isFungible(containerResource(api)) {
		return nil, fault.ErrNotSupportedByResource
	}
	return nil, modifyFungible(api, receiver, func(s *fungibleState) error {
		return s.unlock(amount)
	})
}

func containerLockNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	ids, err := localIdsParam(args)
	if nil != err {
		return nil, err
	}
	if isFungible(containerResource(api)) {
		return nil, fault.ErrNotSupportedByResource
	}
	return nil, modifyNonFungible(api, receiver, func(s *nonFungibleState) error {
		return s.lock(ids)
	})
}

func containerUnlockNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	ids, err := localIdsParam(args)
	if nil != err {
		return nil, err
	}
	if isFungible(containerResource(api)) {
		return nil, fault.ErrNotSupportedByResource
	}
	return nil, modifyNonFungible(api, receiver, func(s *nonFungibleState) error {
		return s.unlock(ids)
	})
}

// vault only: withdraw then burn through the resource manager
func vaultBurn(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	bucket, err := withdraw(api, receiver, amount)
	if nil != err {
		return nil, err
	}
	_, err = api.CallMethod(containerResource(api), methodBurn, value.Tuple{value.Own(bucket)})
	return nil, err
}

// direct access: take from a vault regardless of its owner
func vaultRecall(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	if err := checkRecallable(api); nil != err {
		return nil, err
	}
	bucket, err := withdraw(api, receiver, amount)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func vaultRecallNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	ids, err := localIdsParam(args)
	if nil != err {
		return nil, err
	}
	if err := checkRecallable(api); nil != err {
		return nil, err
	}
	bucket, err := withdrawNonFungibles(api, receiver, ids)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func checkRecallable(api kernel.API) error {
	m, err := readManager(api, containerResource(api))
	if nil != err {
		return err
	}
	if !m.flags.Recallable {
		return fault.Detailf(fault.ErrOperationNotPermitted, "recall")
	}
	return nil
}
