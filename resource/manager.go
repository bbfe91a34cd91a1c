// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"errors"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// manager function and method names
const (
	functionCreate            = "create"
	methodMint                = "mint"
	methodCreateEmptyBucket   = "create_empty_bucket"
	methodCreateEmptyVault    = "create_empty_vault"
	methodDropEmptyBucket     = "drop_empty_bucket"
	methodGetTotalSupply      = "get_total_supply"
	methodGetResourceType     = "get_resource_type"
	methodGetNonFungible      = "get_non_fungible"
	methodNonFungibleExists   = "non_fungible_exists"
)

// largest divisibility of a fungible resource
const maximumDivisibility uint8 = decimal.Scale

// Flags - behaviour fixed when a resource is created
type Flags struct {
	Mintable   bool
	Burnable   bool
	Recallable bool
}

// Value - encoded form passed to the manager create functions
func (f Flags) Value() value.Value {
	return value.Tuple{
		value.Bool(f.Mintable),
		value.Bool(f.Burnable),
		value.Bool(f.Recallable),
	}
}

func flagsFromValue(v value.Value) (Flags, error) {
	f := Flags{}
	t, err := value.AsTuple(v, 3)
	if nil != err {
		return f, err
	}
	if f.Mintable, err = value.AsBool(t[0]); nil != err {
		return f, err
	}
	if f.Burnable, err = value.AsBool(t[1]); nil != err {
		return f, err
	}
	if f.Recallable, err = value.AsBool(t[2]); nil != err {
		return f, err
	}
	return f, nil
}

// NonFungible - one non-fungible and its data
type NonFungible struct {
	Id   identifier.LocalId
	Data []byte
}

func nonFungiblesToValue(items []NonFungible) value.Value {
	m := value.Map{Key: value.KindLocalId, Value: value.KindBytes}
	for _, item := range items {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.LocalId(item.Id),
			Value: value.Bytes(item.Data),
		})
	}
	return m
}

func nonFungiblesFromValue(v value.Value) ([]NonFungible, error) {
	m, ok := v.(value.Map)
	if !ok {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "non-fungibles")
	}
	items := make([]NonFungible, 0, len(m.Entries))
	for _, e := range m.Entries {
		id, err := value.AsLocalId(e.Key)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "local id: %v", err)
		}
		data, err := value.AsBytes(e.Value)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "data: %v", err)
		}
		items = append(items, NonFungible{Id: id, Data: data})
	}
	return items, nil
}

// decoded manager fields
//
// divisibility is the id kind for a non-fungible resource
type managerState struct {
	divisibility uint8
	supply       decimal.Decimal
	flags        Flags
}

func readManager(api kernel.API, resource identifier.NodeId) (*managerState, error) {
	fields := make([]value.Value, 3)
	for i := range fields {
		h, err := api.OpenSubstate(resource, kernel.MainPartition, kernel.Field(uint8(i)), kernel.ReadOnly)
		if nil != err {
			return nil, err
		}
		fields[i], err = api.ReadSubstate(h)
		if e := api.CloseSubstate(h); nil == err {
			err = e
		}
		if nil != err {
			return nil, err
		}
	}
	m := &managerState{}
	var err error
	if m.divisibility, err = value.AsU8(fields[managerDivisibilityField]); nil != err {
		return nil, err
	}
	if m.supply, err = value.AsDecimal(fields[managerSupplyField]); nil != err {
		return nil, err
	}
	if m.flags, err = flagsFromValue(fields[managerFlagsField]); nil != err {
		return nil, err
	}
	return m, nil
}

// ManagerSubstates - initial fields of a resource manager
// divisibility is the id kind for a non-fungible resource
func ManagerSubstates(divisibility uint8, supply decimal.Decimal, flags Flags) kernel.NodeSubstates {
	return kernel.Fields(value.U8(divisibility), value.NewDecimal(supply), flags.Value())
}

// adjust the total supply by a signed change
func changeSupply(api kernel.API, resource identifier.NodeId, change func(decimal.Decimal) (decimal.Decimal, error)) error {
	h, err := api.OpenSubstate(resource, kernel.MainPartition, kernel.Field(managerSupplyField), kernel.Mutable)
	if nil != err {
		return err
	}
	v, err := api.ReadSubstate(h)
	if nil == err {
		var supply decimal.Decimal
		supply, err = value.AsDecimal(v)
		if nil == err {
			supply, err = change(supply)
		}
		if nil == err {
			err = api.WriteSubstate(h, value.NewDecimal(supply))
		}
	}
	if e := api.CloseSubstate(h); nil == err {
		err = e
	}
	return err
}

func addSupply(amount decimal.Decimal) func(decimal.Decimal) (decimal.Decimal, error) {
	return func(supply decimal.Decimal) (decimal.Decimal, error) {
		return supply.Add(amount)
	}
}

func subSupply(amount decimal.Decimal) func(decimal.Decimal) (decimal.Decimal, error) {
	return func(supply decimal.Decimal) (decimal.Decimal, error) {
		return supply.Sub(amount)
	}
}

// non-fungible data: Some(bytes) while it exists, None once burned
func readNonFungibleData(api kernel.API, resource identifier.NodeId, id identifier.LocalId) (value.Value, bool, error) {
	h, err := api.OpenSubstate(resource, NonFungibleDataPartition, LocalIdKey(id), kernel.ReadOnly)
	if nil != err {
		return nil, false, err
	}
	v, err := api.ReadSubstate(h)
	if e := api.CloseSubstate(h); nil == err {
		err = e
	}
	if errors.Is(err, fault.ErrSubstateNotFound) {
		return nil, false, nil
	}
	if nil != err {
		return nil, false, err
	}
	return v, true, nil
}

// record new non-fungibles; ids may never repeat, even after a burn
func storeNonFungibles(api kernel.API, resource identifier.NodeId, kind identifier.LocalIdKind, items []NonFungible) ([]identifier.LocalId, error) {
	ids := make([]identifier.LocalId, 0, len(items))
	seen := make(map[identifier.LocalId]struct{}, len(items))
	for _, item := range items {
		if _, err := identifier.ParseLocalId(string(item.Id)); nil != err {
			return nil, err
		}
		if kind != item.Id.Kind() {
			return nil, fault.Detailf(fault.ErrInvalidLocalId, "%s is not of the resource id kind", item.Id)
		}
		if _, ok := seen[item.Id]; ok {
			return nil, fault.Detailf(fault.ErrNonFungibleExists, "%s", item.Id)
		}
		seen[item.Id] = struct{}{}
		_, found, err := readNonFungibleData(api, resource, item.Id)
		if nil != err {
			return nil, err
		}
		if found {
			return nil, fault.Detailf(fault.ErrNonFungibleExists, "%s", item.Id)
		}
		ids = append(ids, item.Id)
	}
	for _, item := range items {
		err := api.SetSubstate(resource, NonFungibleDataPartition, LocalIdKey(item.Id), value.Some(value.Bytes(item.Data)))
		if nil != err {
			return nil, err
		}
	}
	identifier.SortLocalIds(ids)
	return ids, nil
}

// create(divisibility: U8, flags, initial: Option<Decimal>) -> (Reference, Option<Own>)
func createFungible(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 3)
	if nil != err {
		return nil, err
	}
	divisibility, err := value.AsU8(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "divisibility: %v", err)
	}
	if divisibility > maximumDivisibility {
		return nil, fault.Detailf(fault.ErrInvalidDivisibility, "%d", divisibility)
	}
	flags, err := flagsFromValue(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "flags: %v", err)
	}
	initial, hasInitial, err := value.AsOption(p[2])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "initial supply: %v", err)
	}
	supply := decimal.Zero
	if hasInitial {
		supply, err = value.AsDecimal(initial)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "initial supply: %v", err)
		}
		if err := checkAmount(supply, divisibility); nil != err {
			return nil, err
		}
	}

	reservation, _, err := api.AllocateGlobalAddress(Blueprint(FungibleResourceManager), identifier.EntityGlobalFungibleResource)
	if nil != err {
		return nil, err
	}
	address, err := api.Globalize(reservation, ManagerSubstates(divisibility, supply, flags))
	if nil != err {
		return nil, err
	}
	if !hasInitial {
		return value.Tuple{value.Reference(address), value.None()}, nil
	}
	bucket, err := newBucket(api, address, value.NewDecimal(supply))
	if nil != err {
		return nil, err
	}
	return value.Tuple{value.Reference(address), value.Some(value.Own(bucket))}, nil
}

// create(id kind: U8, flags, initial: Option<Map<LocalId, Bytes>>) -> (Reference, Option<Own>)
func createNonFungible(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 3)
	if nil != err {
		return nil, err
	}
	kind, err := value.AsU8(p[0])
	if nil != err || !identifier.LocalIdKind(kind).IsValid() {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "id kind: %d", kind)
	}
	flags, err := flagsFromValue(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "flags: %v", err)
	}
	initial, hasInitial, err := value.AsOption(p[2])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "initial supply: %v", err)
	}
	var items []NonFungible
	if hasInitial {
		items, err = nonFungiblesFromValue(initial)
		if nil != err {
			return nil, err
		}
	}

	reservation, _, err := api.AllocateGlobalAddress(Blueprint(NonFungibleResourceManager), identifier.EntityGlobalNonFungibleResource)
	if nil != err {
		return nil, err
	}
	address, err := api.Globalize(reservation, ManagerSubstates(kind, decimal.Zero, flags))
	if nil != err {
		return nil, err
	}
	if !hasInitial {
		return value.Tuple{value.Reference(address), value.None()}, nil
	}
	bucket, err := mintNonFungibles(api, address, identifier.LocalIdKind(kind), items)
	if nil != err {
		return nil, err
	}
	return value.Tuple{value.Reference(address), value.Some(value.Own(bucket))}, nil
}

func mintNonFungibles(api kernel.API, resource identifier.NodeId, kind identifier.LocalIdKind, items []NonFungible) (identifier.NodeId, error) {
	ids, err := storeNonFungibles(api, resource, kind, items)
	if nil != err {
		return identifier.NodeId{}, err
	}
	if err := changeSupply(api, resource, addSupply(decimal.New(int64(len(ids))))); nil != err {
		return identifier.NodeId{}, err
	}
	return newBucket(api, resource, value.LocalIds(ids))
}

// mint(Decimal | Map<LocalId, Bytes>) -> Own
func managerMint(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	m, err := readManager(api, receiver)
	if nil != err {
		return nil, err
	}
	if !m.flags.Mintable {
		return nil, fault.Detailf(fault.ErrOperationNotPermitted, "mint")
	}
	if !isFungible(receiver) {
		p, err := params(args, 1)
		if nil != err {
			return nil, err
		}
		items, err := nonFungiblesFromValue(p[0])
		if nil != err {
			return nil, err
		}
		bucket, err := mintNonFungibles(api, receiver, identifier.LocalIdKind(m.divisibility), items)
		if nil != err {
			return nil, err
		}
		return value.Own(bucket), nil
	}

	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	if err := checkAmount(amount, m.divisibility); nil != err {
		return nil, err
	}
	if err := changeSupply(api, receiver, addSupply(amount)); nil != err {
		return nil, err
	}
	bucket, err := newBucket(api, receiver, value.NewDecimal(amount))
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

// burn(Own bucket)
func managerBurn(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	bucket, err := ownParam(args)
	if nil != err {
		return nil, err
	}
	m, err := readManager(api, receiver)
	if nil != err {
		return nil, err
	}
	if !m.flags.Burnable {
		return nil, fault.Detailf(fault.ErrOperationNotPermitted, "burn")
	}
	liquid, err := consumeBucket(api, receiver, bucket)
	if nil != err {
		return nil, err
	}
	if isFungible(receiver) {
		amount, err := value.AsDecimal(liquid)
		if nil != err {
			return nil, err
		}
		return nil, changeSupply(api, receiver, subSupply(amount))
	}
	ids, err := value.AsLocalIds(liquid)
	if nil != err {
		return nil, err
	}
	for _, id := range ids {
		if err := api.SetSubstate(receiver, NonFungibleDataPartition, LocalIdKey(id), value.None()); nil != err {
			return nil, err
		}
	}
	return nil, changeSupply(api, receiver, subSupply(decimal.New(int64(len(ids)))))
}

func managerCreateEmptyBucket(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	bucket, err := newBucket(api, receiver, emptyLiquid(receiver))
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

func managerCreateEmptyVault(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	vault, err := newVault(api, receiver)
	if nil != err {
		return nil, err
	}
	return value.Own(vault), nil
}

// drop_empty_bucket(Own bucket)
func managerDropEmptyBucket(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	bucket, err := ownParam(args)
	if nil != err {
		return nil, err
	}
	liquid, err := consumeBucket(api, receiver, bucket)
	if nil != err {
		return nil, err
	}
	if !isEmpty(liquid) {
		return nil, fault.Detailf(fault.ErrInvalidAmount, "bucket %s is not empty", bucket)
	}
	return nil, nil
}

func isEmpty(liquid value.Value) bool {
	if amount, err := value.AsDecimal(liquid); nil == err {
		return amount.IsZero()
	}
	ids, err := value.AsLocalIds(liquid)
	return nil == err && 0 == len(ids)
}

func managerTotalSupply(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	m, err := readManager(api, receiver)
	if nil != err {
		return nil, err
	}
	return value.NewDecimal(m.supply), nil
}

// Enum{0: Fungible(divisibility), 1: NonFungible(id kind)}
func managerResourceType(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	m, err := readManager(api, receiver)
	if nil != err {
		return nil, err
	}
	discriminator := uint8(0)
	if !isFungible(receiver) {
		discriminator = 1
	}
	return value.Enum{Discriminator: discriminator, Fields: []value.Value{value.U8(m.divisibility)}}, nil
}

func localIdParam(args value.Value) (identifier.LocalId, error) {
	p, err := params(args, 1)
	if nil != err {
		return "", err
	}
	id, err := value.AsLocalId(p[0])
	if nil != err {
		return "", fault.Detailf(fault.ErrInvalidCallData, "local id: %v", err)
	}
	return id, nil
}

// get_non_fungible(LocalId) -> Bytes
func managerGetNonFungible(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	id, err := localIdParam(args)
	if nil != err {
		return nil, err
	}
	v, found, err := readNonFungibleData(api, receiver, id)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.Detailf(fault.ErrNonFungibleNotFound, "%s", id)
	}
	data, live, err := value.AsOption(v)
	if nil != err {
		return nil, err
	}
	if !live {
		return nil, fault.Detailf(fault.ErrNonFungibleNotFound, "%s was burned", id)
	}
	return data, nil
}

// non_fungible_exists(LocalId) -> Bool
func managerNonFungibleExists(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	id, err := localIdParam(args)
	if nil != err {
		return nil, err
	}
	v, found, err := readNonFungibleData(api, receiver, id)
	if nil != err || !found {
		return value.Bool(false), err
	}
	_, live, err := value.AsOption(v)
	return value.Bool(live), err
}
