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

// typed calls into the resource blueprints from any frame

func ownResult(v value.Value, err error) (identifier.NodeId, error) {
	if nil != err {
		return identifier.NodeId{}, err
	}
	return value.AsOwn(v)
}

func decimalResult(v value.Value, err error) (decimal.Decimal, error) {
	if nil != err {
		return decimal.Zero, err
	}
	return value.AsDecimal(v)
}

func createResult(v value.Value, err error) (identifier.NodeId, identifier.NodeId, error) {
	if nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	t, err := value.AsTuple(v, 2)
	if nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	address, err := value.AsReference(t[0])
	if nil != err {
		return identifier.NodeId{}, identifier.NodeId{}, err
	}
	b, ok, err := value.AsOption(t[1])
	if nil != err || !ok {
		return address, identifier.NodeId{}, err
	}
	bucket, err := value.AsOwn(b)
	return address, bucket, err
}

// CreateFungibleResource - new resource; the bucket is zero without an initial supply
func CreateFungibleResource(api kernel.API, divisibility uint8, flags Flags, initial *decimal.Decimal) (identifier.NodeId, identifier.NodeId, error) {
	supply := value.None()
	if nil != initial {
		supply = value.Some(value.NewDecimal(*initial))
	}
	args := value.Tuple{value.U8(divisibility), flags.Value(), supply}
	return createResult(api.CallFunction(Blueprint(FungibleResourceManager), functionCreate, args))
}

// CreateNonFungibleResource - new resource; the bucket is zero without an initial supply
func CreateNonFungibleResource(api kernel.API, kind identifier.LocalIdKind, flags Flags, initial []NonFungible) (identifier.NodeId, identifier.NodeId, error) {
	supply := value.None()
	if nil != initial {
		supply = value.Some(nonFungiblesToValue(initial))
	}
	args := value.Tuple{value.U8(kind), flags.Value(), supply}
	return createResult(api.CallFunction(Blueprint(NonFungibleResourceManager), functionCreate, args))
}

// Mint - new fungible units
func Mint(api kernel.API, resource identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(resource, methodMint, value.Tuple{value.NewDecimal(amount)}))
}

// MintNonFungibles - new non-fungibles
func MintNonFungibles(api kernel.API, resource identifier.NodeId, items []NonFungible) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(resource, methodMint, value.Tuple{nonFungiblesToValue(items)}))
}

// Burn - destroy a bucket's contents
func Burn(api kernel.API, bucket identifier.NodeId) error {
	resource, err := ResourceOf(api, bucket)
	if nil != err {
		return err
	}
	_, err = api.CallMethod(resource, methodBurn, value.Tuple{value.Own(bucket)})
	return err
}

// TotalSupply - current supply of a resource
func TotalSupply(api kernel.API, resource identifier.NodeId) (decimal.Decimal, error) {
	return decimalResult(api.CallMethod(resource, methodGetTotalSupply, nil))
}

// NonFungibleData - data of a live non-fungible
func NonFungibleData(api kernel.API, resource identifier.NodeId, id identifier.LocalId) ([]byte, error) {
	v, err := api.CallMethod(resource, methodGetNonFungible, value.Tuple{value.LocalId(id)})
	if nil != err {
		return nil, err
	}
	return value.AsBytes(v)
}

// CreateEmptyBucket - zero bucket of a resource
func CreateEmptyBucket(api kernel.API, resource identifier.NodeId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(resource, methodCreateEmptyBucket, nil))
}

// CreateEmptyVault - zero vault of a resource
func CreateEmptyVault(api kernel.API, resource identifier.NodeId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(resource, methodCreateEmptyVault, nil))
}

// DropEmptyBucket - destroy a bucket holding nothing
func DropEmptyBucket(api kernel.API, bucket identifier.NodeId) error {
	resource, err := ResourceOf(api, bucket)
	if nil != err {
		return err
	}
	_, err = api.CallMethod(resource, methodDropEmptyBucket, value.Tuple{value.Own(bucket)})
	return err
}

// ResourceOf - resource address of a bucket, vault or proof
func ResourceOf(api kernel.API, id identifier.NodeId) (identifier.NodeId, error) {
	info, err := api.GetTypeInfo(id)
	if nil != err {
		return identifier.NodeId{}, err
	}
	if !IsBucket(info) && !IsVault(info) && !IsProof(info) {
		return identifier.NodeId{}, fault.Detailf(fault.ErrTypeMismatch, "%s holds no resource", id)
	}
	return info.Outer, nil
}

// Put - deposit a bucket into a bucket or vault
func Put(api kernel.API, container identifier.NodeId, bucket identifier.NodeId) error {
	_, err := api.CallMethod(container, methodPut, value.Tuple{value.Own(bucket)})
	return err
}

// Take - withdraw an amount
func Take(api kernel.API, container identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(container, methodTake, value.Tuple{value.NewDecimal(amount)}))
}

// TakeAdvanced - withdraw an amount adjusted by a strategy
func TakeAdvanced(api kernel.API, container identifier.NodeId, amount decimal.Decimal, strategy WithdrawStrategy) (identifier.NodeId, error) {
	args := value.Tuple{value.NewDecimal(amount), strategy.Value()}
	return ownResult(api.CallMethod(container, methodTakeAdvanced, args))
}

// TakeNonFungibles - withdraw specific non-fungibles
func TakeNonFungibles(api kernel.API, container identifier.NodeId, ids []identifier.LocalId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(container, methodTakeNonFungibles, value.Tuple{value.LocalIds(ids)}))
}

// Amount - quantity held including locked quantity
func Amount(api kernel.API, container identifier.NodeId) (decimal.Decimal, error) {
	return decimalResult(api.CallMethod(container, methodGetAmount, nil))
}

// LocalIds - non-fungible ids held including locked ones
func LocalIds(api kernel.API, container identifier.NodeId) ([]identifier.LocalId, error) {
	v, err := api.CallMethod(container, methodGetNonFungibleLocalIds, nil)
	if nil != err {
		return nil, err
	}
	return value.AsLocalIds(v)
}

// CreateProofOfAmount - lock an amount behind a new proof
func CreateProofOfAmount(api kernel.API, container identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(container, methodCreateProofOfAmount, value.Tuple{value.NewDecimal(amount)}))
}

// CreateProofOfNonFungibles - lock ids behind a new proof
func CreateProofOfNonFungibles(api kernel.API, container identifier.NodeId, ids []identifier.LocalId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(container, methodCreateProofOfNonFungibles, value.Tuple{value.LocalIds(ids)}))
}

// CreateProofOfAll - lock everything behind a new proof
func CreateProofOfAll(api kernel.API, container identifier.NodeId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(container, methodCreateProofOfAll, nil))
}

// CloneProof - second proof over the same containers
func CloneProof(api kernel.API, proof identifier.NodeId) (identifier.NodeId, error) {
	return ownResult(api.CallMethod(proof, methodClone, nil))
}

// DropProof - release a proof's locks and destroy it
func DropProof(api kernel.API, proof identifier.NodeId) error {
	resource, err := ResourceOf(api, proof)
	if nil != err {
		return err
	}
	_, err = api.CallFunction(proofBlueprint(resource), functionDrop, value.Tuple{value.Own(proof)})
	return err
}

// Recall - direct withdrawal from a vault of a recallable resource
func Recall(api kernel.API, vault identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	return ownResult(api.CallDirectMethod(vault, methodRecall, value.Tuple{value.NewDecimal(amount)}))
}

// BurnFromVault - withdraw and burn in one step
func BurnFromVault(api kernel.API, vault identifier.NodeId, amount decimal.Decimal) error {
	_, err := api.CallMethod(vault, methodBurn, value.Tuple{value.NewDecimal(amount)})
	return err
}

// CreateSignatureResource - the virtual signature resource at its fixed address
func CreateSignatureResource(api kernel.API) error {
	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: Blueprint(NonFungibleResourceManager),
	}
	return api.CreateNode(identifier.Ed25519SignatureResource, info, ManagerSubstates(uint8(identifier.BytesLocalId), decimal.Zero, Flags{}))
}
