// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"errors"

	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
)

// BlueprintName - the account component
const BlueprintName = "Account"

// exported functions and methods
const (
	FunctionCreate                  = "create"
	MethodDeposit                   = "deposit"
	MethodDepositBatch              = "deposit_batch"
	MethodWithdraw                  = "withdraw"
	MethodWithdrawNonFungibles      = "withdraw_non_fungibles"
	MethodCreateProofOfAmount       = "create_proof_of_amount"
	MethodCreateProofOfNonFungibles = "create_proof_of_non_fungibles"
	MethodBalance                   = "balance"
)

// the owner rule field
const ownerField uint8 = 0

// VaultPartition - one vault per resource keyed by the resource address
const VaultPartition uint8 = kernel.MainPartition + 1

// Blueprint - id of the account blueprint
func Blueprint() kernel.BlueprintId {
	return kernel.BlueprintId{
		Package: identifier.AccountPackage,
		Name:    BlueprintName,
	}
}

// Register - add the account package to a registry
func Register(registry *kernel.Registry) error {
	return registry.Register(identifier.AccountPackage, &kernel.Blueprint{
		Name:      BlueprintName,
		CodeType:  kernel.NativeCode,
		Functions: map[string]kernel.NativeFunction{FunctionCreate: accountCreate},
		Methods: map[string]kernel.NativeFunction{
			MethodDeposit:                   accountDeposit,
			MethodDepositBatch:              accountDepositBatch,
			MethodWithdraw:                  accountWithdraw,
			MethodWithdrawNonFungibles:      accountWithdrawNonFungibles,
			MethodCreateProofOfAmount:       accountCreateProofOfAmount,
			MethodCreateProofOfNonFungibles: accountCreateProofOfNonFungibles,
			MethodBalance:                   accountBalance,
		},
	})
}

// Create - a new account guarded by the owner rule
func Create(api kernel.API, owner authzone.Rule) (identifier.NodeId, error) {
	v, err := api.CallFunction(Blueprint(), FunctionCreate, value.Tuple{owner.Value()})
	if nil != err {
		return identifier.NodeId{}, err
	}
	return value.AsReference(v)
}

// Deposit - put a bucket into an account
func Deposit(api kernel.API, address identifier.NodeId, bucket identifier.NodeId) error {
	_, err := api.CallMethod(address, MethodDeposit, value.Tuple{value.Own(bucket)})
	return err
}

// Withdraw - take an amount of a resource from an account
func Withdraw(api kernel.API, address identifier.NodeId, resourceAddress identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	v, err := api.CallMethod(address, MethodWithdraw, value.Tuple{value.Reference(resourceAddress), value.NewDecimal(amount)})
	if nil != err {
		return identifier.NodeId{}, err
	}
	return value.AsOwn(v)
}

// Balance - amount of a resource held by an account
func Balance(api kernel.API, address identifier.NodeId, resourceAddress identifier.NodeId) (decimal.Decimal, error) {
	v, err := api.CallMethod(address, MethodBalance, value.Tuple{value.Reference(resourceAddress)})
	if nil != err {
		return decimal.Zero, err
	}
	return value.AsDecimal(v)
}

func params(args value.Value, n int) (value.Tuple, error) {
	t, err := value.AsTuple(args, n)
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "expected %d parameters", n)
	}
	return t, nil
}

func resourceParam(v value.Value) (identifier.NodeId, error) {
	id, err := value.AsReference(v)
	if nil != err || !id.EntityType().IsResource() {
		return identifier.NodeId{}, fault.Detailf(fault.ErrInvalidCallData, "resource: %v", v)
	}
	return id, nil
}

func vaultKey(resourceAddress identifier.NodeId) []byte {
	return resourceAddress.Bytes()
}

func accountCreate(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	owner, err := authzone.RuleFromValue(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "owner: %v", err)
	}
	reservation, address, err := api.AllocateGlobalAddress(Blueprint(), identifier.EntityGlobalAccount)
	if nil != err {
		return nil, err
	}
	if _, err := api.Globalize(reservation, kernel.Fields(owner.Value())); nil != err {
		return nil, err
	}
	return value.Reference(address), nil
}

// checkOwner - the caller presents proofs satisfying the owner rule
func checkOwner(api kernel.API, address identifier.NodeId) error {
	h, err := api.OpenSubstate(address, kernel.MainPartition, kernel.Field(ownerField), kernel.ReadOnly)
	if nil != err {
		return err
	}
	v, err := api.ReadSubstate(h)
	if nil != err {
		_ = api.CloseSubstate(h)
		return err
	}
	if err := api.CloseSubstate(h); nil != err {
		return err
	}
	owner, err := authzone.RuleFromValue(v)
	if nil != err {
		return err
	}
	if err := authzone.CheckCaller(api, owner); nil != err {
		return fault.Detailf(err, "account: %s", address)
	}
	return nil
}

func closeHandle(api kernel.API, h kernel.Handle, err *error) {
	if e := api.CloseSubstate(h); nil == *err {
		*err = e
	}
}

// withVault - run fn with the account's vault for a resource borrowed
// found is false when the account has never held the resource
func withVault(api kernel.API, address identifier.NodeId, resourceAddress identifier.NodeId, fn func(vault identifier.NodeId) error) (_ bool, err error) {
	h, err := api.OpenSubstate(address, VaultPartition, vaultKey(resourceAddress), kernel.ReadOnly)
	if nil != err {
		return false, err
	}
	defer closeHandle(api, h, &err)

	v, err := api.ReadSubstate(h)
	if errors.Is(err, fault.ErrSubstateNotFound) {
		return false, nil
	}
	if nil != err {
		return false, err
	}
	vault, err := value.AsOwn(v)
	if nil != err {
		return false, err
	}
	return true, fn(vault)
}

func deposit(api kernel.API, address identifier.NodeId, bucket identifier.NodeId) error {
	resourceAddress, err := resource.ResourceOf(api, bucket)
	if nil != err {
		return err
	}
	found, err := withVault(api, address, resourceAddress, func(vault identifier.NodeId) error {
		return resource.Put(api, vault, bucket)
	})
	if nil != err || found {
		return err
	}

	vault, err := resource.CreateEmptyVault(api, resourceAddress)
	if nil != err {
		return err
	}
	if err := resource.Put(api, vault, bucket); nil != err {
		return err
	}
	return api.SetSubstate(address, VaultPartition, vaultKey(resourceAddress), value.Own(vault))
}

func accountDeposit(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	bucket, err := value.AsOwn(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "bucket: %v", err)
	}
	return nil, deposit(api, receiver, bucket)
}

func accountDepositBatch(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	buckets, err := value.AsOwnArray(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "buckets: %v", err)
	}
	for _, bucket := range buckets {
		if err := deposit(api, receiver, bucket); nil != err {
			return nil, err
		}
	}
	return nil, nil
}

// ownerVault - common prologue of the owner only methods
func ownerVault(api kernel.API, receiver identifier.NodeId, args value.Value, fn func(vault identifier.NodeId, arg value.Value) (value.Value, error)) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	resourceAddress, err := resourceParam(p[0])
	if nil != err {
		return nil, err
	}
	if err := checkOwner(api, receiver); nil != err {
		return nil, err
	}
	var result value.Value
	found, err := withVault(api, receiver, resourceAddress, func(vault identifier.NodeId) error {
		result, err = fn(vault, p[1])
		return err
	})
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.Detailf(fault.ErrInsufficientBalance, "account %s holds no %s", receiver, resourceAddress)
	}
	return result, nil
}

func accountWithdraw(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	return ownerVault(api, receiver, args, func(vault identifier.NodeId, arg value.Value) (value.Value, error) {
		amount, err := value.AsDecimal(arg)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
		}
		bucket, err := resource.Take(api, vault, amount)
		if nil != err {
			return nil, err
		}
		return value.Own(bucket), nil
	})
}

func accountWithdrawNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	return ownerVault(api, receiver, args, func(vault identifier.NodeId, arg value.Value) (value.Value, error) {
		ids, err := value.AsLocalIds(arg)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
		}
		bucket, err := resource.TakeNonFungibles(api, vault, ids)
		if nil != err {
			return nil, err
		}
		return value.Own(bucket), nil
	})
}

func accountCreateProofOfAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	return ownerVault(api, receiver, args, func(vault identifier.NodeId, arg value.Value) (value.Value, error) {
		amount, err := value.AsDecimal(arg)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
		}
		proof, err := resource.CreateProofOfAmount(api, vault, amount)
		if nil != err {
			return nil, err
		}
		return value.Own(proof), nil
	})
}

func accountCreateProofOfNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	return ownerVault(api, receiver, args, func(vault identifier.NodeId, arg value.Value) (value.Value, error) {
		ids, err := value.AsLocalIds(arg)
		if nil != err {
			return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
		}
		proof, err := resource.CreateProofOfNonFungibles(api, vault, ids)
		if nil != err {
			return nil, err
		}
		return value.Own(proof), nil
	})
}

func accountBalance(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	resourceAddress, err := resourceParam(p[0])
	if nil != err {
		return nil, err
	}
	balance := decimal.Zero
	_, err = withVault(api, receiver, resourceAddress, func(vault identifier.NodeId) error {
		balance, err = resource.Amount(api, vault)
		return err
	})
	if nil != err {
		return nil, err
	}
	return value.NewDecimal(balance), nil
}
