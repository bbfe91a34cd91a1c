// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
	"github.com/bitmark-inc/substated/worktop"
)

func (p *IntentProcessor) newBucket(id identifier.NodeId, err error) error {
	if nil == err {
		p.objects.buckets.add(id)
	}
	return err
}

func (p *IntentProcessor) newProof(id identifier.NodeId, err error) error {
	if nil == err {
		p.objects.proofs.add(id)
	}
	return err
}

// execute - one instruction
//
// returns the output of an invocation, or the result to yield with
func (p *IntentProcessor) execute(instruction manifest.Instruction) (value.Value, *ResumeResult, error) {
	api := p.api

	switch i := instruction.(type) {

	// worktop
	case manifest.TakeFromWorktop:
		return nil, nil, p.newBucket(worktop.Take(api, p.worktop, i.Resource, i.Amount))

	case manifest.TakeNonFungiblesFromWorktop:
		return nil, nil, p.newBucket(worktop.TakeNonFungibles(api, p.worktop, i.Resource, i.Ids))

	case manifest.TakeAllFromWorktop:
		return nil, nil, p.newBucket(worktop.TakeAll(api, p.worktop, i.Resource))

	case manifest.ReturnToWorktop:
		bucket, err := p.objects.takeBucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, worktop.Put(api, p.worktop, bucket)

	case manifest.AssertWorktopContains:
		return nil, nil, worktop.AssertContainsAmount(api, p.worktop, i.Resource, i.Amount)

	case manifest.AssertWorktopContainsNonFungibles:
		return nil, nil, worktop.AssertContainsNonFungibles(api, p.worktop, i.Resource, i.Ids)

	case manifest.AssertWorktopContainsAny:
		return nil, nil, worktop.AssertContains(api, p.worktop, i.Resource)

	case manifest.AssertWorktopIsEmpty:
		return nil, nil, worktop.AssertResourcesOnly(api, p.worktop, nil)

	case manifest.AssertWorktopResourcesOnly:
		return nil, nil, worktop.AssertResourcesOnly(api, p.worktop, i.Constraints)

	case manifest.AssertWorktopResourcesInclude:
		return nil, nil, worktop.AssertResourcesInclude(api, p.worktop, i.Constraints)

	case manifest.AssertNextCallReturnsOnly:
		if err := i.Constraints.Validate(); nil != err {
			return nil, nil, err
		}
		p.next = &nextCall{only: true, constraints: i.Constraints}
		return nil, nil, nil

	case manifest.AssertNextCallReturnsInclude:
		if err := i.Constraints.Validate(); nil != err {
			return nil, nil, err
		}
		p.next = &nextCall{constraints: i.Constraints}
		return nil, nil, nil

	case manifest.AssertBucketContents:
		bucket, err := p.objects.bucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		address, err := resource.ResourceOf(api, bucket)
		if nil != err {
			return nil, nil, err
		}
		if err := i.Constraint.Validate(address.EntityType().IsFungibleResource()); nil != err {
			return nil, nil, err
		}
		balance, err := bucketBalance(api, address, bucket)
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, i.Constraint.Check(balance)

	// auth zone
	case manifest.PopFromAuthZone:
		return nil, nil, p.newProof(authzone.Pop(api))

	case manifest.PushToAuthZone:
		proof, err := p.objects.takeProof(uint32(i.Proof))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, authzone.Push(api, proof)

	case manifest.DropAuthZoneProofs:
		return nil, nil, authzone.DropProofs(api)

	case manifest.DropAuthZoneRegularProofs:
		return nil, nil, authzone.DropRegularProofs(api)

	case manifest.DropAuthZoneSignatureProofs:
		return nil, nil, authzone.DropSignatureProofs(api)

	case manifest.CreateProofFromAuthZoneOfAmount:
		return nil, nil, p.newProof(authzone.CreateProofOfAmount(api, i.Resource, i.Amount))

	case manifest.CreateProofFromAuthZoneOfNonFungibles:
		return nil, nil, p.newProof(authzone.CreateProofOfNonFungibles(api, i.Resource, i.Ids))

	case manifest.CreateProofFromAuthZoneOfAll:
		return nil, nil, p.newProof(authzone.CreateProofOfAll(api, i.Resource))

	// named buckets
	case manifest.CreateProofFromBucketOfAmount:
		bucket, err := p.objects.bucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, p.newProof(resource.CreateProofOfAmount(api, bucket, i.Amount))

	case manifest.CreateProofFromBucketOfNonFungibles:
		bucket, err := p.objects.bucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, p.newProof(resource.CreateProofOfNonFungibles(api, bucket, i.Ids))

	case manifest.CreateProofFromBucketOfAll:
		bucket, err := p.objects.bucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, p.newProof(resource.CreateProofOfAll(api, bucket))

	case manifest.BurnResource:
		bucket, err := p.objects.takeBucket(uint32(i.Bucket))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, resource.Burn(api, bucket)

	// named proofs
	case manifest.CloneProof:
		proof, err := p.objects.proof(uint32(i.Proof))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, p.newProof(resource.CloneProof(api, proof))

	case manifest.DropProof:
		proof, err := p.objects.takeProof(uint32(i.Proof))
		if nil != err {
			return nil, nil, err
		}
		return nil, nil, resource.DropProof(api, proof)

	case manifest.DropNamedProofs:
		return nil, nil, p.dropNamedProofs()

	case manifest.DropAllProofs:
		if err := p.dropNamedProofs(); nil != err {
			return nil, nil, err
		}
		return nil, nil, authzone.DropProofs(api)

	// invocation
	case manifest.CallFunction:
		pkg, err := p.resolve(i.Package)
		if nil != err {
			return nil, nil, err
		}
		if identifier.EntityGlobalPackage != pkg.EntityType() {
			return nil, nil, fault.Detailf(fault.ErrNotPackageAddress, "%s", pkg)
		}
		args, err := p.transform(i.Args)
		if nil != err {
			return nil, nil, err
		}
		blueprint := kernel.BlueprintId{Package: pkg, Name: i.Blueprint}
		return p.returned(api.CallFunction(blueprint, i.Function, args))

	case manifest.CallMethod:
		address, err := p.resolve(i.Address)
		if nil != err {
			return nil, nil, err
		}
		if !address.IsGlobal() {
			return nil, nil, fault.Detailf(fault.ErrNotGlobalAddress, "%s", address)
		}
		args, err := p.transform(i.Args)
		if nil != err {
			return nil, nil, err
		}
		return p.returned(api.CallMethod(address, i.Method, args))

	case manifest.CallDirectVaultMethod:
		if !i.Vault.EntityType().IsVault() {
			return nil, nil, fault.Detailf(fault.ErrWrongEntityType, "not a vault: %s", i.Vault)
		}
		args, err := p.transform(i.Args)
		if nil != err {
			return nil, nil, err
		}
		return p.returned(api.CallDirectMethod(i.Vault, i.Method, args))

	// allocation
	case manifest.AllocateGlobalAddress:
		if identifier.EntityGlobalPackage != i.Package.EntityType() {
			return nil, nil, fault.Detailf(fault.ErrNotPackageAddress, "%s", i.Package)
		}
		blueprint := kernel.BlueprintId{Package: i.Package, Name: i.Blueprint}
		reservation, address, err := api.AllocateGlobalAddress(blueprint, entityFor(blueprint))
		if nil != err {
			return nil, nil, err
		}
		p.objects.reservations.add(reservation)
		p.objects.addresses.add(address)
		return nil, nil, nil

	// intents
	case manifest.YieldToParent:
		args, err := p.transform(i.Args)
		if nil != err {
			return nil, nil, err
		}
		return nil, &ResumeResult{Status: YieldToParent, Value: args}, nil

	case manifest.YieldToChild:
		args, err := p.transform(i.Args)
		if nil != err {
			return nil, nil, err
		}
		return nil, &ResumeResult{Status: YieldToChild, Child: i.Child, Value: args}, nil

	case manifest.VerifyParent:
		return nil, &ResumeResult{Status: VerifyParent, Rule: i.Rule}, nil
	}

	return nil, nil, fault.Detailf(fault.ErrUnknownInstruction, "%s", instruction.Opcode())
}

// returned - record an invocation's output after moving what it returned
func (p *IntentProcessor) returned(output value.Value, err error) (value.Value, *ResumeResult, error) {
	if nil != err {
		return nil, nil, err
	}
	if err := p.handleReturn(output); nil != err {
		return nil, nil, err
	}
	return output, nil, nil
}

func (p *IntentProcessor) dropNamedProofs() error {
	for _, proof := range p.objects.proofs.drain() {
		if err := resource.DropProof(p.api, proof); nil != err {
			return err
		}
	}
	return nil
}
