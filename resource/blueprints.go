// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
)

func containerExports() map[string]kernel.NativeFunction {
	return map[string]kernel.NativeFunction{
		methodPut:                       containerPut,
		methodTake:                      containerTake,
		methodTakeAdvanced:              containerTakeAdvanced,
		methodTakeNonFungibles:          containerTakeNonFungibles,
		methodGetAmount:                 containerAmount,
		methodGetNonFungibleLocalIds:    containerLocalIds,
		methodGetResourceAddress:        resourceAddress,
		methodCreateProofOfAmount:       containerProofOfAmount,
		methodCreateProofOfNonFungibles: containerProofOfNonFungibles,
		methodCreateProofOfAll:          containerProofOfAll,
		methodLockAmount:                containerLockAmount,
		methodUnlockAmount:              containerUnlockAmount,
		methodLockNonFungibles:          containerLockNonFungibles,
		methodUnlockNonFungibles:        containerUnlockNonFungibles,
	}
}

func vaultExports() map[string]kernel.NativeFunction {
	methods := containerExports()
	methods[methodBurn] = vaultBurn
	return methods
}

func managerExports() map[string]kernel.NativeFunction {
	return map[string]kernel.NativeFunction{
		methodMint:              managerMint,
		methodBurn:              managerBurn,
		methodCreateEmptyBucket: managerCreateEmptyBucket,
		methodCreateEmptyVault:  managerCreateEmptyVault,
		methodDropEmptyBucket:   managerDropEmptyBucket,
		methodGetTotalSupply:    managerTotalSupply,
		methodGetResourceType:   managerResourceType,
	}
}

func nonFungibleManagerExports() map[string]kernel.NativeFunction {
	methods := managerExports()
	methods[methodGetNonFungible] = managerGetNonFungible
	methods[methodNonFungibleExists] = managerNonFungibleExists
	return methods
}

func proofExports() map[string]kernel.NativeFunction {
	return map[string]kernel.NativeFunction{
		methodGetAmount:              proofAmount,
		methodGetNonFungibleLocalIds: proofLocalIds,
		methodGetResourceAddress:     resourceAddress,
		methodClone:                  proofClone,
	}
}

// Blueprints - every blueprint of the resource package
func Blueprints() []*kernel.Blueprint {
	recall := map[string]kernel.NativeFunction{
		methodRecall:             vaultRecall,
		methodRecallNonFungibles: vaultRecallNonFungibles,
	}
	return []*kernel.Blueprint{
		{
			Name:      FungibleResourceManager,
			Functions: map[string]kernel.NativeFunction{functionCreate: createFungible},
			Methods:   managerExports(),
		},
		{
			Name:      NonFungibleResourceManager,
			Functions: map[string]kernel.NativeFunction{functionCreate: createNonFungible},
			Methods:   nonFungibleManagerExports(),
		},
		{
			Name:      FungibleBucket,
			Transient: true,
			Methods:   containerExports(),
		},
		{
			Name:      NonFungibleBucket,
			Transient: true,
			Methods:   containerExports(),
		},
		{
			Name:          FungibleVault,
			Methods:       vaultExports(),
			DirectMethods: recall,
		},
		{
			Name:          NonFungibleVault,
			Methods:       vaultExports(),
			DirectMethods: recall,
		},
		{
			Name:      FungibleProof,
			Transient: true,
			Functions: map[string]kernel.NativeFunction{functionDrop: proofDrop},
			Methods:   proofExports(),
		},
		{
			Name:      NonFungibleProof,
			Transient: true,
			Functions: map[string]kernel.NativeFunction{functionDrop: proofDrop},
			Methods:   proofExports(),
		},
	}
}

// Register - add the resource package to a registry
func Register(registry *kernel.Registry) error {
	for _, blueprint := range Blueprints() {
		blueprint.CodeType = kernel.NativeCode
		if err := registry.Register(identifier.ResourcePackage, blueprint); nil != err {
			return err
		}
	}
	return nil
}
