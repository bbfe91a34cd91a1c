// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
)

// blueprint names
const (
	FungibleResourceManager    = "FungibleResourceManager"
	NonFungibleResourceManager = "NonFungibleResourceManager"
	FungibleBucket             = "FungibleBucket"
	NonFungibleBucket          = "NonFungibleBucket"
	FungibleVault              = "FungibleVault"
	NonFungibleVault           = "NonFungibleVault"
	FungibleProof              = "FungibleProof"
	NonFungibleProof           = "NonFungibleProof"
)

// manager fields
const (
	managerDivisibilityField uint8 = 0
	managerSupplyField       uint8 = 1
	managerFlagsField        uint8 = 2
)

// container fields
const (
	liquidField uint8 = 0
	lockedField uint8 = 1
)

// proof fields
const (
	proofTotalField    uint8 = 0
	proofEvidenceField uint8 = 1
)

// NonFungibleDataPartition - non-fungible data keyed by local id
const NonFungibleDataPartition uint8 = kernel.MainPartition + 1

// Blueprint - id of one of the resource blueprints
func Blueprint(name string) kernel.BlueprintId {
	return kernel.BlueprintId{
		Package: identifier.ResourcePackage,
		Name:    name,
	}
}

func isFungible(resource identifier.NodeId) bool {
	return resource.EntityType().IsFungibleResource()
}

func bucketBlueprint(resource identifier.NodeId) kernel.BlueprintId {
	if isFungible(resource) {
		return Blueprint(FungibleBucket)
	}
	return Blueprint(NonFungibleBucket)
}

func vaultBlueprint(resource identifier.NodeId) kernel.BlueprintId {
	if isFungible(resource) {
		return Blueprint(FungibleVault)
	}
	return Blueprint(NonFungibleVault)
}

func proofBlueprint(resource identifier.NodeId) kernel.BlueprintId {
	if isFungible(resource) {
		return Blueprint(FungibleProof)
	}
	return Blueprint(NonFungibleProof)
}

// IsBucket - a bucket blueprint
func IsBucket(info kernel.TypeInfo) bool {
	return info.Is(Blueprint(FungibleBucket)) || info.Is(Blueprint(NonFungibleBucket))
}

// IsVault - a vault blueprint
func IsVault(info kernel.TypeInfo) bool {
	return info.Is(Blueprint(FungibleVault)) || info.Is(Blueprint(NonFungibleVault))
}

// IsProof - a proof blueprint
func IsProof(info kernel.TypeInfo) bool {
	return info.Is(Blueprint(FungibleProof)) || info.Is(Blueprint(NonFungibleProof))
}

// LocalIdKey - sort key of a non-fungible data entry
func LocalIdKey(id identifier.LocalId) []byte {
	return []byte(id)
}
