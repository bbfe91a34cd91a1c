// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier

// EntityType - first byte of every node id
type EntityType byte

// entity types - keep in numeric order
const (
	EntityGlobalPackage             EntityType = 0x0d
	EntityInternalFungibleVault     EntityType = 0x58
	EntityGlobalFungibleResource    EntityType = 0x5d
	EntityInternalNonFungibleVault  EntityType = 0x98
	EntityGlobalNonFungibleResource EntityType = 0x9a
	EntityInternalKeyValueStore     EntityType = 0xb0
	EntityGlobalComponent           EntityType = 0xc0
	EntityGlobalAccount             EntityType = 0xc1
	EntityInternalComponent         EntityType = 0xf8
)

var entityNames = map[EntityType]string{
	EntityGlobalPackage:             "GlobalPackage",
	EntityInternalFungibleVault:     "InternalFungibleVault",
	EntityGlobalFungibleResource:    "GlobalFungibleResource",
	EntityInternalNonFungibleVault:  "InternalNonFungibleVault",
	EntityGlobalNonFungibleResource: "GlobalNonFungibleResource",
	EntityInternalKeyValueStore:     "InternalKeyValueStore",
	EntityGlobalComponent:           "GlobalComponent",
	EntityGlobalAccount:             "GlobalAccount",
	EntityInternalComponent:         "InternalComponent",
}

// IsValid - one of the known entity types
func (e EntityType) IsValid() bool {
	_, ok := entityNames[e]
	return ok
}

// IsGlobal - permanently addressable
func (e EntityType) IsGlobal() bool {
	switch e {
	case EntityGlobalPackage,
		EntityGlobalFungibleResource,
		EntityGlobalNonFungibleResource,
		EntityGlobalComponent,
		EntityGlobalAccount:
		return true
	}
	return false
}

// IsResource - a resource manager address
func (e EntityType) IsResource() bool {
	return EntityGlobalFungibleResource == e || EntityGlobalNonFungibleResource == e
}

// IsFungibleResource - a fungible resource manager address
func (e EntityType) IsFungibleResource() bool {
	return EntityGlobalFungibleResource == e
}

// IsVault - an internal vault
func (e EntityType) IsVault() bool {
	return EntityInternalFungibleVault == e || EntityInternalNonFungibleVault == e
}

// String - name of the entity type
func (e EntityType) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return "*unknown*"
}
