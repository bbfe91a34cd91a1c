// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

func TestAllocatorIsDeterministic(t *testing.T) {
	seed := digest.NewDigest([]byte("intent"))
	a := identifier.NewAllocator(seed)
	b := identifier.NewAllocator(seed)

	for i := 0; i < 10; i += 1 {
		x, err := a.Allocate(identifier.EntityInternalComponent)
		assert.Nil(t, err, "allocate error")
		y, err := b.Allocate(identifier.EntityInternalComponent)
		assert.Nil(t, err, "allocate error")
		assert.Equal(t, x, y, "%d: replay differs", i)
		assert.Equal(t, identifier.EntityInternalComponent, x.EntityType(), "wrong entity type")
	}
	assert.Equal(t, uint32(10), a.Count(), "wrong count")

	other := identifier.NewAllocator(digest.NewDigest([]byte("other")))
	x, _ := other.Allocate(identifier.EntityGlobalComponent)
	y, _ := identifier.NewAllocator(seed).Allocate(identifier.EntityGlobalComponent)
	assert.NotEqual(t, x, y, "different seeds collide")
	assert.True(t, x.IsGlobal(), "component not global")
}

func TestNodeIdText(t *testing.T) {
	id, err := identifier.NewAllocator(digest.Digest{}).Allocate(identifier.EntityGlobalFungibleResource)
	assert.Nil(t, err, "allocate error")

	parsed, err := identifier.ParseNodeId(id.String())
	assert.Nil(t, err, "parse error")
	assert.Equal(t, id, parsed, "text round trip")

	_, err = identifier.ParseNodeId("0OIl")
	assert.Equal(t, fault.ErrInvalidNodeId, err, "bad base58 accepted")

	_, err = identifier.NewNodeId(make([]byte, identifier.NodeIdLength))
	assert.Equal(t, fault.ErrInvalidNodeId, err, "zero entity accepted")

	assert.True(t, identifier.ResourcePackage.IsGlobal(), "package not global")
	assert.False(t, identifier.NodeId{byte(identifier.EntityInternalFungibleVault)}.IsGlobal(), "vault global")
}

func TestLocalIds(t *testing.T) {
	valid := []string{"#0#", "#18446744073709551615#", "<abc_1>", "[00ff]", "{0123456789abcdef-0123456789abcdef-0123456789abcdef-0123456789abcdef}"}
	for _, s := range valid {
		_, err := identifier.ParseLocalId(s)
		assert.Nil(t, err, "%s rejected", s)
	}
	invalid := []string{"", "#", "#01#", "#-1#", "<a b>", "[0]", "[GG]", "{0123}", "abc"}
	for _, s := range invalid {
		_, err := identifier.ParseLocalId(s)
		assert.Equal(t, fault.ErrInvalidLocalId, err, "%q accepted", s)
	}

	assert.Equal(t, identifier.LocalId("#42#"), identifier.IntegerId(42), "wrong integer id")

	ids := []identifier.LocalId{"#3#", "#1#", "#2#"}
	identifier.SortLocalIds(ids)
	assert.Equal(t, []identifier.LocalId{"#1#", "#2#", "#3#"}, ids, "not sorted")
}

func TestLocalIdKinds(t *testing.T) {
	kinds := map[identifier.LocalId]identifier.LocalIdKind{
		"#7#":   identifier.IntegerLocalId,
		"<abc>": identifier.StringLocalId,
		"[00]":  identifier.BytesLocalId,
		"{0123456789abcdef-0123456789abcdef-0123456789abcdef-0123456789abcdef}": identifier.RUIDLocalId,
	}
	for id, kind := range kinds {
		assert.Equal(t, kind, id.Kind(), "wrong kind for %s", id)
	}
	assert.False(t, identifier.LocalIdKind(9).IsValid(), "kind 9 valid")
}
