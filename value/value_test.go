// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

func testNodeId(t *testing.T, entity identifier.EntityType) identifier.NodeId {
	id, err := identifier.NewAllocator(digest.NewDigest([]byte(t.Name()))).Allocate(entity)
	if nil != err {
		t.Fatalf("allocate error: %s", err)
	}
	return id
}

func TestRuntimeRoundTrip(t *testing.T) {
	vault := testNodeId(t, identifier.EntityInternalFungibleVault)
	resource := testNodeId(t, identifier.EntityGlobalFungibleResource)

	v := value.Tuple{
		value.Bool(true),
		value.U8(7),
		value.U32(70000),
		value.U64(1 << 40),
		value.I64(-12345),
		value.String("deposit"),
		value.Bytes{1, 2, 3},
		value.NewDecimal(decimal.MustFromString("12.5")),
		value.LocalId(identifier.IntegerId(9)),
		value.Array{Element: value.KindU8, Items: []value.Value{value.U8(1), value.U8(2)}},
		value.Some(value.Own(vault)),
		value.Map{
			Key:   value.KindReference,
			Value: value.KindOwn,
			Entries: []value.MapEntry{
				{Key: value.Reference(resource), Value: value.Own(vault)},
			},
		},
	}

	packed, err := value.Encode(v)
	assert.Nil(t, err, "encode error")
	assert.Equal(t, byte(value.RuntimePrefix), packed[0], "wrong prefix")

	back, err := value.Decode(packed)
	assert.Nil(t, err, "decode error")
	assert.Equal(t, v, back, "round trip mismatch")

	assert.Equal(t, []identifier.NodeId{vault, vault}, value.OwnedNodes(back), "wrong owned nodes")
	assert.Equal(t, []identifier.NodeId{resource}, value.References(back), "wrong references")
}

func TestManifestKindsAreSeparated(t *testing.T) {
	_, err := value.Encode(value.Bucket(1))
	assert.Equal(t, fault.ErrUnexpectedKind, err, "bucket in runtime payload")

	_, err = value.EncodeManifest(value.Own(testNodeId(t, identifier.EntityInternalComponent)))
	assert.Equal(t, fault.ErrUnexpectedKind, err, "own in manifest payload")

	m := value.Tuple{value.Bucket(3), value.Proof(4), value.Expression(value.EntireWorktop), value.NamedAddress(1)}
	packed, err := value.EncodeManifest(m)
	assert.Nil(t, err, "manifest encode error")

	_, err = value.Decode(packed)
	assert.Equal(t, fault.ErrInvalidPrefix, err, "manifest accepted as runtime")

	back, err := value.DecodeManifest(packed)
	assert.Nil(t, err, "manifest decode error")
	assert.Equal(t, m, back, "manifest round trip")
}

func TestDecodeErrors(t *testing.T) {
	packed := value.MustEncode(value.Tuple{value.String("abc"), value.U64(5)})

	for i := 1; i < len(packed); i += 1 {
		_, err := value.Decode(packed[:i])
		assert.True(t, fault.IsErrDecode(err), "%d: truncation not detected: %v", i, err)
	}

	_, err := value.Decode(append(append(value.Packed{}, packed...), 0))
	assert.Equal(t, fault.ErrTrailingBytes, err, "trailing bytes accepted")

	_, err = value.Decode(value.Packed{value.RuntimePrefix, 0xee})
	assert.Equal(t, fault.ErrUnexpectedKind, err, "unknown kind accepted")

	_, err = value.Decode(value.Packed{value.RuntimePrefix, byte(value.KindBool), 2})
	assert.Equal(t, fault.ErrUnexpectedKind, err, "bad bool accepted")

	var deep value.Value = value.Unit()
	for i := 0; i <= value.MaxDepth+1; i += 1 {
		deep = value.Tuple{deep}
	}
	_, err = value.Encode(deep)
	assert.Equal(t, fault.ErrDepthLimitExceeded, err, "deep value accepted")
}

func TestReplace(t *testing.T) {
	bucket := testNodeId(t, identifier.EntityInternalComponent)
	m := value.Tuple{
		value.Bucket(0),
		value.Array{Element: value.KindBucket},
		value.String("x"),
	}
	r, err := value.Replace(m, func(v value.Value) (value.Value, bool, error) {
		if _, ok := v.(value.Bucket); ok {
			return value.Own(bucket), true, nil
		}
		return nil, false, nil
	})
	assert.Nil(t, err, "replace error")

	expected := value.Tuple{
		value.Own(bucket),
		value.Array{Element: value.KindOwn, Items: []value.Value{}},
		value.String("x"),
	}
	assert.Equal(t, expected, r, "wrong replacement")

	_, err = value.Encode(r)
	assert.Nil(t, err, "replaced value not encodable")
}

func TestAccessors(t *testing.T) {
	ids := []identifier.LocalId{identifier.IntegerId(1), identifier.IntegerId(2)}
	back, err := value.AsLocalIds(value.LocalIds(ids))
	assert.Nil(t, err, "local ids error")
	assert.Equal(t, ids, back, "local ids mismatch")

	_, err = value.AsTuple(value.Tuple{value.U8(1)}, 2)
	assert.Equal(t, fault.ErrWrongFieldCount, err, "field count not checked")

	x, ok, err := value.AsOption(value.Some(value.U8(4)))
	assert.Nil(t, err, "option error")
	assert.True(t, ok, "some not detected")
	assert.Equal(t, value.U8(4), x, "wrong option value")

	_, ok, err = value.AsOption(value.None())
	assert.Nil(t, err, "option error")
	assert.False(t, ok, "none not detected")
}
