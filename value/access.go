// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

// AsTuple - tuple with exactly n fields
func AsTuple(v Value, n int) (Tuple, error) {
	t, ok := v.(Tuple)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	if n != len(t) {
		return nil, fault.ErrWrongFieldCount
	}
	return t, nil
}

// AsEnum - any enum
func AsEnum(v Value) (Enum, error) {
	e, ok := v.(Enum)
	if !ok {
		return Enum{}, fault.ErrUnexpectedKind
	}
	return e, nil
}

// AsOption - unwrap None/Some
func AsOption(v Value) (Value, bool, error) {
	e, ok := v.(Enum)
	if !ok {
		return nil, false, fault.ErrUnexpectedKind
	}
	switch {
	case 0 == e.Discriminator && 0 == len(e.Fields):
		return nil, false, nil
	case 1 == e.Discriminator && 1 == len(e.Fields):
		return e.Fields[0], true, nil
	}
	return nil, false, fault.ErrUnexpectedDiscriminator
}

// AsBool - a Bool
func AsBool(v Value) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, fault.ErrUnexpectedKind
	}
	return bool(b), nil
}

// AsU8 - a U8
func AsU8(v Value) (uint8, error) {
	b, ok := v.(U8)
	if !ok {
		return 0, fault.ErrUnexpectedKind
	}
	return uint8(b), nil
}

// AsU32 - a U32
func AsU32(v Value) (uint32, error) {
	b, ok := v.(U32)
	if !ok {
		return 0, fault.ErrUnexpectedKind
	}
	return uint32(b), nil
}

// AsU64 - a U64
func AsU64(v Value) (uint64, error) {
	b, ok := v.(U64)
	if !ok {
		return 0, fault.ErrUnexpectedKind
	}
	return uint64(b), nil
}

// AsI64 - an I64
func AsI64(v Value) (int64, error) {
	i, ok := v.(I64)
	if !ok {
		return 0, fault.ErrUnexpectedKind
	}
	return int64(i), nil
}

// AsString - a String
func AsString(v Value) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", fault.ErrUnexpectedKind
	}
	return string(s), nil
}

// AsBytes - a Bytes
func AsBytes(v Value) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	return []byte(b), nil
}

// AsDecimal - a Decimal
func AsDecimal(v Value) (decimal.Decimal, error) {
	d, ok := v.(Decimal)
	if !ok {
		return decimal.Zero, fault.ErrUnexpectedKind
	}
	return d.Decimal, nil
}

// AsOwn - the node of an Own
func AsOwn(v Value) (identifier.NodeId, error) {
	o, ok := v.(Own)
	if !ok {
		return identifier.NodeId{}, fault.ErrUnexpectedKind
	}
	return identifier.NodeId(o), nil
}

// AsReference - the node of a Reference
func AsReference(v Value) (identifier.NodeId, error) {
	r, ok := v.(Reference)
	if !ok {
		return identifier.NodeId{}, fault.ErrUnexpectedKind
	}
	return identifier.NodeId(r), nil
}

// AsLocalId - a single local id
func AsLocalId(v Value) (identifier.LocalId, error) {
	l, ok := v.(LocalId)
	if !ok {
		return "", fault.ErrUnexpectedKind
	}
	return identifier.LocalId(l), nil
}

// AsLocalIds - an array of local ids
func AsLocalIds(v Value) ([]identifier.LocalId, error) {
	a, ok := v.(Array)
	if !ok || (KindLocalId != a.Element && 0 != len(a.Items)) {
		return nil, fault.ErrUnexpectedKind
	}
	ids := make([]identifier.LocalId, 0, len(a.Items))
	for _, item := range a.Items {
		id, err := AsLocalId(item)
		if nil != err {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AsOwnArray - an array of owned nodes
func AsOwnArray(v Value) ([]identifier.NodeId, error) {
	a, ok := v.(Array)
	if !ok || (KindOwn != a.Element && 0 != len(a.Items)) {
		return nil, fault.ErrUnexpectedKind
	}
	ids := make([]identifier.NodeId, 0, len(a.Items))
	for _, item := range a.Items {
		id, err := AsOwn(item)
		if nil != err {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LocalIds - array of local ids
func LocalIds(ids []identifier.LocalId) Array {
	a := Array{Element: KindLocalId, Items: make([]Value, 0, len(ids))}
	for _, id := range ids {
		a.Items = append(a.Items, LocalId(id))
	}
	return a
}

// Owns - array of owned nodes
func Owns(ids []identifier.NodeId) Array {
	a := Array{Element: KindOwn, Items: make([]Value, 0, len(ids))}
	for _, id := range ids {
		a.Items = append(a.Items, Own(id))
	}
	return a
}

// ReferenceArray - array of references
func ReferenceArray(ids []identifier.NodeId) Array {
	a := Array{Element: KindReference, Items: make([]Value, 0, len(ids))}
	for _, id := range ids {
		a.Items = append(a.Items, Reference(id))
	}
	return a
}
